package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	usage       = "Usage: dsview <filename> savepoints|stats|keys <bucket> [limit]|resources [ps]"
	openTimeout = 5 * time.Second
	sampleLimit = 10 * time.Second
)

func log(s string, args ...any) {
	const dateTime = "2006-01-02 15:04:05.000:"
	fmt.Println(time.Now().Format(dateTime), fmt.Sprintf(s, args...))
}

func logJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	log("%s", b)
	return nil
}

// viewDB opens filename read-only and runs fn inside a read transaction.
func viewDB(filename string, fn func(tx *bbolt.Tx) error) error {
	stat, err := os.Stat(filename)
	if err != nil {
		return err
	}
	log("Using DB: %s (%s)", filename, formatBytes(uint64(stat.Size())))

	db, err := bbolt.Open(filename, 0600, &bbolt.Options{Timeout: openTimeout, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("Unable to open DB: %v", err)
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log("Error closing db: %v", err)
		}
	}()

	return db.View(fn)
}

func cmdSavepoints(filename string) error {
	return viewDB(filename, func(tx *bbolt.Tx) error {
		_, err := printSavepoints(os.Stdout, boltSavepoints{tx: tx}, now())
		return err
	})
}

func cmdStats(filename string) error {
	return viewDB(filename, func(tx *bbolt.Tx) error {
		log("Reading top level buckets...")
		all, global, err := collectStats(tx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(all))
		for i := range all {
			names = append(names, all[i].Name)
			if err := logJSON(all[i]); err != nil {
				return err
			}
		}
		log("Top Level Buckets: %s", strings.Join(names, ", "))
		if err := logJSON(global); err != nil {
			return err
		}

		log("Totals:")
		log("Max Depth: %d", global.MaxDepth)
		log("Buckets: %s", formatCount(uint64(global.Buckets)))
		log("Keys: %s", formatCount(uint64(global.Keys)))
		log("Total Key Size: %s", formatBytes(uint64(global.TotalKeySize)))
		log("Total Value Size: %s", formatBytes(uint64(global.TotalValueSize)))
		log("Compressed Value Size: %s (%s%%)",
			formatBytes(uint64(global.CompressedValueSize)),
			formatPercentage(uint64(global.CompressedValueSize), uint64(global.TotalValueSize)))
		log("Total DB size in use: %s", formatBytes(uint64(tx.Size())))
		return nil
	})
}

func cmdKeys(filename string, args []string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}
	bucket := []byte(args[0])
	limit := defaultKeyLimit
	if len(args) > 1 {
		var err error
		limit, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[1], err)
		}
	}

	return viewDB(filename, func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", escapeBytes(bucket))
		}
		n, err := dumpKeys(os.Stdout, b, limit)
		if err != nil {
			return err
		}
		log("Listed %s keys of %s", formatCount(uint64(n)), escapeBytes(bucket))
		return nil
	})
}

func cmdResources(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sampleLimit)
	defer cancel()

	sample := sampleSelf
	if len(args) > 0 && args[0] == "ps" {
		sample = sampleSelfPS
	}
	s, err := sample(ctx)
	if err != nil {
		return err
	}
	log("Resources: %s", s)
	return nil
}

func realMain() error {
	if len(os.Args) < 3 {
		return errors.New(usage)
	}

	filename, cmd, args := os.Args[1], os.Args[2], os.Args[3:]
	switch cmd {
	case "savepoints":
		return cmdSavepoints(filename)
	case "stats":
		return cmdStats(filename)
	case "keys":
		return cmdKeys(filename, args)
	case "resources":
		return cmdResources(args)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func main() {
	err := realMain()
	if err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}
