package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"go.etcd.io/bbolt"
)

var savepointsBucket = []byte("savepoints")

// savepoint is a datastore checkpoint as stored in the savepoints bucket,
// keyed by its big-endian id.
type savepoint struct {
	ID          uint64 `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Commits     uint64 `json:"commits"`
	Size        uint64 `json:"size"`
	Description []byte `json:"description,omitempty"`
}

// savepointView is anything that can enumerate savepoints.
type savepointView interface {
	ForEachSavepoint(fn func(id uint64, sp savepoint) error) error
}

// boltSavepoints reads savepoints out of a bbolt transaction.
type boltSavepoints struct {
	tx *bbolt.Tx
}

func (v boltSavepoints) ForEachSavepoint(fn func(id uint64, sp savepoint) error) error {
	b := v.tx.Bucket(savepointsBucket)
	if b == nil {
		return nil
	}
	return b.ForEach(func(k, val []byte) error {
		if len(k) != 8 {
			return fmt.Errorf("savepoint key %s is not 8 bytes", escapeBytes(k))
		}
		var sp savepoint
		if err := json.Unmarshal(val, &sp); err != nil {
			return fmt.Errorf("savepoint %x: %w", k, err)
		}
		return fn(binary.BigEndian.Uint64(k), sp)
	})
}

// printSavepoints writes one line per savepoint followed by the total.
func printSavepoints(w io.Writer, view savepointView, nowSecs int64) (int, error) {
	var num int
	err := view.ForEachSavepoint(func(id uint64, sp savepoint) error {
		num++
		_, err := fmt.Fprintf(w, "%d\t%s (%s ago)\tcommits: %s\tsize: %s\t%s\n",
			id, formatTimestamp(sp.Timestamp),
			formatDuration(nowSecs-sp.Timestamp),
			formatCount(sp.Commits), formatBytes(sp.Size),
			escapeBytes(sp.Description))
		return err
	})
	if err != nil {
		return num, err
	}
	_, err = fmt.Fprintf(w, "Total %d savepoints found.\n", num)
	return num, err
}
