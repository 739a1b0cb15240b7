package main

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"
)

const (
	previewLen      = 32
	defaultKeyLimit = 100
)

// dumpKeys prints up to limit entries of b. A limit of zero or less prints
// every entry. It returns the number of entries printed.
func dumpKeys(w io.Writer, b *bbolt.Bucket, limit int) (int, error) {
	var n int
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if limit > 0 && n >= limit {
			break
		}
		n++

		var err error
		switch {
		case v == nil && b.Bucket(k) != nil:
			_, err = fmt.Fprintf(w, "%s\t<bucket>\n", escapeBytes(k))
		default:
			preview := v
			if len(preview) > previewLen {
				preview = preview[:previewLen]
			}
			_, err = fmt.Fprintf(w, "%s\t%s\t%016x\t%s\n", escapeBytes(k),
				formatBytes(uint64(len(v))), xxhash.Sum64(v),
				escapeBytes(preview))
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
