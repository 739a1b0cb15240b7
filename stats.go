package main

import (
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
)

type stats struct {
	Name                string `json:"name"`
	MaxDepth            int64  `json:"max_depth"`
	Buckets             int64  `json:"buckets"`
	Keys                int64  `json:"keys"`
	TotalKeySize        int64  `json:"total_key_size"`
	TotalValueSize      int64  `json:"total_value_size"`
	CompressedValueSize int64  `json:"compressed_value_size"`
}

func (s *stats) add(o *stats) {
	s.Buckets += o.Buckets
	s.Keys += o.Keys
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
	s.TotalKeySize += o.TotalKeySize
	s.TotalValueSize += o.TotalValueSize
	s.CompressedValueSize += o.CompressedValueSize
}

// bucketReader walks buckets accumulating stats. Values are run through a
// zstd encoder to estimate how well the data compresses.
type bucketReader struct {
	enc *zstd.Encoder
	buf []byte
}

func newBucketReader() (*bucketReader, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
	}
	return &bucketReader{enc: enc}, nil
}

func (r *bucketReader) close() error {
	return r.enc.Close()
}

func (r *bucketReader) readBucket(b *bbolt.Bucket, s *stats, depth int64) {
	s.MaxDepth = max(s.MaxDepth, depth)
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if v == nil {
			// Possibly inner bucket.
			bb := b.Bucket(k)
			if bb == nil {
				// Key with empty value.
				s.Keys++
				s.TotalKeySize += int64(len(k))
				continue
			}

			s.Buckets++
			r.readBucket(bb, s, depth+1)
			continue
		}

		s.Keys++
		s.TotalKeySize += int64(len(k))
		s.TotalValueSize += int64(len(v))
		if len(v) > 0 {
			r.buf = r.enc.EncodeAll(v, r.buf[:0])
			s.CompressedValueSize += int64(len(r.buf))
		}
	}
}

// collectStats reads every top-level bucket. The returned slice is sorted by
// escaped bucket name; the second value holds the totals.
func collectStats(tx *bbolt.Tx) ([]stats, stats, error) {
	r, err := newBucketReader()
	if err != nil {
		return nil, stats{}, err
	}
	defer func() {
		err := r.close()
		if err != nil {
			log("Error closing zstd encoder: %v", err)
		}
	}()

	var all []stats
	global := stats{Name: "global-stats"}
	err = tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
		s := stats{Name: escapeBytes(name)}
		r.readBucket(b, &s, 1)
		global.Buckets++
		global.add(&s)
		all = append(all, s)
		return nil
	})
	if err != nil {
		return nil, stats{}, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all, global, nil
}
