package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

// openTestDB returns a fresh writable db that is closed when the test ends.
func openTestDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func putSavepoint(t *testing.T, db *bbolt.DB, sp savepoint) {
	t.Helper()
	err := db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(savepointsBucket)
		if err != nil {
			return err
		}
		v, err := json.Marshal(sp)
		if err != nil {
			return err
		}
		var k [8]byte
		binary.BigEndian.PutUint64(k[:], sp.ID)
		return b.Put(k[:], v)
	})
	require.NoError(t, err)
}

func TestPrintSavepoints(t *testing.T) {
	db := openTestDB(t)
	putSavepoint(t, db, savepoint{ID: 2, Timestamp: 1000, Commits: 1500, Size: 2_000_000, Description: []byte("second \xff")})
	putSavepoint(t, db, savepoint{ID: 1, Timestamp: 0, Commits: 3, Size: 10, Description: []byte("100% first")})

	var buf bytes.Buffer
	err := db.View(func(tx *bbolt.Tx) error {
		n, err := printSavepoints(&buf, boltSavepoints{tx: tx}, 90061)
		assert.Equal(t, 2, n)
		return err
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1\t1970-01-01 00:00:00 (1d 1h 1m 1s ago)\tcommits: 3\tsize: 10\t100%% first", lines[0])
	assert.Equal(t, "2\t1970-01-01 00:16:40 (1d 0h 44m 21s ago)\tcommits: 1k\tsize: 2mb\tsecond %ff", lines[1])
	assert.Equal(t, "Total 2 savepoints found.", lines[2])
}

func TestPrintSavepointsNoBucket(t *testing.T) {
	db := openTestDB(t)

	var buf bytes.Buffer
	err := db.View(func(tx *bbolt.Tx) error {
		_, err := printSavepoints(&buf, boltSavepoints{tx: tx}, 0)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Total 0 savepoints found.\n", buf.String())
}

func TestBoltSavepointsBadKey(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucket(savepointsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte("short"), []byte("{}"))
	}))

	err := db.View(func(tx *bbolt.Tx) error {
		return boltSavepoints{tx: tx}.ForEachSavepoint(func(uint64, savepoint) error {
			return nil
		})
	})
	require.ErrorContains(t, err, "not 8 bytes")
}

type sliceView []savepoint

func (v sliceView) ForEachSavepoint(fn func(id uint64, sp savepoint) error) error {
	for _, sp := range v {
		if err := fn(sp.ID, sp); err != nil {
			return err
		}
	}
	return nil
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrintSavepointsWriteError(t *testing.T) {
	n, err := printSavepoints(failWriter{}, sliceView{{ID: 9}}, 0)
	require.Error(t, err)
	assert.Equal(t, 1, n)
}
