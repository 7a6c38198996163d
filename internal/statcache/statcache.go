// Package statcache is an opt-in, on-disk cache for the one filesystem
// column whose cost scales with subtree size rather than being O(1): a
// directory's recursive byte size (internal/fsrow.Stat.Size). It is never
// imported by the core query engine -- only by the row-source adapter
// (internal/fsrow) and the CLI driver that opens and closes it once per
// invocation.
package statcache

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("dirsize")

// Cache is a handle on the opened bolt database.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bolt database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("statcache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("statcache: init %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// entry is the on-disk record: the mtime/size fingerprint a fresh Lstat
// must still match, plus the cached recursive directory size.
type entry struct {
	modTime int64
	size    int64
	dirSize int64
}

const entrySize = 24

// Get returns the cached recursive size for absPath, valid only when fi
// (the directory's own, non-recursive Lstat result) still has the mtime
// and size the entry was stored with -- any other change invalidates it.
func (c *Cache) Get(absPath string, fi os.FileInfo) (int64, bool) {
	var found *entry
	c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(absPath))
		if raw == nil {
			return nil
		}
		e, err := decode(raw)
		if err != nil {
			return nil
		}
		found = e
		return nil
	})
	if found == nil {
		return 0, false
	}
	if found.modTime != fi.ModTime().UnixNano() || found.size != fi.Size() {
		return 0, false
	}
	return found.dirSize, true
}

// Put stores dirSize for absPath alongside fi's mtime/size fingerprint.
func (c *Cache) Put(absPath string, fi os.FileInfo, dirSize int64) error {
	e := entry{modTime: fi.ModTime().UnixNano(), size: fi.Size(), dirSize: dirSize}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(absPath), encode(e))
	})
}

func encode(e entry) []byte {
	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(e.modTime))
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.size))
	binary.BigEndian.PutUint64(buf[16:24], uint64(e.dirSize))
	return buf
}

func decode(raw []byte) (*entry, error) {
	if len(raw) != entrySize {
		return nil, fmt.Errorf("statcache: corrupt entry (%d bytes)", len(raw))
	}
	return &entry{
		modTime: int64(binary.BigEndian.Uint64(raw[0:8])),
		size:    int64(binary.BigEndian.Uint64(raw[8:16])),
		dirSize: int64(binary.BigEndian.Uint64(raw[16:24])),
	}, nil
}
