package store

import (
	"bytes"
	"fmt"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

const defaultTimeout = 10 * time.Second

func openBolt(path string, opt Options) (*bbolt.DB, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = defaultTimeout
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return bdb, nil
}

// rootsBucket returns the bucket holding records, or nil if nothing has
// been written yet.
func rootsBucket(tx *bbolt.Tx, name string) *bbolt.Bucket {
	return tx.Bucket(unsafeBytesFromString(name))
}

func createRootsBucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	return tx.CreateBucketIfNotExists(unsafeBytesFromString(name))
}

// scanKeys calls f for every key starting with prefix, in key order.
func scanKeys(b *bbolt.Bucket, prefix []byte, f func(k, v []byte) error) error {
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := f(k, v); err != nil {
			return err
		}
	}
	return nil
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
