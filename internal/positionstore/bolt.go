package positionstore

import (
	"encoding/binary"

	"go.etcd.io/bbolt"
)

var positionsBucket = []byte("positions")

// Bolt is the default durable PositionStore backend: a single bbolt bucket
// mapping fingerprint (as the raw bucket key) to an 8-byte big-endian
// offset. bbolt's single-writer-transaction model gives the per-key
// linearizability spec.md §5 requires when a store is shared across
// tailers, and each Set is a committed transaction, so a crash loses at
// most the in-flight update (spec.md §3).
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt-backed PositionStore at
// path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(positionsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(fingerprint string) (offset uint64, ok bool, err error) {
	err = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(positionsBucket)
		v := bucket.Get([]byte(fingerprint))
		if v == nil {
			return nil
		}
		ok = true
		offset = binary.BigEndian.Uint64(v)
		return nil
	})
	return offset, ok, err
}

func (b *Bolt) Set(fingerprint string, offset uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, offset)
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(positionsBucket).Put([]byte(fingerprint), buf)
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
