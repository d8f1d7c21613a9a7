package kvstore

import (
	"encoding/json"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/sentrywaf/engine/pkg/types"
)

var bucketValues = []byte("kvstore")

// BoltBackend persists values in a single bbolt bucket, keeping every
// write under a key in a JSON-encoded list, newest first, so Get can
// still hand back multiple candidates for the merge policy to reduce.
type BoltBackend struct {
	dbPath string
	db     *bolt.DB
}

// NewBoltBackend returns a backend whose database file lives under
// dataDir.
func NewBoltBackend(dataDir string) *BoltBackend {
	return &BoltBackend{dbPath: filepath.Join(dataDir, "kvstore.db")}
}

func (b *BoltBackend) Connect() error {
	db, err := bolt.Open(b.dbPath, 0o600, nil)
	if err != nil {
		return types.NewError(types.Other, "kvstore: open %s: %v", b.dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketValues)
		return err
	})
	if err != nil {
		db.Close()
		return types.NewError(types.Other, "kvstore: create bucket: %v", err)
	}
	b.db = db
	return nil
}

func (b *BoltBackend) Disconnect() error {
	return b.db.Close()
}

func (b *BoltBackend) Get(key string) ([]*Value, error) {
	var values []*Value
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketValues).Get([]byte(key))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &values)
	})
	if err != nil {
		return nil, types.NewError(types.Other, "kvstore: get %q: %v", key, err)
	}
	return values, nil
}

func (b *BoltBackend) Set(key string, v *Value) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketValues)
		var values []*Value
		if raw := bucket.Get([]byte(key)); raw != nil {
			if err := json.Unmarshal(raw, &values); err != nil {
				return err
			}
		}
		values = append([]*Value{v}, values...)
		raw, err := json.Marshal(values)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), raw)
	})
}

func (b *BoltBackend) Remove(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketValues).Delete([]byte(key))
	})
}
