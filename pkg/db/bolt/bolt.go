package bolt

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var ErrKVBucketNotFound = errors.New("bolt: kv bucket not found")

var kvBucketName = []byte("kv")

// Database is a kv.Store backed by a single bbolt file.
type Database struct {
	bolt *bolt.DB
}

// OpenDatabase opens (or creates) the bbolt file at path.
func OpenDatabase(path string, opts *bolt.Options) (*Database, error) {
	boltDB, err := bolt.Open(path, 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("bolt: failed to open database: %w", err)
	}

	return DatabaseFromBoltDB(boltDB)
}

// DatabaseFromBoltDB prepares the buckets projdesk needs on an already opened
// bbolt database.
func DatabaseFromBoltDB(boltDB *bolt.DB) (*Database, error) {
	err := boltDB.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucketName)
		if err != nil {
			return fmt.Errorf("failed to create kv bucket: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: failed to commit transaction: %w", err)
	}

	return &Database{bolt: boltDB}, nil
}

func (db *Database) Close() error {
	return db.bolt.Close()
}

func kvBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(kvBucketName)
	if b == nil {
		return nil, ErrKVBucketNotFound
	}

	return b, nil
}
