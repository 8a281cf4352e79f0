package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

func (db *Database) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	err = db.bolt.View(func(tx *bolt.Tx) error {
		b, err := kvBucket(tx)
		if err != nil {
			return err
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}

		// Bytes returned by bbolt are only valid for the life of the transaction.
		value, ok = string(raw), true

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt: failed to commit transaction: %w", err)
	}

	return value, ok, nil
}

func (db *Database) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := db.bolt.Update(func(tx *bolt.Tx) error {
		b, err := kvBucket(tx)
		if err != nil {
			return err
		}

		err = b.Put([]byte(key), []byte(value))
		if err != nil {
			return fmt.Errorf("failed to put value: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt: failed to commit transaction: %w", err)
	}

	return nil
}

// Remove deletes key. Deleting a missing key is not an error.
func (db *Database) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := db.bolt.Update(func(tx *bolt.Tx) error {
		b, err := kvBucket(tx)
		if err != nil {
			return err
		}

		err = b.Delete([]byte(key))
		if err != nil {
			return fmt.Errorf("failed to delete value: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt: failed to commit transaction: %w", err)
	}

	return nil
}
