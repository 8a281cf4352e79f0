package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"github.com/projdesk/projdesk/pkg/db/bolt"
)

func newTestDB(t *testing.T) (*bolt.Database, *bbolt.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bolt.db")
	boltDB, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("failed to open bolt database: %v", err)
	}

	db, err := bolt.DatabaseFromBoltDB(boltDB)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, boltDB
}

func TestSet(t *testing.T) {
	t.Parallel()

	db, boltDB := newTestDB(t)

	err := db.Set(context.Background(), "Project.projects.v1", `[{"id":"foobar"}]`)
	if err != nil {
		t.Fatalf("unexpected error storing value: %v", err)
	}

	var raw []byte

	err = boltDB.View(func(tx *bbolt.Tx) error {
		raw = tx.Bucket([]byte("kv")).Get([]byte("Project.projects.v1"))
		if raw != nil {
			raw = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error retrieving value from database: %v", err)
	}
	if raw == nil {
		t.Fatalf("expected raw value to be retrieved, got: nil")
	}

	if exp := `[{"id":"foobar"}]`; string(raw) != exp {
		t.Fatalf("expected value %q, got: %q", exp, raw)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("existing key", func(t *testing.T) {
		t.Parallel()

		db, boltDB := newTestDB(t)

		err := boltDB.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket([]byte("kv")).Put([]byte("foo"), []byte("bar"))
		})
		if err != nil {
			t.Fatalf("unexpected error setting value: %v", err)
		}

		got, ok, err := db.Get(context.Background(), "foo")
		if err != nil {
			t.Fatalf("unexpected error getting value: %v", err)
		}
		if !ok {
			t.Fatal("expected key to be present")
		}
		if got != "bar" {
			t.Fatalf("expected value %q, got: %q", "bar", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		db, _ := newTestDB(t)

		got, ok, err := db.Get(context.Background(), "foo")
		if err != nil {
			t.Fatalf("expected no error for missing key, got: %v", err)
		}
		if ok {
			t.Fatalf("expected key to be absent, got: %q", got)
		}
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	db, boltDB := newTestDB(t)

	if err := db.Set(context.Background(), "foo", "bar"); err != nil {
		t.Fatalf("unexpected error storing value: %v", err)
	}

	// Removing twice must not fail.
	for i := 0; i < 2; i++ {
		if err := db.Remove(context.Background(), "foo"); err != nil {
			t.Fatalf("unexpected error removing value: %v", err)
		}
	}

	var got []byte
	_ = boltDB.View(func(tx *bbolt.Tx) error {
		got = tx.Bucket([]byte("kv")).Get([]byte("foo"))
		return nil
	})
	if got != nil {
		t.Fatalf("expected value to be nil, got: %q", got)
	}
}

func TestOpenDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := bolt.OpenDatabase(path, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Set(context.Background(), "foo", "bar"); err != nil {
		t.Fatalf("unexpected error storing value: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("unexpected error closing database: %v", err)
	}

	db, err = bolt.OpenDatabase(path, nil)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	got, ok, err := db.Get(context.Background(), "foo")
	if err != nil {
		t.Fatalf("unexpected error getting value: %v", err)
	}
	if !ok || got != "bar" {
		t.Fatalf("expected (\"bar\", true) after reopen, got: (%q, %v)", got, ok)
	}
}
