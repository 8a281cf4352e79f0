// Package kv defines the key-value contract every projdesk storage backend
// implements.
package kv

import (
	"context"
)

// Store is a string key-value store. A missing key is a normal outcome:
// Get reports it with ok == false, and Remove of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
