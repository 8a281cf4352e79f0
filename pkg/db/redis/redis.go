// Package redis implements kv.Store on top of a Redis server, so several
// projdesk processes can share one project collection.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "projdesk:"

type Store struct {
	client *goredis.Client
	prefix string
}

type Config struct {
	Client *goredis.Client
	// Prefix is prepended to every key. Defaults to DefaultPrefix.
	Prefix string
}

func NewStore(cfg Config) *Store {
	if cfg.Client == nil {
		panic("redis.NewStore: client is nil")
	}

	s := &Store{
		client: cfg.Client,
		prefix: cfg.Prefix,
	}

	if s.prefix == "" {
		s.prefix = DefaultPrefix
	}

	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: failed to get key: %w", err)
	}

	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set key: %w", err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete key: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
