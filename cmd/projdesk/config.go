package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/projdesk/projdesk/pkg/db/bolt"
	redisdb "github.com/projdesk/projdesk/pkg/db/redis"
	"github.com/projdesk/projdesk/pkg/db/sqlite"
	"github.com/projdesk/projdesk/pkg/kv"
	"github.com/projdesk/projdesk/pkg/log"
	"github.com/projdesk/projdesk/pkg/proj"
)

// Config holds the settings shared by projdesk and its subcommands.
type Config struct {
	verbose     bool
	jsonLogs    bool
	store       string
	db          string
	redisAddr   string
	redisPrefix string
	sort        string
	logger      *zap.Logger
}

func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cfg.verbose, "verbose", false, "Enable verbose logging.")
	fs.BoolVar(&cfg.jsonLogs, "json", false, "Encode logs as JSON, instead of pretty/human readable output.")
	fs.StringVar(&cfg.store, "store", "bolt", "Storage backend: `bolt`, `sqlite`, `redis` or `memory`.")
	fs.StringVar(&cfg.db, "db", "~/.projdesk/projdesk.db", "Database file path, for the `bolt` and `sqlite` stores.")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "localhost:6379", "Redis server address, for the `redis` store.")
	fs.StringVar(&cfg.redisPrefix, "redis-prefix", redisdb.DefaultPrefix, "Key prefix, for the `redis` store.")
	fs.StringVar(&cfg.sort, "sort", "updated", "Project list order: `updated` (newest first) or `name`.")
}

type closeFunc func() error

// openStore opens the configured storage backend.
func (cfg *Config) openStore(ctx context.Context) (kv.Store, closeFunc, error) {
	switch cfg.store {
	case "memory":
		return kv.NewMemory(), func() error { return nil }, nil
	case "bolt", "sqlite":
		path, err := homedir.Expand(cfg.db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to expand database path: %w", err)
		}

		if err := ensureDir(path); err != nil {
			return nil, nil, err
		}

		if cfg.store == "sqlite" {
			store, err := sqlite.Open(ctx, path)
			if err != nil {
				return nil, nil, err
			}
			return store, store.Close, nil
		}

		db, err := bolt.OpenDatabase(path, nil)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.redisAddr})

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		store := redisdb.NewStore(redisdb.Config{Client: client, Prefix: cfg.redisPrefix})
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid store %q", cfg.store)
	}
}

func (cfg *Config) newRepository(store kv.Store) (*proj.Repository, error) {
	order, err := proj.ParseSortOrder(cfg.sort)
	if err != nil {
		return nil, err
	}

	return proj.NewRepository(proj.Config{
		Store:     store,
		SortOrder: order,
		Logger:    log.NewLogger(cfg.logger, "proj"),
	}), nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	return nil
}
