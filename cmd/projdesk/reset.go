package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func NewResetCommand(cfg *Config) *ffcli.Command {
	fs := flag.NewFlagSet("projdesk reset", flag.ContinueOnError)
	fs.String("config", "", "Path to a config file.")
	cfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "reset",
		ShortUsage: "projdesk reset [flags]",
		ShortHelp:  "Remove all stored projects.",
		FlagSet:    fs,
		Options:    commandOptions(),
		Exec: func(ctx context.Context, _ []string) error {
			store, closeStore, err := cfg.openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer closeStore() //nolint:errcheck

			repo, err := cfg.newRepository(store)
			if err != nil {
				return err
			}

			if err := repo.Clear(ctx); err != nil {
				return err
			}

			cfg.logger.Named("reset").Info("Removed all projects.")

			return nil
		},
	}
}
