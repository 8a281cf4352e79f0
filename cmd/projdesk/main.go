package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/projdesk/projdesk/pkg/log"
)

var version = "0.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cfg := NewProjdeskCommand()

	if err := cmd.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "projdesk: failed to parse command line arguments: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewZapLogger(cfg.verbose, cfg.jsonLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "projdesk: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	cfg.logger = logger

	if err := cmd.Run(ctx); err != nil {
		logger.Fatal("Command failed.", zap.Error(err))
	}
}
