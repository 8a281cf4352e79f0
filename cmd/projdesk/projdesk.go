package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/projdesk/projdesk/pkg/api"
	"github.com/projdesk/projdesk/pkg/chrome"
	"github.com/projdesk/projdesk/pkg/log"
	"github.com/projdesk/projdesk/pkg/web"
)

const shutdownTimeout = 5 * time.Second

var projdeskUsage = `
Usage:
    projdesk [flags] [subcommand] [flags]

Runs the projdesk web UI and JSON API.

Options:
    --addr         TCP address for the HTTP server to listen on, in the form "host:port". (Default: ":8080")
    --store        Storage backend: bolt, sqlite, redis or memory. (Default: "bolt")
    --db           Database file path, for the bolt and sqlite stores. (Default: "~/.projdesk/projdesk.db")
    --redis-addr   Redis server address, for the redis store. (Default: "localhost:6379")
    --redis-prefix Key prefix, for the redis store. (Default: "projdesk:")
    --sort         Project list order: updated (newest first) or name. (Default: "updated")
    --chrome       Launch Chrome with the UI opened. (Default: false)
    --config       Path to a config file with one "flag value" pair per line.
    --verbose      Enable verbose logging.
    --json         Encode logs as JSON, instead of pretty/human readable output.
    --version, -v  Output version.
    --help, -h     Output this usage text.

Subcommands:
    - list   Print the stored projects.
    - reset  Remove all stored projects.

Environment variables are read with the PROJDESK_ prefix, e.g. PROJDESK_STORE=sqlite.

Visit https://github.com/projdesk/projdesk to learn more about projdesk.
`

type ProjdeskCommand struct {
	config  *Config
	addr    string
	chrome  bool
	version bool
}

func commandOptions() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("PROJDESK"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	}
}

func NewProjdeskCommand() (*ffcli.Command, *Config) {
	cmd := ProjdeskCommand{
		config: &Config{},
	}

	fs := flag.NewFlagSet("projdesk", flag.ContinueOnError)

	fs.StringVar(&cmd.addr, "addr", ":8080", "")
	fs.BoolVar(&cmd.chrome, "chrome", false, "")
	fs.BoolVar(&cmd.version, "version", false, "")
	fs.BoolVar(&cmd.version, "v", false, "")
	fs.String("config", "", "")

	cmd.config.RegisterFlags(fs)

	return &ffcli.Command{
		Name:    "projdesk",
		FlagSet: fs,
		Options: commandOptions(),
		Subcommands: []*ffcli.Command{
			NewListCommand(cmd.config),
			NewResetCommand(cmd.config),
		},
		Exec: cmd.Exec,
		UsageFunc: func(*ffcli.Command) string {
			return projdeskUsage
		},
	}, cmd.config
}

func (cmd *ProjdeskCommand) Exec(ctx context.Context, _ []string) error {
	if cmd.version {
		fmt.Println(version)
		return nil
	}

	mainLogger := cmd.config.logger.Named("main")

	store, closeStore, err := cmd.config.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			mainLogger.Error("Failed to close store.", zap.Error(err))
		}
	}()

	repo, err := cmd.config.newRepository(store)
	if err != nil {
		return err
	}

	handler, err := newRouter(routerConfig{
		repo:    repo,
		backend: cmd.config.store,
		logger:  cmd.config.logger,
	})
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cmd.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %v: %w", cmd.addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(cmd.config.logger.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		mainLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	url := uiURL(listener.Addr())

	if cmd.chrome {
		g.Go(func() error {
			closeChrome, err := chrome.Open(gctx, chrome.Config{URL: url})
			if err != nil {
				// The server stays useful without a browser window.
				mainLogger.Error("Failed to launch Chrome.", zap.Error(err))
				return nil
			}
			defer closeChrome()

			mainLogger.Info("Launched Chrome.")
			<-gctx.Done()

			return nil
		})
	}

	mainLogger.Info(fmt.Sprintf("projdesk (v%v) is running on %v ...", version, listener.Addr()))
	mainLogger.Info(fmt.Sprintf("\x1b[%dm%s\x1b[0m", 34, "Get started at "+url))

	return g.Wait()
}

type routerConfig struct {
	repo    api.ProjectRepository
	backend string
	logger  *zap.Logger
}

func newRouter(cfg routerConfig) (*mux.Router, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := mux.NewRouter()

	api.NewHandler(api.Config{
		Repository: cfg.repo,
		Logger:     log.NewLogger(cfg.logger, "api"),
		Registry:   registry,
	}).RegisterRoutes(router)

	webHandler, err := web.NewHandler(web.Config{
		Repository: cfg.repo,
		Backend:    cfg.backend,
		Logger:     log.NewLogger(cfg.logger, "web"),
	})
	if err != nil {
		return nil, err
	}

	webHandler.RegisterRoutes(router)

	return router, nil
}

// uiURL returns a browsable URL for the listener address, replacing
// unspecified hosts with localhost.
func uiURL(addr net.Addr) string {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return "http://" + addr.String() + "/"
	}

	host := "localhost"
	if tcpAddr.IP != nil && !tcpAddr.IP.IsUnspecified() {
		host = tcpAddr.IP.String()
	}

	return "http://" + net.JoinHostPort(host, fmt.Sprint(tcpAddr.Port)) + "/"
}
