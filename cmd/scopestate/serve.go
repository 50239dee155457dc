package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/abhisheknishant138/scope/internal/config"
	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/server"
	"github.com/abhisheknishant138/scope/pkg/storage"
	"github.com/abhisheknishant138/scope/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the view-state server",
		Long: `Run the view-state HTTP and WebSocket server.

Configuration is read from --config, or from scope.json, scope.yaml or
scope.yml in the working directory. Without a config file the defaults are
used: in-memory persistence on localhost:4040.

Examples:
  scopestate serve
  scopestate serve --config /etc/scope/scope.yaml
  scopestate serve --port=8080 --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to scope.json or scope.yaml")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

// loadConfig reads the config at path, or from the working directory when
// path is empty. A missing config in the working directory is not an error.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.Code(err) == "E141" {
		return config.New(), nil
	}
	return cfg, err
}

func storeOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Backend:  cfg.Persistence.Backend,
		Path:     cfg.StorePath(),
		Bucket:   cfg.Persistence.Bucket,
		Prefix:   cfg.Persistence.Prefix,
		Region:   cfg.Persistence.Region,
		Endpoint: cfg.Persistence.Endpoint,
	}
}

// newServer wires the store, metrics and tracer described by cfg into a
// server. The returned cleanup closes the store.
func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	scfg := server.DefaultConfig()
	scfg.Logger = logger
	scfg.Tracer = telemetry.Tracer(cfg.Tracing.TracerName)

	cleanup := func() {}
	if cfg.Persistence.Enabled {
		store, err := storage.Open(ctx, storeOptions(cfg))
		if err != nil {
			return nil, nil, err
		}
		scfg.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("closing store", "error", err)
			}
		}
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		scfg.Recorder = telemetry.NewMetrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		scfg.Gatherer = reg
	}

	return server.New(scfg), cleanup, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	srv, cleanup, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting scope state server",
		"addr", cfg.Address(),
		"persistence", cfg.Persistence.Enabled,
		"backend", cfg.Persistence.Backend,
		"metrics", cfg.Metrics.Enabled)

	if err := srv.ListenAndServe(ctx, cfg.Address()); err != nil {
		return err
	}
	success("server stopped")
	return nil
}
