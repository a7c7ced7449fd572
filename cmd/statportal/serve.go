package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/statportal/internal/cache"
	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/health"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
	"github.com/vyrodovalexey/statportal/internal/server"
	"github.com/vyrodovalexey/statportal/internal/session"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(flags, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, path)
		},
	}
}

// runServe wires the server from cfg and blocks until ctx ends. A non-empty
// path enables hot reload of the table settings.
func runServe(ctx context.Context, cfg *config.PortalConfig, path string) error {
	logger, err := initLogger(cfg, "")
	if err != nil {
		return err
	}
	logger.Info("starting statportal",
		observability.String("version", version),
		observability.String("config", path),
		observability.String("upstream", cfg.Upstream.BaseURL))

	tracer, err := initTracer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown tracer", observability.Error(err))
		}
	}()

	retryCfg := &retry.Config{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialBackoff.Duration(),
		MaxBackoff:     cfg.Retry.MaxBackoff.Duration(),
	}

	sessions, err := session.New(cfg.Session, session.WithLogger(logger), session.WithRetryConfig(retryCfg))
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	defer func() { _ = sessions.Close() }()

	payloads, err := cache.New(&cfg.Cache, cache.WithLogger(logger), cache.WithRetryConfig(retryCfg))
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer func() { _ = payloads.Close() }()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics("statportal")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	srv, err := server.New(cfg, server.Deps{
		API:      client,
		Sessions: sessions,
		Cache:    payloads,
		Health:   health.NewChecker(version),
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if path != "" {
		watcher, err := startConfigWatcher(ctx, path, srv, logger)
		if err != nil {
			logger.Warn("configuration hot reload disabled", observability.Error(err))
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("statportal stopped")
	return nil
}

// startConfigWatcher applies table setting changes without a restart. Other
// sections take effect on the next start.
func startConfigWatcher(
	ctx context.Context, path string, srv *server.Server, logger observability.Logger,
) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(path, func(cfg *config.PortalConfig) {
		srv.SetTableConfig(cfg.Table)
		logger.Info("table settings reloaded",
			observability.Int("censusYears", len(cfg.Table.CensusYears)))
	},
		config.WithLogger(logger),
		config.WithErrorCallback(func(err error) {
			logger.Error("configuration reload failed", observability.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}
	return watcher, nil
}
