package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/carrousel-labs/review-proxy/api"
	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/log"
	"github.com/carrousel-labs/review-proxy/metrics"
	"github.com/carrousel-labs/review-proxy/reviews"
	"github.com/carrousel-labs/review-proxy/sentry_integration"
)

const (
	shutdownTimeout    = 10 * time.Second
	sentryFlushTimeout = 2 * time.Second
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review proxy API server",
		Long: `
Run the review proxy API server.

This command serves normalized review pages to the carousel widget, answering from
an in-process TTL cache and falling back to the upstream review API on a miss.

Cache, upstream, rate limiting, CORS, metrics and Sentry are configured via environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg)
			return serve(cmd.Context(), cfg, logger)
		},
	}

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := sentry_integration.Init(cfg.GetSentryConfig(), config.Version); err != nil {
		return err
	}
	defer sentry_integration.Flush(sentryFlushTimeout)

	metrics.Init(cfg.GetEnvironment())
	metricsServer := metrics.NewServer(cfg, logger)

	cacheCfg := cfg.GetCacheConfig()
	opts := cache.OptionsFromConfig(cacheCfg)
	opts.Observer = metrics.CacheObserver{}
	store, err := cache.New(opts, logger)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	metrics.StartCacheStatsUpdater(store, cacheCfg.StatsInterval, logger)

	client := reviews.NewClient(cfg.GetUpstreamConfig(), logger)
	svc := reviews.NewService(store, client, cacheCfg, logger)
	server := api.New(cfg, logger, store, svc)

	logger.Info("review proxy starting",
		slog.String("version", config.Version),
		slog.String("environment", cfg.GetEnvironment()),
		slog.String("cache_type", opts.Type),
		slog.Int("cache_max_items", cacheCfg.MaxItems),
		slog.Int("cache_max_memory_mb", cacheCfg.MaxMemoryMB),
		slog.Duration("cache_ttl", cacheCfg.TTL))

	// graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer metrics.RecoverFromPanic("api")
		return server.Start()
	})
	g.Go(func() error {
		defer metrics.RecoverFromPanic("metrics")
		return metricsServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down review proxy...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			server.Shutdown(shutdownCtx),
			metricsServer.Shutdown(shutdownCtx),
		)
	})

	return g.Wait()
}
