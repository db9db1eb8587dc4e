// Command fetcher pulls market data from Kalshi, Polymarket, and Dune
// into the local cache (and Postgres when configured), then exits.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/pipeline"
	"github.com/oddsight/oddsight/internal/store"
	"github.com/oddsight/oddsight/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/oddsight.yaml", "path to config file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting fetcher",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cacheStore, err := cache.NewStore(cfg.Cache.Dir, cache.WithLogger(logger))
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	var db *store.Store
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"database", cfg.Database.Postgres.Name,
		)
		db, err = store.Connect(ctx, cfg.Database.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
	}

	fetcher, err := pipeline.NewFetcher(cfg, cacheStore, db, logger)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		os.Exit(1)
	}

	if err := fetcher.Run(ctx); err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}

	logger.Info("fetch complete", "cache_dir", cacheStore.Dir())
}
