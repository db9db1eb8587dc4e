// Command reporter loads cached market data, computes comparison stats,
// and writes the HTML and PNG report set.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/pipeline"
	"github.com/oddsight/oddsight/internal/report"
	"github.com/oddsight/oddsight/internal/store"
	"github.com/oddsight/oddsight/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/oddsight.yaml", "path to config file")
	only := flag.String("only", "", "render a single report kind (comparison, scatter, volume, timeline, events, onchain, combined, png)")
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

	logger.Info("starting reporter",
		"version", version.Version,
		"config", *configPath,
		"only", *only,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	cacheStore, err := cache.NewStore(cfg.Cache.Dir, cache.WithLogger(logger))
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	var db *store.Store
	if cfg.Database.Enabled() {
		db, err = store.Connect(ctx, cfg.Database.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	gen, err := report.NewGenerator(cfg.Reports.Dir, cfg.Reports.Theme, report.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		os.Exit(1)
	}

	reporter := pipeline.NewReporter(cfg, cacheStore, db, gen, logger)
	if err := reporter.Run(ctx, *only); err != nil {
		logger.Error("report generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("reports complete", "dir", gen.Dir())
}
