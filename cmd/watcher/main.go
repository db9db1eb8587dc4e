// Command watcher is the long-running daemon. It refreshes market data
// and regenerates reports on a cron schedule, optionally folds live
// Kalshi ticker updates into the cache, and serves a health endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/kalshi"
	"github.com/oddsight/oddsight/internal/pipeline"
	"github.com/oddsight/oddsight/internal/report"
	"github.com/oddsight/oddsight/internal/scheduler"
	"github.com/oddsight/oddsight/internal/store"
	"github.com/oddsight/oddsight/internal/stream"
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

	logger.Info("starting watcher",
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

	gen, err := report.NewGenerator(cfg.Reports.Dir, cfg.Reports.Theme, report.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	reporter := pipeline.NewReporter(cfg, cacheStore, db, gen, logger)

	refresh := func(jobCtx context.Context) {
		if err := fetcher.Run(jobCtx); err != nil {
			logger.Error("refresh fetch failed", "error", err)
			return
		}
		if err := reporter.Run(jobCtx, ""); err != nil {
			logger.Error("refresh report failed", "error", err)
		}
	}

	sched, err := scheduler.New(cfg.Scheduler.RefreshCron, refresh, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start(ctx, cfg.Scheduler.RunOnStart)

	var sub *stream.Subscriber
	if cfg.Stream.Enabled {
		creds, err := kalshi.LoadCredentials(cfg.Kalshi.APIKey, cfg.Kalshi.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load kalshi credentials", "error", err)
			os.Exit(1)
		}

		streamCfg := stream.DefaultConfig()
		streamCfg.URL = cfg.Kalshi.WSURL + kalshi.WebSocketPath
		streamCfg.PingInterval = cfg.Stream.PingInterval
		streamCfg.ReadTimeout = cfg.Stream.ReadTimeout
		streamCfg.ReconnectBaseDelay = cfg.Stream.ReconnectBaseDelay
		streamCfg.ReconnectMaxDelay = cfg.Stream.ReconnectMaxDelay
		for _, mkt := range cfg.Markets {
			if mkt.Kalshi.MarketTicker != "" {
				streamCfg.Tickers = append(streamCfg.Tickers, mkt.Kalshi.MarketTicker)
			}
		}

		updater := pipeline.NewLiveUpdater(cfg, cacheStore, logger)
		sub = stream.NewSubscriber(streamCfg, creds, updater, logger)
		if err := sub.Start(ctx); err != nil {
			logger.Error("failed to start stream", "error", err)
			os.Exit(1)
		}
	}

	healthPort := 8080
	if cfg.Health.Port > 0 {
		healthPort = cfg.Health.Port
	}
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", healthPort),
		Handler: createHealthHandler(cacheStore, db, sub),
	}
	go func() {
		logger.Info("starting health server", "port", healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("watcher running",
		"refresh_cron", cfg.Scheduler.RefreshCron,
		"stream", cfg.Stream.Enabled,
		"health_url", fmt.Sprintf("http://localhost:%d/health", healthPort),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	healthServer.Shutdown(shutdownCtx)
	if sub != nil {
		sub.Stop(shutdownCtx)
	}
	sched.Stop(shutdownCtx)

	logger.Info("watcher stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(cacheStore *cache.Store, db *store.Store, sub *stream.Subscriber) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if age, ok := cacheStore.Age(pipeline.CacheKalshi); !ok {
			health.Status = "degraded"
			health.Components["cache"] = "empty"
		} else {
			health.Components["cache"] = map[string]string{
				"status": "populated",
				"age":    age.Round(time.Second).String(),
			}
		}

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		if sub != nil {
			if sub.IsConnected() {
				health.Components["stream"] = "connected"
			} else {
				health.Status = "degraded"
				health.Components["stream"] = "disconnected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
