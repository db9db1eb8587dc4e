package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/model"
)

// Store persists daily bars and fetch runs in Postgres.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Ping verifies the connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			platform      TEXT NOT NULL,
			ticker        TEXT NOT NULL,
			day           DATE NOT NULL,
			open          DOUBLE PRECISION NOT NULL DEFAULT 0,
			high          DOUBLE PRECISION NOT NULL DEFAULT 0,
			low           DOUBLE PRECISION NOT NULL DEFAULT 0,
			price         DOUBLE PRECISION NOT NULL,
			volume        DOUBLE PRECISION NOT NULL DEFAULT 0,
			open_interest DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (platform, ticker, day)
		)`,
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id         UUID PRIMARY KEY,
			source     TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			duration   BIGINT NOT NULL DEFAULT 0,
			markets    INT NOT NULL DEFAULT 0,
			days       INT NOT NULL DEFAULT 0,
			error      TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertBars writes a series' bars using pgx.Batch with ON CONFLICT upsert,
// so re-fetching a window overwrites stale closes.
func (s *Store) UpsertBars(ctx context.Context, series model.MarketSeries) error {
	if len(series.Bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range series.Bars {
		batch.Queue(`
			INSERT INTO daily_bars (platform, ticker, day, open, high, low, price, volume, open_interest)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (platform, ticker, day) DO UPDATE SET
				open = EXCLUDED.open,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				price = EXCLUDED.price,
				volume = EXCLUDED.volume,
				open_interest = EXCLUDED.open_interest
		`, series.Platform, series.Ticker, b.Date, b.Open, b.High, b.Low, b.Price, b.Volume, b.OpenInterest)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range series.Bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert bars %s/%s: %w", series.Platform, series.Ticker, err)
		}
	}

	s.logger.Debug("bars upserted",
		"platform", series.Platform,
		"ticker", series.Ticker,
		"count", len(series.Bars),
	)
	return nil
}

// LoadBars reads a market's history back, sorted ascending by day.
func (s *Store) LoadBars(ctx context.Context, platform, ticker string) ([]model.DailyBar, error) {
	rows, err := s.db.Query(ctx, `
		SELECT to_char(day, 'YYYY-MM-DD'), open, high, low, price, volume, open_interest
		FROM daily_bars
		WHERE platform = $1 AND ticker = $2
		ORDER BY day ASC
	`, platform, ticker)
	if err != nil {
		return nil, fmt.Errorf("load bars %s/%s: %w", platform, ticker, err)
	}
	defer rows.Close()

	var bars []model.DailyBar
	for rows.Next() {
		var b model.DailyBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Price, &b.Volume, &b.OpenInterest); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, nil
}

// RecordFetchRun writes one fetch-run audit row.
func (s *Store) RecordFetchRun(ctx context.Context, run model.FetchRun) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO fetch_runs (id, source, started_at, duration, markets, days, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Source, run.StartedAt, run.Duration, run.Markets, run.Days, run.Err)
	if err != nil {
		return fmt.Errorf("record fetch run: %w", err)
	}
	return nil
}
