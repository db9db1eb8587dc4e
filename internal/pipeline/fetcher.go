package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/dune"
	"github.com/oddsight/oddsight/internal/kalshi"
	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/polymarket"
	"github.com/oddsight/oddsight/internal/store"
)

// Cache entry names, one per source.
const (
	CacheKalshi      = "kalshi_data"
	CachePolymarket  = "polymarket_data"
	CacheDuneVolume  = "polymarket_daily_volume"
	CacheEventPrefix = "event_"
)

// ErrAllSourcesFailed is returned when no source produced any data.
var ErrAllSourcesFailed = errors.New("all sources failed")

// marketFetchConcurrency bounds parallel per-market API calls.
const marketFetchConcurrency = 4

// Fetcher pulls market data from all configured sources into the cache
// and the optional Postgres store.
type Fetcher struct {
	cfg    *config.Config
	kalshi *kalshi.Client
	poly   *polymarket.Client
	dune   *dune.Client
	cache  *cache.Store
	db     *store.Store
	logger *slog.Logger
}

// NewFetcher builds the source clients from config. The db store may be
// nil. Dune is skipped when no API key is configured.
func NewFetcher(cfg *config.Config, cacheStore *cache.Store, db *store.Store, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kalshiOpts := []kalshi.ClientOption{
		kalshi.WithLogger(logger.With("component", "kalshi")),
		kalshi.WithTimeout(cfg.Kalshi.Timeout),
		kalshi.WithRetries(cfg.Kalshi.MaxRetries, time.Second),
	}
	if cfg.Kalshi.APIKey != "" && cfg.Kalshi.PrivateKeyPath != "" {
		creds, err := kalshi.LoadCredentials(cfg.Kalshi.APIKey, cfg.Kalshi.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load kalshi credentials: %w", err)
		}
		kalshiOpts = append(kalshiOpts, kalshi.WithCredentials(creds))
	}

	f := &Fetcher{
		cfg: cfg,
		kalshi: kalshi.NewClient(cfg.Kalshi.RestURL, kalshiOpts...),
		poly: polymarket.NewClient(cfg.Polymarket.GammaURL, cfg.Polymarket.ClobURL,
			polymarket.WithLogger(logger.With("component", "polymarket")),
			polymarket.WithTimeout(cfg.Polymarket.Timeout),
			polymarket.WithRetries(cfg.Polymarket.MaxRetries, time.Second),
		),
		cache:  cacheStore,
		db:     db,
		logger: logger,
	}

	if cfg.Dune.APIKey != "" {
		f.dune = dune.NewClient(cfg.Dune.BaseURL, cfg.Dune.APIKey,
			dune.WithLogger(logger.With("component", "dune")),
			dune.WithTimeout(cfg.Dune.Timeout),
			dune.WithPolling(cfg.Dune.PollInterval, cfg.Dune.MaxPollAttempts),
		)
	}

	return f, nil
}

// Run fetches every source concurrently. Per-source failures are logged
// and skipped; it returns ErrAllSourcesFailed only when nothing succeeded.
func (f *Fetcher) Run(ctx context.Context) error {
	type result struct {
		source string
		err    error
	}

	sources := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"kalshi", f.FetchKalshi},
		{"polymarket", f.FetchPolymarket},
		{"events", f.FetchEvents},
		{"dune", f.FetchDune},
	}

	results := make(chan result, len(sources))
	for _, src := range sources {
		src := src
		go func() {
			results <- result{src.name, src.fn(ctx)}
		}()
	}

	failures := 0
	for range sources {
		res := <-results
		if res.err != nil {
			failures++
			f.logger.Error("source fetch failed", "source", res.source, "error", res.err)
		}
	}

	if failures == len(sources) {
		return ErrAllSourcesFailed
	}
	return nil
}

// FetchKalshi fetches daily candlesticks for every configured market
// with a Kalshi ticker and saves them as one cache snapshot.
func (f *Fetcher) FetchKalshi(ctx context.Context) error {
	run := model.NewFetchRun("kalshi")
	series := make(map[string]model.MarketSeries, len(f.cfg.Markets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(marketFetchConcurrency)
	out := make(chan model.MarketSeries, len(f.cfg.Markets))

	for _, mkt := range f.cfg.Markets {
		mkt := mkt
		if mkt.Kalshi.SeriesTicker == "" || mkt.Kalshi.MarketTicker == "" {
			continue
		}
		g.Go(func() error {
			candles, err := f.kalshi.GetCandlesticks(gctx, mkt.Kalshi.SeriesTicker, mkt.Kalshi.MarketTicker, kalshi.CandlesticksOptions{
				StartTS: mkt.StartTS,
				EndTS:   mkt.EndTS,
			})
			if err != nil {
				return fmt.Errorf("market %s: %w", mkt.Key, err)
			}

			s := model.MarketSeries{
				Key:      mkt.Key,
				Title:    mkt.Title,
				Platform: "kalshi",
				Ticker:   mkt.Kalshi.MarketTicker,
				Bars:     kalshi.CandlesToBars(candles),
			}
			s.Normalize()
			annotate(&s, mkt.Milestones)
			out <- s
			return nil
		})
	}

	err := g.Wait()
	close(out)
	for s := range out {
		series[s.Key] = s
		run.Markets++
		run.Days += len(s.Bars)
	}

	return f.finish(ctx, run, err, CacheKalshi, series, seriesValues(series))
}

// FetchPolymarket fetches CLOB price history for every configured market
// with a Polymarket token and saves the daily bars.
func (f *Fetcher) FetchPolymarket(ctx context.Context) error {
	run := model.NewFetchRun("polymarket")
	series := make(map[string]model.MarketSeries, len(f.cfg.Markets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(marketFetchConcurrency)
	out := make(chan model.MarketSeries, len(f.cfg.Markets))

	for _, mkt := range f.cfg.Markets {
		mkt := mkt
		if mkt.Polymarket.TokenID == "" {
			continue
		}
		g.Go(func() error {
			points, err := f.poly.GetPricesHistory(gctx, mkt.Polymarket.TokenID, mkt.StartTS, mkt.EndTS)
			if err != nil {
				return fmt.Errorf("market %s: %w", mkt.Key, err)
			}

			s := model.MarketSeries{
				Key:      mkt.Key,
				Title:    mkt.Title,
				Platform: "polymarket",
				Ticker:   mkt.Polymarket.TokenID,
				Bars:     polymarket.HistoryToBars(points),
			}
			s.Normalize()
			annotate(&s, mkt.Milestones)
			out <- s
			return nil
		})
	}

	err := g.Wait()
	close(out)
	for s := range out {
		series[s.Key] = s
		run.Markets++
		run.Days += len(s.Bars)
	}

	return f.finish(ctx, run, err, CachePolymarket, series, seriesValues(series))
}

// FetchEvents fetches every configured multi-outcome event and saves
// each as its own cache snapshot.
func (f *Fetcher) FetchEvents(ctx context.Context) error {
	run := model.NewFetchRun("events")

	var firstErr error
	for _, ev := range f.cfg.Events {
		apiEvent, err := f.poly.GetEvent(ctx, ev.Slug)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("event %s: %w", ev.Key, err)
			}
			f.logger.Error("event fetch failed", "event", ev.Key, "error", err)
			continue
		}

		markets := polymarket.ToEventMarkets(apiEvent)
		if ev.Title != "" {
			markets.Title = ev.Title
		}

		if err := f.cache.Save(CacheEventPrefix+ev.Key, "polymarket", run.ID, markets); err != nil {
			return err
		}
		run.Markets++
		run.Days += len(markets.Candidates)
	}

	return f.finishRun(ctx, run, firstErr)
}

// FetchDune executes the configured volume query and saves the rows.
// It is a no-op when no Dune API key is set.
func (f *Fetcher) FetchDune(ctx context.Context) error {
	if f.dune == nil {
		f.logger.Info("dune fetch skipped, no api key configured")
		return nil
	}

	run := model.NewFetchRun("dune")
	rows, err := f.dune.DailyVolume(ctx, f.cfg.Dune.VolumeQuery)
	if err != nil {
		return f.finishRun(ctx, run, err)
	}

	run.Markets = 1
	run.Days = len(rows)
	if err := f.cache.Save(CacheDuneVolume, "dune", run.ID, rows); err != nil {
		return err
	}
	return f.finishRun(ctx, run, nil)
}

// finish saves the fetched series map, persists bars to the store, and
// records the run. Partial data is saved even when some markets failed.
func (f *Fetcher) finish(ctx context.Context, run model.FetchRun, fetchErr error, cacheName string, data any, series []model.MarketSeries) error {
	if run.Markets > 0 {
		if err := f.cache.Save(cacheName, run.Source, run.ID, data); err != nil {
			return err
		}
		if f.db != nil {
			for _, s := range series {
				if err := f.db.UpsertBars(ctx, s); err != nil {
					f.logger.Error("store upsert failed", "key", s.Key, "error", err)
				}
			}
		}
	}

	return f.finishRun(ctx, run, fetchErr)
}

// finishRun completes the audit record and writes it to the store.
func (f *Fetcher) finishRun(ctx context.Context, run model.FetchRun, fetchErr error) error {
	run.Duration = time.Now().UnixMicro() - run.StartedAt
	if fetchErr != nil {
		run.Err = fetchErr.Error()
	}

	f.logger.Info("fetch run finished",
		"source", run.Source,
		"run_id", run.ID,
		"markets", run.Markets,
		"days", run.Days,
		"duration_us", run.Duration,
		"error", run.Err,
	)

	if f.db != nil {
		if err := f.db.RecordFetchRun(ctx, run); err != nil {
			f.logger.Error("record fetch run failed", "error", err)
		}
	}
	return fetchErr
}

// annotate copies milestone labels onto matching bars.
func annotate(s *model.MarketSeries, milestones []config.Milestone) {
	if len(milestones) == 0 {
		return
	}
	byDate := make(map[string]string, len(milestones))
	for _, m := range milestones {
		byDate[m.Date] = m.Label
	}
	for i := range s.Bars {
		if label, ok := byDate[s.Bars[i].Date]; ok {
			s.Bars[i].Event = label
		}
	}
}

func seriesValues(m map[string]model.MarketSeries) []model.MarketSeries {
	out := make([]model.MarketSeries, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	return out
}
