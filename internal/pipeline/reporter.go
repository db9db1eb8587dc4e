package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/report"
	"github.com/oddsight/oddsight/internal/store"
)

// Report kinds accepted by the reporter's filter.
const (
	ReportComparison = "comparison"
	ReportScatter    = "scatter"
	ReportVolume     = "volume"
	ReportTimeline   = "timeline"
	ReportEvents     = "events"
	ReportOnchain    = "onchain"
	ReportCombined   = "combined"
	ReportPNG        = "png"
)

// Reporter loads fetched data and renders the chart set.
type Reporter struct {
	cfg    *config.Config
	cache  *cache.Store
	db     *store.Store
	gen    *report.Generator
	logger *slog.Logger
}

// NewReporter creates a reporter. The db store may be nil; when present
// it serves as a fallback read path for markets missing from the cache.
func NewReporter(cfg *config.Config, cacheStore *cache.Store, db *store.Store, gen *report.Generator, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		cfg:    cfg,
		cache:  cacheStore,
		db:     db,
		gen:    gen,
		logger: logger,
	}
}

// Run renders every report, or a single kind when only is non-empty.
// Per-chart failures are logged and skipped so one bad market does not
// block the rest.
func (r *Reporter) Run(ctx context.Context, only string) error {
	want := func(kind string) bool { return only == "" || only == kind }

	kalshiData, err := r.loadSeries(ctx, CacheKalshi, "kalshi")
	if err != nil {
		r.logger.Warn("no kalshi data", "error", err)
	}
	polyData, err := r.loadSeries(ctx, CachePolymarket, "polymarket")
	if err != nil {
		r.logger.Warn("no polymarket data", "error", err)
	}

	rendered := 0
	for _, mkt := range r.cfg.Markets {
		ks, hasK := kalshiData[mkt.Key]
		ps, hasP := polyData[mkt.Key]

		if hasK && hasP {
			milestones := toMilestones(mkt.Milestones)
			if want(ReportComparison) {
				if _, err := r.gen.WriteComparison(mkt.Key, mkt.Title, ks, ps, milestones); err != nil {
					r.logger.Error("comparison failed", "key", mkt.Key, "error", err)
				} else {
					rendered++
				}
			}
			if want(ReportScatter) {
				if _, err := r.gen.WriteScatter(mkt.Key, mkt.Title+": Platform Correlation", ks, ps); err != nil {
					r.logger.Error("scatter failed", "key", mkt.Key, "error", err)
				} else {
					rendered++
				}
			}
			if want(ReportVolume) {
				if _, err := r.gen.WriteVolume(mkt.Key, mkt.Title+": Daily Volume", ks, ps); err != nil {
					r.logger.Error("volume failed", "key", mkt.Key, "error", err)
				} else {
					rendered++
				}
			}
		}

		if hasK && want(ReportTimeline) {
			if _, err := r.gen.WritePriceVolume(mkt.Key, mkt.Title+": Price and Volume", ks); err != nil {
				r.logger.Error("timeline failed", "key", mkt.Key, "error", err)
			} else {
				rendered++
			}
		}
	}

	if want(ReportEvents) {
		rendered += r.renderEvents()
	}

	if want(ReportOnchain) {
		var rows []model.VolumeRow
		if _, err := r.cache.Load(CacheDuneVolume, &rows); err != nil {
			r.logger.Warn("no on-chain volume data", "error", err)
		} else if _, err := r.gen.WriteOnchainVolume("Polymarket Daily On-chain Volume", rows); err != nil {
			r.logger.Error("onchain volume failed", "error", err)
		} else {
			rendered++
		}
	}

	if want(ReportCombined) {
		all := append(seriesValues(kalshiData), seriesValues(polyData)...)
		if len(all) > 0 {
			if _, err := r.gen.WriteCombined("All Tracked Markets", all); err != nil {
				r.logger.Error("combined timeline failed", "error", err)
			} else {
				rendered++
			}
		}
	}

	if want(ReportPNG) {
		paths, err := r.gen.WritePNGDashboard(seriesValues(kalshiData))
		if err != nil {
			r.logger.Error("png dashboard failed", "error", err)
		}
		rendered += len(paths)
	}

	if rendered == 0 {
		return fmt.Errorf("no reports rendered (only=%q)", only)
	}
	r.logger.Info("reports rendered", "count", rendered, "dir", r.gen.Dir())
	return nil
}

// renderEvents renders the candidate pages for every cached event.
func (r *Reporter) renderEvents() int {
	rendered := 0
	for _, ev := range r.cfg.Events {
		var markets model.EventMarkets
		if _, err := r.cache.Load(CacheEventPrefix+ev.Key, &markets); err != nil {
			r.logger.Warn("no event data", "event", ev.Key, "error", err)
			continue
		}
		if _, err := r.gen.WriteEvent(ev.Key, markets); err != nil {
			r.logger.Error("event charts failed", "event", ev.Key, "error", err)
			continue
		}
		rendered++
	}
	return rendered
}

// loadSeries reads a source's series map from the cache, falling back to
// the Postgres store for configured markets when the cache is missing.
func (r *Reporter) loadSeries(ctx context.Context, cacheName, platform string) (map[string]model.MarketSeries, error) {
	series := make(map[string]model.MarketSeries)
	_, err := r.cache.Load(cacheName, &series)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || r.db == nil {
		return nil, err
	}

	for _, mkt := range r.cfg.Markets {
		ticker := mkt.Kalshi.MarketTicker
		if platform == "polymarket" {
			ticker = mkt.Polymarket.TokenID
		}
		if ticker == "" {
			continue
		}

		bars, err := r.db.LoadBars(ctx, platform, ticker)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			continue
		}

		s := model.MarketSeries{
			Key:      mkt.Key,
			Title:    mkt.Title,
			Platform: platform,
			Ticker:   ticker,
			Bars:     bars,
		}
		s.Normalize()
		series[mkt.Key] = s
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no %s data in cache or store", platform)
	}
	return series, nil
}

func toMilestones(ms []config.Milestone) []report.Milestone {
	out := make([]report.Milestone, len(ms))
	for i, m := range ms {
		out[i] = report.Milestone{Date: m.Date, Label: m.Label}
	}
	return out
}
