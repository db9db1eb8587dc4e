package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/stream"
)

// LiveUpdater folds live ticker updates into today's bar of the cached
// Kalshi series, so intraday reports reflect the latest price.
type LiveUpdater struct {
	cache       *cache.Store
	keyByTicker map[string]string // market ticker -> config key
	logger      *slog.Logger

	mu sync.Mutex
}

// NewLiveUpdater builds the ticker-to-key index from config.
func NewLiveUpdater(cfg *config.Config, cacheStore *cache.Store, logger *slog.Logger) *LiveUpdater {
	if logger == nil {
		logger = slog.Default()
	}

	index := make(map[string]string, len(cfg.Markets))
	for _, mkt := range cfg.Markets {
		if mkt.Kalshi.MarketTicker != "" {
			index[mkt.Kalshi.MarketTicker] = mkt.Key
		}
	}

	return &LiveUpdater{
		cache:       cacheStore,
		keyByTicker: index,
		logger:      logger,
	}
}

// HandleTicker updates the cached series for the update's market. Writes
// are serialized; unknown tickers are ignored.
func (u *LiveUpdater) HandleTicker(update stream.TickerUpdate) {
	key, ok := u.keyByTicker[update.MarketTicker]
	if !ok {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	series := make(map[string]model.MarketSeries)
	snap, err := u.cache.Load(CacheKalshi, &series)
	if err != nil {
		u.logger.Warn("live update skipped, no cached data", "error", err)
		return
	}

	s, ok := series[key]
	if !ok {
		return
	}

	today := time.Now().UTC().Format(model.DateFormat)
	updated := false
	for i := range s.Bars {
		if s.Bars[i].Date == today {
			s.Bars[i].Price = update.Price
			if update.Price > s.Bars[i].High {
				s.Bars[i].High = update.Price
			}
			if s.Bars[i].Low == 0 || update.Price < s.Bars[i].Low {
				s.Bars[i].Low = update.Price
			}
			s.Bars[i].OpenInterest = float64(update.OpenInterest)
			updated = true
			break
		}
	}
	if !updated {
		s.Bars = append(s.Bars, model.DailyBar{
			Date:         today,
			Open:         update.Price,
			High:         update.Price,
			Low:          update.Price,
			Price:        update.Price,
			OpenInterest: float64(update.OpenInterest),
		})
	}
	s.Normalize()
	series[key] = s

	fetchID := snap.FetchID
	if fetchID == uuid.Nil {
		fetchID = uuid.New()
	}
	if err := u.cache.Save(CacheKalshi, snap.Source, fetchID, series); err != nil {
		u.logger.Error("live update save failed", "key", key, "error", err)
		return
	}

	u.logger.Debug("live price folded",
		"key", key,
		"ticker", update.MarketTicker,
		"price", update.Price,
	)
}
