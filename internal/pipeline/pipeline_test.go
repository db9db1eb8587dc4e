package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oddsight/oddsight/internal/cache"
	"github.com/oddsight/oddsight/internal/config"
	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/report"
)

// fakeUpstream serves minimal Kalshi, Polymarket, and Dune responses from
// one mux so a Fetcher can point every base URL at it.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/series/PRES/markets/PRES-2024-DJT/candlesticks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candlesticks": [
			{"end_period_ts": 1725235199, "price": {"open": 50, "high": 53, "low": 49, "close": 52}, "volume": 1200000, "open_interest": 900000},
			{"end_period_ts": 1725321599, "price": {"open": 52, "high": 56, "low": 51, "close": 55}, "volume": 1500000, "open_interest": 950000}
		]}`))
	})

	mux.HandleFunc("/prices-history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"history": [
			{"t": 1725235100, "p": "0.50"},
			{"t": 1725321500, "p": "0.56"}
		]}`))
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"id": "901", "slug": "nyc-mayor", "title": "NYC Mayor",
			"markets": [
				{"id": "1", "groupItemTitle": "Candidate A", "volume": "30000000", "outcomePrices": "[\"0.995\", \"0.005\"]", "clobTokenIds": "[\"tok-a\"]"},
				{"id": "2", "groupItemTitle": "Other", "volume": "1000000"}
			]
		}]`))
	})

	mux.HandleFunc("/query/execute", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"}`))
	})
	mux.HandleFunc("/execution/exec-1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_COMPLETED"}`))
	})
	mux.HandleFunc("/execution/exec-1/results", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_COMPLETED",
			"result": {"rows": [{"date": "2024-09-01 00:00:00.000 UTC", "volume_usd": 1234.5}]}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srvURL, cacheDir, reportsDir string) *config.Config {
	return &config.Config{
		Cache:   config.CacheConfig{Dir: cacheDir},
		Reports: config.ReportsConfig{Dir: reportsDir, Theme: "dark"},
		Kalshi:  config.KalshiConfig{RestURL: srvURL},
		Polymarket: config.PolymarketConfig{
			GammaURL: srvURL,
			ClobURL:  srvURL,
		},
		Dune: config.DuneConfig{
			BaseURL:         srvURL,
			APIKey:          "test-key",
			VolumeQuery:     "SELECT 1",
			PollInterval:    10 * time.Millisecond,
			MaxPollAttempts: 10,
		},
		Markets: []config.MarketConfig{{
			Key:        "presidential",
			Title:      "2024 Presidential Election",
			Kalshi:     config.KalshiMarket{SeriesTicker: "PRES", MarketTicker: "PRES-2024-DJT"},
			Polymarket: config.PolymarketMarket{TokenID: "tok-pres"},
			StartTS:    1725148800,
			EndTS:      1725408000,
			Milestones: []config.Milestone{{Date: "2024-09-02", Label: "Debate"}},
		}},
		Events: []config.EventConfig{{
			Key:  "nyc_mayor",
			Slug: "nyc-mayor",
		}},
	}
}

func newTestFetcher(t *testing.T, cfg *config.Config) (*Fetcher, *cache.Store) {
	t.Helper()
	cacheStore, err := cache.NewStore(cfg.Cache.Dir)
	if err != nil {
		t.Fatalf("cache.NewStore: %v", err)
	}
	f, err := NewFetcher(cfg, cacheStore, nil, nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f, cacheStore
}

func TestFetcherRun(t *testing.T) {
	srv := fakeUpstream(t)
	cfg := testConfig(srv.URL, t.TempDir(), t.TempDir())
	f, cacheStore := newTestFetcher(t, cfg)

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var kalshiData map[string]model.MarketSeries
	if _, err := cacheStore.Load(CacheKalshi, &kalshiData); err != nil {
		t.Fatalf("load kalshi cache: %v", err)
	}
	s, ok := kalshiData["presidential"]
	if !ok {
		t.Fatal("presidential series missing from kalshi cache")
	}
	if len(s.Bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(s.Bars))
	}
	if s.Bars[1].Price != 0.55 {
		t.Errorf("close = %v, want 0.55", s.Bars[1].Price)
	}
	if s.Bars[1].Event != "Debate" {
		t.Errorf("milestone annotation missing: %+v", s.Bars[1])
	}

	var polyData map[string]model.MarketSeries
	if _, err := cacheStore.Load(CachePolymarket, &polyData); err != nil {
		t.Fatalf("load polymarket cache: %v", err)
	}
	if len(polyData["presidential"].Bars) != 2 {
		t.Errorf("polymarket bars = %d, want 2", len(polyData["presidential"].Bars))
	}

	var event model.EventMarkets
	if _, err := cacheStore.Load(CacheEventPrefix+"nyc_mayor", &event); err != nil {
		t.Fatalf("load event cache: %v", err)
	}
	if len(event.Candidates) != 1 || event.Candidates[0].Name != "Candidate A" {
		t.Errorf("candidates = %+v", event.Candidates)
	}

	var rows []model.VolumeRow
	if _, err := cacheStore.Load(CacheDuneVolume, &rows); err != nil {
		t.Fatalf("load dune cache: %v", err)
	}
	if len(rows) != 1 || rows[0].Date != "2024-09-01" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestFetcherRunAllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, t.TempDir(), t.TempDir())
	f, _ := newTestFetcher(t, cfg)

	err := f.Run(context.Background())
	if err != ErrAllSourcesFailed {
		t.Errorf("err = %v, want ErrAllSourcesFailed", err)
	}
}

func TestFetchDuneSkippedWithoutKey(t *testing.T) {
	cfg := testConfig("http://unused", t.TempDir(), t.TempDir())
	cfg.Dune.APIKey = ""
	f, cacheStore := newTestFetcher(t, cfg)

	if err := f.FetchDune(context.Background()); err != nil {
		t.Fatalf("FetchDune: %v", err)
	}

	var rows []model.VolumeRow
	if _, err := cacheStore.Load(CacheDuneVolume, &rows); err == nil {
		t.Error("dune cache written despite missing key")
	}
}

func TestFetchDuneZeroPollSettings(t *testing.T) {
	srv := fakeUpstream(t)
	cfg := testConfig(srv.URL, t.TempDir(), t.TempDir())
	// A programmatic config may skip the defaults entirely; the fetch
	// must still complete on the client's own polling defaults.
	cfg.Dune.PollInterval = 0
	cfg.Dune.MaxPollAttempts = 0
	f, cacheStore := newTestFetcher(t, cfg)

	if err := f.FetchDune(context.Background()); err != nil {
		t.Fatalf("FetchDune: %v", err)
	}

	var rows []model.VolumeRow
	if _, err := cacheStore.Load(CacheDuneVolume, &rows); err != nil {
		t.Fatalf("load dune cache: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReporterRun(t *testing.T) {
	srv := fakeUpstream(t)
	reportsDir := t.TempDir()
	cfg := testConfig(srv.URL, t.TempDir(), reportsDir)
	f, cacheStore := newTestFetcher(t, cfg)

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	gen, err := report.NewGenerator(reportsDir, cfg.Reports.Theme)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	r := NewReporter(cfg, cacheStore, nil, gen, nil)
	if err := r.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{
		"presidential_comparison.html",
		"presidential_scatter.html",
		"presidential_volume.html",
		"presidential_price_volume.html",
		"nyc_mayor_candidates.html",
		"onchain_volume.html",
		"combined_timeline.html",
		"presidential_dashboard.png",
	} {
		if _, err := os.Stat(filepath.Join(reportsDir, name)); err != nil {
			t.Errorf("missing report %s: %v", name, err)
		}
	}
}

func TestReporterRunOnly(t *testing.T) {
	srv := fakeUpstream(t)
	reportsDir := t.TempDir()
	cfg := testConfig(srv.URL, t.TempDir(), reportsDir)
	f, cacheStore := newTestFetcher(t, cfg)

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	gen, err := report.NewGenerator(reportsDir, cfg.Reports.Theme)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	r := NewReporter(cfg, cacheStore, nil, gen, nil)
	if err := r.Run(context.Background(), ReportScatter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), "_scatter.html") {
			t.Errorf("unexpected report %s", e.Name())
		}
	}
}
