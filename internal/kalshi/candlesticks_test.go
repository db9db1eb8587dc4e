package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const candlesticksFixture = `{
  "candlesticks": [
    {
      "end_period_ts": 1730678400,
      "price": {"open": 55, "high": 58, "low": 54, "close": 57},
      "volume": 1500000,
      "open_interest": 4200000
    },
    {
      "end_period_ts": 1730764800,
      "price": {"open": 57, "high": 63, "low": 56, "close": 62},
      "volume": 2100000,
      "open_interest": 4500000
    }
  ]
}`

func TestGetCandlesticks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/series/PRES/markets/PRES-2024-DJT/candlesticks"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}

		q := r.URL.Query()
		if q.Get("start_ts") != "1704067200" {
			t.Errorf("start_ts = %q", q.Get("start_ts"))
		}
		if q.Get("end_ts") != "1731024000" {
			t.Errorf("end_ts = %q", q.Get("end_ts"))
		}
		if q.Get("period_interval") != "1440" {
			t.Errorf("period_interval = %q, want 1440 (daily default)", q.Get("period_interval"))
		}

		w.Write([]byte(candlesticksFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	candles, err := c.GetCandlesticks(context.Background(), "PRES", "PRES-2024-DJT", CandlesticksOptions{
		StartTS: 1704067200,
		EndTS:   1731024000,
	})
	if err != nil {
		t.Fatalf("GetCandlesticks: %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("len(candles) = %d, want 2", len(candles))
	}
	if candles[0].Price.Close != 57 {
		t.Errorf("candles[0].Price.Close = %d, want 57", candles[0].Price.Close)
	}
	if candles[1].Volume != 2100000 {
		t.Errorf("candles[1].Volume = %d, want 2100000", candles[1].Volume)
	}
}

func TestGetCandlesticksAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such market", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	if _, err := c.GetCandlesticks(context.Background(), "PRES", "MISSING", CandlesticksOptions{}); err == nil {
		t.Fatal("expected error for 404")
	}
}
