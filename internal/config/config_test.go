package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
markets:
  - key: presidential
    title: 2024 Presidential Election - Trump
    kalshi:
      series_ticker: PRES
      market_ticker: PRES-2024-DJT
    start_ts: 1704067200
    end_ts: 1731024000
`

func TestLoadAndValidateMinimal(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate: %v", err)
	}

	if cfg.Kalshi.RestURL != DefaultKalshiRestURL {
		t.Errorf("Kalshi.RestURL = %q, want default", cfg.Kalshi.RestURL)
	}
	if cfg.Dune.PollInterval != 2*time.Second {
		t.Errorf("Dune.PollInterval = %v, want 2s", cfg.Dune.PollInterval)
	}
	if cfg.Dune.MaxPollAttempts != 60 {
		t.Errorf("Dune.MaxPollAttempts = %d, want 60", cfg.Dune.MaxPollAttempts)
	}
	if cfg.Cache.Dir != ".cache" {
		t.Errorf("Cache.Dir = %q, want .cache", cfg.Cache.Dir)
	}
	if !strings.Contains(cfg.Dune.VolumeQuery, "polygon.transactions") {
		t.Error("default volume query not applied")
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true without host")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("DUNE_API_KEY", "test-key-123")

	path := writeConfig(t, minimalConfig+`
dune:
  api_key: ${DUNE_API_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dune.APIKey != "test-key-123" {
		t.Errorf("Dune.APIKey = %q, want expanded env value", cfg.Dune.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no markets",
			mutate:  func(c *Config) { c.Markets = nil },
			wantErr: "at least one market",
		},
		{
			name: "missing key",
			mutate: func(c *Config) {
				c.Markets = []MarketConfig{{Title: "x"}}
			},
			wantErr: "key is required",
		},
		{
			name: "duplicate key",
			mutate: func(c *Config) {
				c.Markets = []MarketConfig{{Key: "a"}, {Key: "a"}}
			},
			wantErr: "duplicate market key",
		},
		{
			name: "market ticker without series",
			mutate: func(c *Config) {
				c.Markets = []MarketConfig{{Key: "a", Kalshi: KalshiMarket{MarketTicker: "T"}}}
			},
			wantErr: "series_ticker is required",
		},
		{
			name: "inverted time range",
			mutate: func(c *Config) {
				c.Markets = []MarketConfig{{Key: "a", StartTS: 200, EndTS: 100}}
			},
			wantErr: "end_ts must be after",
		},
		{
			name: "event without slug",
			mutate: func(c *Config) {
				c.Events = []EventConfig{{Key: "e"}}
			},
			wantErr: "slug is required",
		},
		{
			name: "bad theme",
			mutate: func(c *Config) {
				c.Reports.Theme = "neon"
			},
			wantErr: "reports.theme",
		},
		{
			name: "stream without credentials",
			mutate: func(c *Config) {
				c.Stream.Enabled = true
			},
			wantErr: "stream requires",
		},
		{
			name: "database missing user",
			mutate: func(c *Config) {
				c.Database.Postgres.Host = "localhost"
				c.Database.Postgres.Name = "oddsight"
			},
			wantErr: "user is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(writeConfig(t, minimalConfig))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
