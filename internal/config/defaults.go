package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultKalshiRestURL = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultKalshiWSURL   = "wss://api.elections.kalshi.com"
	DefaultGammaURL      = "https://gamma-api.polymarket.com"
	DefaultClobURL       = "https://clob.polymarket.com"
	DefaultDuneBaseURL   = "https://api.dune.com/api/v1"

	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultPollInterval     = 2 * time.Second
	DefaultMaxPollAttempts  = 60
	DefaultCacheDir         = ".cache"
	DefaultReportsDir       = "reports"
	DefaultReportTheme      = "dark"
	DefaultRefreshCron      = "0 6 * * *" // Daily, 06:00
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultPingInterval     = 15 * time.Second
	DefaultReadTimeout      = 30 * time.Second
	DefaultReconnectBase    = 1 * time.Second
	DefaultReconnectMax     = 60 * time.Second
)

// DefaultVolumeQuery aggregates Polymarket exchange-contract transfers on
// Polygon into daily USD volume. Used when dune.volume_query is unset.
const DefaultVolumeQuery = `
SELECT
    date_trunc('day', block_time) as date,
    SUM(
        CASE
            WHEN tx_to = 0x4bfb41d5b3570defd03c39a9a4d8de6bd8b8982e THEN value / 1e6
            WHEN tx_to = 0xC5d563A36AE78145C45a50134d48A1215220f80a THEN value / 1e6
            ELSE 0
        END
    ) as volume_usd
FROM polygon.transactions
WHERE block_time >= date '2024-09-01'
    AND block_time < date '2025-03-01'
    AND (
        tx_to = 0x4bfb41d5b3570defd03c39a9a4d8de6bd8b8982e  -- CTF Exchange
        OR tx_to = 0xC5d563A36AE78145C45a50134d48A1215220f80a  -- NegRisk Exchange
    )
    AND success = true
GROUP BY 1
ORDER BY 1
`

func (c *Config) applyDefaults() {
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = DefaultReportsDir
	}
	if c.Reports.Theme == "" {
		c.Reports.Theme = DefaultReportTheme
	}

	// Kalshi defaults
	if c.Kalshi.RestURL == "" {
		c.Kalshi.RestURL = DefaultKalshiRestURL
	}
	if c.Kalshi.WSURL == "" {
		c.Kalshi.WSURL = DefaultKalshiWSURL
	}
	if c.Kalshi.Timeout == 0 {
		c.Kalshi.Timeout = DefaultAPITimeout
	}
	if c.Kalshi.MaxRetries == 0 {
		c.Kalshi.MaxRetries = DefaultMaxRetries
	}

	// Polymarket defaults
	if c.Polymarket.GammaURL == "" {
		c.Polymarket.GammaURL = DefaultGammaURL
	}
	if c.Polymarket.ClobURL == "" {
		c.Polymarket.ClobURL = DefaultClobURL
	}
	if c.Polymarket.Timeout == 0 {
		c.Polymarket.Timeout = DefaultAPITimeout
	}
	if c.Polymarket.MaxRetries == 0 {
		c.Polymarket.MaxRetries = DefaultMaxRetries
	}

	// Dune defaults
	if c.Dune.BaseURL == "" {
		c.Dune.BaseURL = DefaultDuneBaseURL
	}
	if c.Dune.Timeout == 0 {
		c.Dune.Timeout = DefaultAPITimeout
	}
	if c.Dune.PollInterval == 0 {
		c.Dune.PollInterval = DefaultPollInterval
	}
	if c.Dune.MaxPollAttempts == 0 {
		c.Dune.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if c.Dune.VolumeQuery == "" {
		c.Dune.VolumeQuery = DefaultVolumeQuery
	}

	// Database defaults (only meaningful when enabled)
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = DefaultDBPort
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = DefaultDBSSLMode
	}
	if c.Database.Postgres.MaxConns == 0 {
		c.Database.Postgres.MaxConns = DefaultMaxConns
	}
	if c.Database.Postgres.MinConns == 0 {
		c.Database.Postgres.MinConns = DefaultMinConns
	}

	// Stream defaults
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.ReadTimeout == 0 {
		c.Stream.ReadTimeout = DefaultReadTimeout
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBase
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMax
	}

	// Scheduler defaults
	if c.Scheduler.RefreshCron == "" {
		c.Scheduler.RefreshCron = DefaultRefreshCron
	}
}
