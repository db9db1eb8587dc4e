package config

import "time"

// Config is the root configuration shared by all binaries.
type Config struct {
	Cache      CacheConfig      `yaml:"cache"`
	Reports    ReportsConfig    `yaml:"reports"`
	Kalshi     KalshiConfig     `yaml:"kalshi"`
	Polymarket PolymarketConfig `yaml:"polymarket"`
	Dune       DuneConfig       `yaml:"dune"`
	Database   DatabaseConfig   `yaml:"database"`
	Stream     StreamConfig     `yaml:"stream"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Health     HealthConfig     `yaml:"health"`
	Markets    []MarketConfig   `yaml:"markets"`
	Events     []EventConfig    `yaml:"events"`
}

// CacheConfig locates the local JSON cache.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// ReportsConfig controls report output.
type ReportsConfig struct {
	Dir   string `yaml:"dir"`
	Theme string `yaml:"theme"` // "dark" or "light"
}

// KalshiConfig holds Kalshi API settings.
type KalshiConfig struct {
	RestURL        string        `yaml:"rest_url"`
	WSURL          string        `yaml:"ws_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // RSA private key PEM, required for the stream
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// PolymarketConfig holds Polymarket gamma/CLOB API settings.
type PolymarketConfig struct {
	GammaURL   string        `yaml:"gamma_url"`
	ClobURL    string        `yaml:"clob_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DuneConfig holds Dune Analytics API settings.
type DuneConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"` // Usually ${DUNE_API_KEY}
	Timeout         time.Duration `yaml:"timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts"`
	VolumeQuery     string        `yaml:"volume_query"` // Override for the daily volume SQL
}

// DatabaseConfig holds the optional Postgres store. Persistence is enabled
// when Postgres.Host is set.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether the optional store is configured.
func (d DatabaseConfig) Enabled() bool { return d.Postgres.Host != "" }

// StreamConfig holds live Kalshi ticker stream settings.
type StreamConfig struct {
	Enabled            bool          `yaml:"enabled"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// HealthConfig exposes the watcher health endpoint.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// SchedulerConfig holds the watcher refresh schedule.
type SchedulerConfig struct {
	RefreshCron string `yaml:"refresh_cron"` // Standard 5-field cron spec
	RunOnStart  bool   `yaml:"run_on_start"`
}

// MarketConfig describes one tracked market across platforms.
type MarketConfig struct {
	Key        string           `yaml:"key"`   // Cache/report key (e.g. "presidential")
	Title      string           `yaml:"title"` // Display title
	Kalshi     KalshiMarket     `yaml:"kalshi"`
	Polymarket PolymarketMarket `yaml:"polymarket"`
	StartTS    int64            `yaml:"start_ts"` // Unix seconds
	EndTS      int64            `yaml:"end_ts"`   // Unix seconds
	Milestones []Milestone      `yaml:"milestones"`
}

// KalshiMarket identifies a Kalshi market within a series.
type KalshiMarket struct {
	SeriesTicker string `yaml:"series_ticker"`
	MarketTicker string `yaml:"market_ticker"`
}

// PolymarketMarket identifies a Polymarket outcome token.
type PolymarketMarket struct {
	TokenID string `yaml:"token_id"`
}

// Milestone annotates a date on price charts ("Election Day").
type Milestone struct {
	Date  string `yaml:"date"` // YYYY-MM-DD
	Label string `yaml:"label"`
}

// EventConfig describes a multi-outcome Polymarket event (e.g. a mayoral
// race with one market per candidate).
type EventConfig struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Slug  string `yaml:"slug"`
}
