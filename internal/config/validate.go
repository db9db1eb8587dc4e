package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if len(c.Markets) == 0 && len(c.Events) == 0 {
		return errors.New("at least one market or event is required")
	}

	seen := make(map[string]bool)
	for i, m := range c.Markets {
		if m.Key == "" {
			return fmt.Errorf("markets[%d].key is required", i)
		}
		if seen[m.Key] {
			return fmt.Errorf("duplicate market key %q", m.Key)
		}
		seen[m.Key] = true

		if m.Kalshi.MarketTicker != "" && m.Kalshi.SeriesTicker == "" {
			return fmt.Errorf("markets[%d]: kalshi.series_ticker is required with market_ticker", i)
		}
		if m.StartTS != 0 && m.EndTS != 0 && m.EndTS <= m.StartTS {
			return fmt.Errorf("markets[%d]: end_ts must be after start_ts", i)
		}
	}

	for i, e := range c.Events {
		if e.Key == "" {
			return fmt.Errorf("events[%d].key is required", i)
		}
		if e.Slug == "" {
			return fmt.Errorf("events[%d].slug is required", i)
		}
		if seen[e.Key] {
			return fmt.Errorf("duplicate event key %q", e.Key)
		}
		seen[e.Key] = true
	}

	if c.Reports.Theme != "dark" && c.Reports.Theme != "light" {
		return fmt.Errorf("reports.theme must be dark or light, got %q", c.Reports.Theme)
	}

	if c.Dune.MaxPollAttempts < 1 {
		return errors.New("dune.max_poll_attempts must be >= 1")
	}

	if c.Database.Enabled() {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	}

	if c.Stream.Enabled {
		if c.Kalshi.APIKey == "" || c.Kalshi.PrivateKeyPath == "" {
			return errors.New("stream requires kalshi.api_key and kalshi.private_key_path")
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
