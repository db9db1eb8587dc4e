// Package cache stores fetched market data as JSON files under a
// configured directory, so reports can be regenerated without hitting
// the upstream APIs.
package cache
