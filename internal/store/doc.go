// Package store provides optional Postgres persistence for daily bars
// and fetch-run audit records, as an alternative read path to the JSON
// cache.
package store
