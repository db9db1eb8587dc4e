// Package pipeline orchestrates the fetch and report stages shared by
// the fetcher, reporter, and watcher binaries: pull market data from the
// upstream APIs into the cache (and optional Postgres store), then
// compute stats and render the chart set.
package pipeline
