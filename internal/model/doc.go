// Package model defines the core domain types shared across fetchers,
// storage, and report generation: daily price/volume bars, per-platform
// market series, multi-outcome event legs, and fetch-run audit records.
package model
