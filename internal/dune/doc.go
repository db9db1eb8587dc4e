// Package dune provides a client for the Dune Analytics API: raw SQL
// execution, result polling, and the Polymarket daily on-chain volume
// query used by the reports.
package dune
