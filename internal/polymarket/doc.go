// Package polymarket provides clients for the Polymarket gamma API (event
// and market metadata) and the CLOB API (outcome token price history).
package polymarket
