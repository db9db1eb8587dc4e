// Package kalshi provides a REST client for the Kalshi trade API.
//
// The client fetches daily candlesticks for market history, market and
// exchange metadata, and signs requests with RSA-PSS when credentials are
// configured. Candlestick endpoints work without authentication.
package kalshi
