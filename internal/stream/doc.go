// Package stream maintains a live Kalshi WebSocket subscription to the
// ticker channel for the configured markets and hands updates to a
// handler, reconnecting with backoff when the connection drops.
package stream
