package stream

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrTimeout      = errors.New("operation timeout")
)

// Command is a WebSocket command sent to the server.
type Command struct {
	ID     int64           `json:"id"`
	Cmd    string          `json:"cmd"`
	Params SubscribeParams `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// Response is a command response from the server.
type Response struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"` // "subscribed", "error", "ok"
	Msg  json.RawMessage `json:"msg"`
}

// ErrorMsg is the message content for an "error" response.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DataMessage is a data message from the server.
type DataMessage struct {
	Type string          `json:"type"` // "ticker"
	SID  int64           `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

// tickerMsg is the payload of a ticker data message. Prices are cents.
type tickerMsg struct {
	MarketTicker string `json:"market_ticker"`
	Price        int    `json:"price"`
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
	Ts           int64  `json:"ts"`
}

// TickerUpdate is one live price update, with prices converted to the
// 0-1 probability scale.
type TickerUpdate struct {
	MarketTicker string
	Price        float64
	YesBid       float64
	YesAsk       float64
	Volume       int64
	OpenInterest int64
	Ts           int64
	ReceivedAt   time.Time
}

// Handler consumes ticker updates.
type Handler interface {
	HandleTicker(update TickerUpdate)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(update TickerUpdate)

// HandleTicker calls f.
func (f HandlerFunc) HandleTicker(update TickerUpdate) { f(update) }
