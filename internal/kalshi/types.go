package kalshi

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// CandlesticksResponse from GET /series/{s}/markets/{m}/candlesticks
type CandlesticksResponse struct {
	Candlesticks []Candlestick `json:"candlesticks"`
}

// Candlestick is one aggregation period of a market's trading activity.
// Prices are in cents (0-100).
type Candlestick struct {
	EndPeriodTS  int64       `json:"end_period_ts"` // Unix seconds, period close
	Price        PriceRange  `json:"price"`
	YesBid       PriceRange  `json:"yes_bid"`
	YesAsk       PriceRange  `json:"yes_ask"`
	Volume       int64       `json:"volume"`
	OpenInterest int64       `json:"open_interest"`
}

// PriceRange holds OHLC values in cents.
type PriceRange struct {
	Open  int `json:"open"`
	High  int `json:"high"`
	Low   int `json:"low"`
	Close int `json:"close"`
	Mean  int `json:"mean,omitempty"`
}

// MarketResponse from GET /markets/{ticker}
type MarketResponse struct {
	Market Market `json:"market"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

// Market represents a market from the Kalshi API.
type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
	Result      string `json:"result"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	LastPrice int `json:"last_price"`

	// Volume
	Volume       int64 `json:"volume"`
	Volume24h    int64 `json:"volume_24h"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Status       string
}

// CandlesticksOptions configures a GetCandlesticks request.
type CandlesticksOptions struct {
	StartTS        int64 // Unix seconds, inclusive
	EndTS          int64 // Unix seconds, inclusive
	PeriodInterval int   // Minutes per candle; 1440 = daily
}
