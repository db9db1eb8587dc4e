package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the canonical key format for daily data (UTC calendar day).
const DateFormat = "2006-01-02"

// -----------------------------------------------------------------------------
// Daily Series Types
// -----------------------------------------------------------------------------

// DailyBar is one calendar day of a market's price and volume.
// Prices are probabilities on the 0-1 scale (0.52 = 52%).
type DailyBar struct {
	Date         string  `json:"date"` // YYYY-MM-DD, UTC
	Open         float64 `json:"open,omitempty"`
	High         float64 `json:"high,omitempty"`
	Low          float64 `json:"low,omitempty"`
	Price        float64 `json:"price"`        // Closing price
	Volume       float64 `json:"daily_volume"` // Notional traded that day (USD)
	OpenInterest float64 `json:"open_interest,omitempty"`
	Event        string  `json:"event,omitempty"` // Optional annotation ("Election Day")
}

// Day parses the bar's date. Invalid dates return the zero time.
func (b DailyBar) Day() time.Time {
	t, _ := time.Parse(DateFormat, b.Date)
	return t
}

// MarketSeries is the daily history of one market on one platform.
type MarketSeries struct {
	Key         string     `json:"key"`    // Config key (e.g. "presidential")
	Title       string     `json:"title"`  // Display title
	Platform    string     `json:"source"` // "kalshi", "polymarket", "dune"
	Ticker      string     `json:"market_ticker,omitempty"`
	TotalVolume float64    `json:"total_volume"`
	Bars        []DailyBar `json:"daily_data"`
}

// Normalize sorts bars ascending by date and collapses duplicate dates,
// keeping the last occurrence. It also recomputes TotalVolume.
func (s *MarketSeries) Normalize() {
	byDate := make(map[string]DailyBar, len(s.Bars))
	for _, b := range s.Bars {
		byDate[b.Date] = b
	}

	bars := make([]DailyBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	var total float64
	for _, b := range bars {
		total += b.Volume
	}

	s.Bars = bars
	s.TotalVolume = total
}

// DateRange returns the first and last bar dates, or empty strings for an
// empty series.
func (s *MarketSeries) DateRange() (first, last string) {
	if len(s.Bars) == 0 {
		return "", ""
	}
	return s.Bars[0].Date, s.Bars[len(s.Bars)-1].Date
}

// VolumeRow is one day of aggregate on-chain volume from a Dune query.
type VolumeRow struct {
	Date      string  `json:"date"`
	VolumeUSD float64 `json:"volume_usd"`
}

// -----------------------------------------------------------------------------
// Multi-Outcome Events
// -----------------------------------------------------------------------------

// CandidateMarket is one leg of a multi-outcome event (e.g. one mayoral
// candidate's YES market).
type CandidateMarket struct {
	Name        string  `json:"candidate"`
	MarketID    string  `json:"market_id"`
	YesPrice    float64 `json:"price"` // 0-1 probability
	Volume      float64 `json:"volume"`
	Volume1Wk   float64 `json:"volume_1wk"`
	Volume1Mo   float64 `json:"volume_1mo"`
	ClobTokenID string  `json:"token_id,omitempty"`
	Closed      bool    `json:"closed"`
}

// Winner reports whether the leg settled (or is trading) at effective
// certainty.
func (c CandidateMarket) Winner() bool {
	return c.YesPrice >= 0.99
}

// EventMarkets is a multi-outcome event and its candidate legs.
type EventMarkets struct {
	Slug       string            `json:"slug"`
	Title      string            `json:"title"`
	Candidates []CandidateMarket `json:"markets"`
}

// TotalVolume sums volume across all legs.
func (e EventMarkets) TotalVolume() float64 {
	var total float64
	for _, c := range e.Candidates {
		total += c.Volume
	}
	return total
}

// -----------------------------------------------------------------------------
// Fetch Runs
// -----------------------------------------------------------------------------

// FetchRun records one fetch invocation for auditing.
type FetchRun struct {
	ID        uuid.UUID // Run identifier
	Source    string    // "kalshi", "polymarket", "dune"
	StartedAt int64     // µs since epoch
	Duration  int64     // µs
	Markets   int       // Series fetched
	Days      int       // Total bars fetched
	Err       string    // Non-empty when the run failed
}

// NewFetchRun starts a run record for the given source.
func NewFetchRun(source string) FetchRun {
	return FetchRun{
		ID:        uuid.New(),
		Source:    source,
		StartedAt: time.Now().UnixMicro(),
	}
}
