package kalshi

import (
	"sort"
	"time"

	"github.com/oddsight/oddsight/internal/model"
)

// CentsToProb converts a cent price (0-100) to a 0-1 probability.
func CentsToProb(cents int) float64 {
	return float64(cents) / 100.0
}

// DateFromTS converts a unix-seconds timestamp to a UTC calendar date key.
func DateFromTS(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(model.DateFormat)
}

// CandlesToBars converts candlesticks into daily bars sorted by date.
// Candles sharing a date (sub-daily periods) collapse to the last one.
func CandlesToBars(candles []Candlestick) []model.DailyBar {
	bars := make([]model.DailyBar, len(candles))
	for i, c := range candles {
		bars[i] = model.DailyBar{
			Date:         DateFromTS(c.EndPeriodTS),
			Open:         CentsToProb(c.Price.Open),
			High:         CentsToProb(c.Price.High),
			Low:          CentsToProb(c.Price.Low),
			Price:        CentsToProb(c.Price.Close),
			Volume:       float64(c.Volume),
			OpenInterest: float64(c.OpenInterest),
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	// Collapse duplicate dates, last wins.
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && out[len(out)-1].Date == b.Date {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
