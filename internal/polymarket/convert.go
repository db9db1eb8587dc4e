package polymarket

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oddsight/oddsight/internal/model"
)

// ToEventMarkets converts a gamma event into candidate legs, skipping
// placeholder markets ("Person A", "Other") and sorting by volume
// descending.
func ToEventMarkets(ev *APIEvent) model.EventMarkets {
	out := model.EventMarkets{
		Slug:  ev.Slug,
		Title: ev.Title,
	}

	for _, m := range ev.Markets {
		name := m.GroupItemTitle
		if name == "" {
			name = m.Question
			if runes := []rune(name); len(runes) > 30 {
				name = string(runes[:30])
			}
		}
		if strings.HasPrefix(name, "Person ") || name == "Other" {
			continue
		}

		prices := decodeStringArray(m.OutcomePrices)
		var yes float64
		if len(prices) > 0 {
			yes = parsePrice(prices[0])
		}

		tokens := decodeStringArray(m.ClobTokenIDs)
		var tokenID string
		if len(tokens) > 0 {
			tokenID = tokens[0]
		}

		out.Candidates = append(out.Candidates, model.CandidateMarket{
			Name:        name,
			MarketID:    m.ID,
			YesPrice:    yes,
			Volume:      m.Volume.InexactFloat64(),
			Volume1Wk:   m.Volume1Wk.InexactFloat64(),
			Volume1Mo:   m.Volume1Mo.InexactFloat64(),
			ClobTokenID: tokenID,
			Closed:      m.Closed,
		})
	}

	sort.Slice(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].Volume > out.Candidates[j].Volume
	})

	return out
}

// HistoryToBars buckets CLOB price points into daily bars: the last
// observation of each UTC day becomes that day's close, the extremes its
// high/low. The CLOB history carries no volume.
func HistoryToBars(points []PricePoint) []model.DailyBar {
	type agg struct {
		first, last PricePoint
		high, low   float64
	}

	days := make(map[string]*agg)
	for _, p := range points {
		date := time.Unix(p.T, 0).UTC().Format(model.DateFormat)
		price := p.P.InexactFloat64()

		a, ok := days[date]
		if !ok {
			days[date] = &agg{first: p, last: p, high: price, low: price}
			continue
		}
		if p.T < a.first.T {
			a.first = p
		}
		if p.T >= a.last.T {
			a.last = p
		}
		if price > a.high {
			a.high = price
		}
		if price < a.low {
			a.low = price
		}
	}

	bars := make([]model.DailyBar, 0, len(days))
	for date, a := range days {
		bars = append(bars, model.DailyBar{
			Date:  date,
			Open:  a.first.P.InexactFloat64(),
			High:  a.high,
			Low:   a.low,
			Price: a.last.P.InexactFloat64(),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars
}

// decodeStringArray decodes a JSON array that the gamma API double-encodes
// as a string. Malformed input yields nil.
func decodeStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func parsePrice(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
