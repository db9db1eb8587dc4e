package stats

import (
	"sort"

	"github.com/oddsight/oddsight/internal/model"
)

// Aligned holds two daily series restricted to their shared dates,
// in ascending date order.
type Aligned struct {
	Dates []string
	A     []model.DailyBar
	B     []model.DailyBar
}

// Len returns the number of shared dates.
func (al Aligned) Len() int { return len(al.Dates) }

// Prices returns the closing prices of both sides, scaled by the given
// factor (pass 100 for percentage points, 1 for raw probabilities).
func (al Aligned) Prices(scale float64) (a, b []float64) {
	a = make([]float64, len(al.A))
	b = make([]float64, len(al.B))
	for i := range al.Dates {
		a[i] = al.A[i].Price * scale
		b[i] = al.B[i].Price * scale
	}
	return a, b
}

// Volumes returns the daily volumes of both sides divided by the given
// divisor (pass 1e6 for millions).
func (al Aligned) Volumes(divisor float64) (a, b []float64) {
	a = make([]float64, len(al.A))
	b = make([]float64, len(al.B))
	for i := range al.Dates {
		a[i] = al.A[i].Volume / divisor
		b[i] = al.B[i].Volume / divisor
	}
	return a, b
}

// Align intersects two daily series on date. The result is symmetric:
// swapping the arguments swaps A and B but yields the same dates.
func Align(a, b []model.DailyBar) Aligned {
	byDateA := make(map[string]model.DailyBar, len(a))
	for _, bar := range a {
		byDateA[bar.Date] = bar
	}
	byDateB := make(map[string]model.DailyBar, len(b))
	for _, bar := range b {
		byDateB[bar.Date] = bar
	}

	dates := make([]string, 0)
	for d := range byDateA {
		if _, ok := byDateB[d]; ok {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	out := Aligned{
		Dates: dates,
		A:     make([]model.DailyBar, len(dates)),
		B:     make([]model.DailyBar, len(dates)),
	}
	for i, d := range dates {
		out.A[i] = byDateA[d]
		out.B[i] = byDateB[d]
	}
	return out
}

// Bars extracts prices and volumes from a single series.
func Bars(bars []model.DailyBar) (dates []string, prices, volumes []float64) {
	dates = make([]string, len(bars))
	prices = make([]float64, len(bars))
	volumes = make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		prices[i] = b.Price
		volumes[i] = b.Volume
	}
	return dates, prices, volumes
}
