package model

import "testing"

func TestNormalizeSortsAndDeduplicates(t *testing.T) {
	s := MarketSeries{
		Bars: []DailyBar{
			{Date: "2024-11-05", Price: 0.62, Volume: 300},
			{Date: "2024-11-03", Price: 0.55, Volume: 100},
			{Date: "2024-11-04", Price: 0.58, Volume: 200},
			{Date: "2024-11-03", Price: 0.56, Volume: 150}, // duplicate, last wins
		},
	}

	s.Normalize()

	if len(s.Bars) != 3 {
		t.Fatalf("len(Bars) = %d, want 3", len(s.Bars))
	}

	wantDates := []string{"2024-11-03", "2024-11-04", "2024-11-05"}
	for i, want := range wantDates {
		if s.Bars[i].Date != want {
			t.Errorf("Bars[%d].Date = %q, want %q", i, s.Bars[i].Date, want)
		}
	}

	if s.Bars[0].Price != 0.56 {
		t.Errorf("duplicate date Price = %v, want last-wins 0.56", s.Bars[0].Price)
	}
	if s.TotalVolume != 650 {
		t.Errorf("TotalVolume = %v, want 650", s.TotalVolume)
	}
}

func TestDateRange(t *testing.T) {
	var empty MarketSeries
	if first, last := empty.DateRange(); first != "" || last != "" {
		t.Errorf("empty DateRange() = (%q, %q), want empty", first, last)
	}

	s := MarketSeries{Bars: []DailyBar{
		{Date: "2024-10-01"},
		{Date: "2024-11-05"},
	}}
	first, last := s.DateRange()
	if first != "2024-10-01" || last != "2024-11-05" {
		t.Errorf("DateRange() = (%q, %q)", first, last)
	}
}

func TestCandidateWinner(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{1.00, true},
		{0.99, true},
		{0.985, false},
		{0.52, false},
		{0, false},
	}

	for _, tt := range tests {
		c := CandidateMarket{YesPrice: tt.price}
		if got := c.Winner(); got != tt.want {
			t.Errorf("Winner() with price %v = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestEventTotalVolume(t *testing.T) {
	e := EventMarkets{Candidates: []CandidateMarket{
		{Name: "A", Volume: 1_000_000},
		{Name: "B", Volume: 250_000},
		{Name: "C", Volume: 0},
	}}
	if got := e.TotalVolume(); got != 1_250_000 {
		t.Errorf("TotalVolume() = %v, want 1250000", got)
	}
}

func TestNewFetchRun(t *testing.T) {
	r := NewFetchRun("kalshi")
	if r.Source != "kalshi" {
		t.Errorf("Source = %q, want kalshi", r.Source)
	}
	if r.StartedAt == 0 {
		t.Error("StartedAt = 0, want non-zero")
	}
	if r.ID == (NewFetchRun("x").ID) {
		t.Error("run IDs should be unique")
	}
}
