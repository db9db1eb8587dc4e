package polymarket

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestToEventMarkets(t *testing.T) {
	raw := `{
	  "id": "901",
	  "slug": "new-york-city-mayoral-election",
	  "title": "New York City Mayoral Election",
	  "markets": [
	    {
	      "id": "1",
	      "groupItemTitle": "Mamdani",
	      "volume": "25000000.5",
	      "volume1wk": "1200000",
	      "outcomePrices": "[\"0.995\", \"0.005\"]",
	      "clobTokenIds": "[\"111\", \"112\"]",
	      "closed": true
	    },
	    {
	      "id": "2",
	      "groupItemTitle": "Person B",
	      "volume": "100",
	      "outcomePrices": "[\"0.001\", \"0.999\"]"
	    },
	    {
	      "id": "3",
	      "groupItemTitle": "Other",
	      "volume": "50"
	    },
	    {
	      "id": "4",
	      "groupItemTitle": "Cuomo",
	      "volume": 31000000,
	      "outcomePrices": "[\"0.003\", \"0.997\"]",
	      "clobTokenIds": "[\"221\"]"
	    }
	  ]
	}`

	var ev APIEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	got := ToEventMarkets(&ev)

	if got.Slug != "new-york-city-mayoral-election" {
		t.Errorf("Slug = %q", got.Slug)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("len(Candidates) = %d, want 2 (placeholders skipped)", len(got.Candidates))
	}

	// Sorted by volume descending.
	if got.Candidates[0].Name != "Cuomo" || got.Candidates[1].Name != "Mamdani" {
		t.Errorf("order = %q, %q", got.Candidates[0].Name, got.Candidates[1].Name)
	}

	m := got.Candidates[1]
	if m.YesPrice != 0.995 {
		t.Errorf("YesPrice = %v, want 0.995", m.YesPrice)
	}
	if !m.Winner() {
		t.Error("Mamdani at 0.995 should be the winner")
	}
	if m.ClobTokenID != "111" {
		t.Errorf("ClobTokenID = %q, want 111", m.ClobTokenID)
	}
	if m.Volume != 25000000.5 {
		t.Errorf("Volume = %v", m.Volume)
	}
}

func TestToEventMarketsTruncatesQuestionByRunes(t *testing.T) {
	ev := &APIEvent{
		Slug: "sao-paulo-mayor",
		Markets: []APIMarket{{
			ID:       "9",
			Question: strings.Repeat("é", 40),
			Volume:   decimal.NewFromInt(10),
		}},
	}

	got := ToEventMarkets(ev)
	if len(got.Candidates) != 1 {
		t.Fatalf("len(Candidates) = %d, want 1", len(got.Candidates))
	}

	name := got.Candidates[0].Name
	if !utf8.ValidString(name) {
		t.Errorf("truncated name %q is not valid UTF-8", name)
	}
	if name != strings.Repeat("é", 30) {
		t.Errorf("name = %q, want 30 runes", name)
	}
}

func TestHistoryToBars(t *testing.T) {
	raw := `{"history": [
	  {"t": 1730678400, "p": "0.55"},
	  {"t": 1730700000, "p": "0.61"},
	  {"t": 1730703600, "p": "0.58"},
	  {"t": 1730764800, "p": 0.62}
	]}`

	var resp PricesHistoryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	bars := HistoryToBars(resp.History)

	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}

	first := bars[0] // 2024-11-04
	if first.Date != "2024-11-04" {
		t.Errorf("Date = %q, want 2024-11-04", first.Date)
	}
	if first.Open != 0.55 {
		t.Errorf("Open = %v, want first observation 0.55", first.Open)
	}
	if first.Price != 0.58 {
		t.Errorf("Price = %v, want last observation 0.58", first.Price)
	}
	if first.High != 0.61 || first.Low != 0.55 {
		t.Errorf("High/Low = %v/%v, want 0.61/0.55", first.High, first.Low)
	}

	if bars[1].Date != "2024-11-05" || bars[1].Price != 0.62 {
		t.Errorf("bars[1] = %+v", bars[1])
	}
}

func TestDecodeStringArray(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{`["0.65", "0.35"]`, 2},
		{``, 0},
		{`not json`, 0},
		{`[]`, 0},
	}

	for _, tt := range tests {
		if got := decodeStringArray(tt.input); len(got) != tt.want {
			t.Errorf("decodeStringArray(%q) len = %d, want %d", tt.input, len(got), tt.want)
		}
	}
}
