package polymarket

import "github.com/shopspring/decimal"

// APIEvent is an event from the gamma API. Events group one market per
// outcome (e.g. one market per mayoral candidate).
type APIEvent struct {
	ID      string      `json:"id"`
	Slug    string      `json:"slug"`
	Title   string      `json:"title"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket is a market from the gamma API. Numeric fields arrive as JSON
// strings or numbers depending on the endpoint; decimal.Decimal accepts both.
type APIMarket struct {
	ID             string          `json:"id"`
	Question       string          `json:"question"`
	GroupItemTitle string          `json:"groupItemTitle"`
	Volume         decimal.Decimal `json:"volume"`
	Volume1Wk      decimal.Decimal `json:"volume1wk"`
	Volume1Mo      decimal.Decimal `json:"volume1mo"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Closed         bool            `json:"closed"`

	// JSON-encoded arrays inside strings, e.g. "[\"0.65\", \"0.35\"]".
	OutcomePrices string `json:"outcomePrices"`
	ClobTokenIDs  string `json:"clobTokenIds"`
}

// PricesHistoryResponse from GET {clob}/prices-history
type PricesHistoryResponse struct {
	History []PricePoint `json:"history"`
}

// PricePoint is one observation of an outcome token's price.
type PricePoint struct {
	T int64           `json:"t"` // Unix seconds
	P decimal.Decimal `json:"p"` // Price, 0-1
}
