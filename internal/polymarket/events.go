package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetEvent fetches an event with its markets by slug.
func (c *Client) GetEvent(ctx context.Context, slug string) (*APIEvent, error) {
	query := url.Values{}
	query.Set("slug", slug)

	// The gamma events endpoint always returns an array, even for a slug.
	var events []APIEvent
	if err := c.get(ctx, c.gammaURL, "/events", query, &events); err != nil {
		return nil, fmt.Errorf("get event %s: %w", slug, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %s: not found", slug)
	}

	return &events[0], nil
}

// GetPricesHistory fetches price history for an outcome token from the CLOB.
// Pass zero start/end to request the full available range.
func (c *Client) GetPricesHistory(ctx context.Context, tokenID string, startTS, endTS int64) ([]PricePoint, error) {
	query := url.Values{}
	query.Set("market", tokenID)
	if startTS > 0 {
		query.Set("startTs", strconv.FormatInt(startTS, 10))
	}
	if endTS > 0 {
		query.Set("endTs", strconv.FormatInt(endTS, 10))
	}
	if startTS == 0 && endTS == 0 {
		query.Set("interval", "max")
	}

	var resp PricesHistoryResponse
	if err := c.get(ctx, c.clobURL, "/prices-history", query, &resp); err != nil {
		return nil, fmt.Errorf("get prices history %s: %w", tokenID, err)
	}

	return resp.History, nil
}
