package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PeriodDaily is the period_interval for daily candles, in minutes.
const PeriodDaily = 1440

// GetCandlesticks fetches candlestick history for a market within a series.
func (c *Client) GetCandlesticks(ctx context.Context, seriesTicker, marketTicker string, opts CandlesticksOptions) ([]Candlestick, error) {
	if opts.PeriodInterval == 0 {
		opts.PeriodInterval = PeriodDaily
	}

	query := url.Values{}
	query.Set("start_ts", strconv.FormatInt(opts.StartTS, 10))
	query.Set("end_ts", strconv.FormatInt(opts.EndTS, 10))
	query.Set("period_interval", strconv.Itoa(opts.PeriodInterval))

	path := "/series/" + seriesTicker + "/markets/" + marketTicker + "/candlesticks"

	var resp CandlesticksResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get candlesticks %s: %w", marketTicker, err)
	}

	return resp.Candlesticks, nil
}
