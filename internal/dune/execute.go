package dune

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oddsight/oddsight/internal/model"
)

// Execution states reported by the status endpoint.
const (
	StateCompleted = "QUERY_STATE_COMPLETED"
	StateFailed    = "QUERY_STATE_FAILED"
	StateCancelled = "QUERY_STATE_CANCELLED"
)

// ErrTimeout is returned when an execution does not complete within the
// configured poll budget.
var ErrTimeout = errors.New("dune: execution timed out")

type executeRequest struct {
	QuerySQL  string `json:"query_sql"`
	IsPrivate bool   `json:"is_private"`
}

type executeResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type statusResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

// ResultsResponse from GET /execution/{id}/results
type ResultsResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
	Result      struct {
		Rows []ResultRow `json:"rows"`
	} `json:"result"`
}

// ResultRow is one row of the daily volume query.
type ResultRow struct {
	Date      string          `json:"date"`
	VolumeUSD decimal.Decimal `json:"volume_usd"`
}

// ExecuteSQL submits a raw SQL query and returns the execution ID.
func (c *Client) ExecuteSQL(ctx context.Context, sql string) (string, error) {
	var resp executeResponse
	err := c.do(ctx, http.MethodPost, "/query/execute", executeRequest{QuerySQL: sql}, &resp)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	if resp.ExecutionID == "" {
		return "", errors.New("execute query: empty execution id")
	}

	c.logger.Debug("dune query executing", "execution_id", resp.ExecutionID)
	return resp.ExecutionID, nil
}

// WaitForResults polls the execution until it completes, then fetches the
// results. The context cancels the wait; a failed or cancelled execution
// is terminal.
func (c *Client) WaitForResults(ctx context.Context, executionID string) (*ResultsResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var status statusResponse
		if err := c.do(ctx, http.MethodGet, "/execution/"+executionID+"/status", nil, &status); err != nil {
			return nil, fmt.Errorf("execution status: %w", err)
		}

		if attempt%5 == 0 {
			c.logger.Debug("dune execution status",
				"execution_id", executionID,
				"state", status.State,
				"attempt", attempt,
			)
		}

		switch status.State {
		case StateCompleted:
			var results ResultsResponse
			if err := c.do(ctx, http.MethodGet, "/execution/"+executionID+"/results", nil, &results); err != nil {
				return nil, fmt.Errorf("execution results: %w", err)
			}
			return &results, nil
		case StateFailed, StateCancelled:
			return nil, fmt.Errorf("dune execution %s: %s", executionID, status.State)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, c.maxPollAttempts)
}

// DailyVolume executes the given volume SQL and converts the result rows
// into daily volume records. Timestamps are truncated to the calendar day.
func (c *Client) DailyVolume(ctx context.Context, sql string) ([]model.VolumeRow, error) {
	executionID, err := c.ExecuteSQL(ctx, sql)
	if err != nil {
		return nil, err
	}

	results, err := c.WaitForResults(ctx, executionID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.VolumeRow, 0, len(results.Result.Rows))
	for _, r := range results.Result.Rows {
		date := r.Date
		if len(date) > 10 {
			date = date[:10]
		}
		rows = append(rows, model.VolumeRow{
			Date:      date,
			VolumeUSD: r.VolumeUSD.InexactFloat64(),
		})
	}

	return rows, nil
}
