package dune

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDailyVolume(t *testing.T) {
	var statusCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Dune-API-Key"); got != "test-key" {
			t.Errorf("X-Dune-API-Key = %q", got)
		}

		switch {
		case r.URL.Path == "/query/execute":
			if r.Method != http.MethodPost {
				t.Errorf("method = %q, want POST", r.Method)
			}
			w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"}`))

		case r.URL.Path == "/execution/exec-1/status":
			// Complete on the second status check.
			if statusCalls.Add(1) < 2 {
				w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_EXECUTING"}`))
			} else {
				w.Write([]byte(`{"execution_id": "exec-1", "state": "QUERY_STATE_COMPLETED"}`))
			}

		case r.URL.Path == "/execution/exec-1/results":
			w.Write([]byte(`{
			  "execution_id": "exec-1",
			  "state": "QUERY_STATE_COMPLETED",
			  "result": {"rows": [
			    {"date": "2024-09-01 00:00:00.000 UTC", "volume_usd": "1500000.25"},
			    {"date": "2024-09-02 00:00:00.000 UTC", "volume_usd": 2750000}
			  ]}
			}`))

		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", WithPolling(time.Millisecond, 10))

	rows, err := c.DailyVolume(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("DailyVolume: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Date != "2024-09-01" {
		t.Errorf("rows[0].Date = %q, want truncated 2024-09-01", rows[0].Date)
	}
	if rows[0].VolumeUSD != 1500000.25 {
		t.Errorf("rows[0].VolumeUSD = %v", rows[0].VolumeUSD)
	}
	if rows[1].VolumeUSD != 2750000 {
		t.Errorf("rows[1].VolumeUSD = %v", rows[1].VolumeUSD)
	}
}

func TestWithPollingIgnoresNonPositive(t *testing.T) {
	c := NewClient("http://example.invalid", "k", WithPolling(0, 0))
	if c.pollInterval <= 0 {
		t.Errorf("pollInterval = %v, want constructor default", c.pollInterval)
	}
	if c.maxPollAttempts <= 0 {
		t.Errorf("maxPollAttempts = %d, want constructor default", c.maxPollAttempts)
	}

	c = NewClient("http://example.invalid", "k", WithPolling(time.Millisecond, 5))
	if c.pollInterval != time.Millisecond || c.maxPollAttempts != 5 {
		t.Errorf("polling = %v/%d, want 1ms/5", c.pollInterval, c.maxPollAttempts)
	}
}

func TestWaitForResultsFailedState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-2", "state": "QUERY_STATE_FAILED"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithPolling(time.Millisecond, 10))

	_, err := c.WaitForResults(context.Background(), "exec-2")
	if err == nil || !strings.Contains(err.Error(), "QUERY_STATE_FAILED") {
		t.Errorf("err = %v, want failed state", err)
	}
}

func TestWaitForResultsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-3", "state": "QUERY_STATE_EXECUTING"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithPolling(time.Millisecond, 3))

	_, err := c.WaitForResults(context.Background(), "exec-3")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestWaitForResultsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"execution_id": "exec-4", "state": "QUERY_STATE_EXECUTING"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithPolling(time.Hour, 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitForResults(ctx, "exec-4")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestExecuteSQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid query"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")

	if _, err := c.ExecuteSQL(context.Background(), "BOGUS"); err == nil {
		t.Fatal("expected error for 400")
	}
}
