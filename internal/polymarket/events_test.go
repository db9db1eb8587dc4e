package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("path = %q, want /events", r.URL.Path)
		}
		if got := r.URL.Query().Get("slug"); got != "nyc-mayor" {
			t.Errorf("slug = %q", got)
		}
		w.Write([]byte(`[{"id": "901", "slug": "nyc-mayor", "title": "NYC Mayor", "markets": []}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)

	ev, err := c.GetEvent(context.Background(), "nyc-mayor")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if ev.Title != "NYC Mayor" {
		t.Errorf("Title = %q", ev.Title)
	}
}

func TestGetEventNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)

	_, err := c.GetEvent(context.Background(), "absent")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetPricesHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prices-history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("market") != "token-1" {
			t.Errorf("market = %q", q.Get("market"))
		}
		if q.Get("interval") != "max" {
			t.Errorf("interval = %q, want max with zero range", q.Get("interval"))
		}
		w.Write([]byte(`{"history": [{"t": 1730678400, "p": "0.55"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)

	points, err := c.GetPricesHistory(context.Background(), "token-1", 0, 0)
	if err != nil {
		t.Fatalf("GetPricesHistory: %v", err)
	}
	if len(points) != 1 || points[0].T != 1730678400 {
		t.Errorf("points = %+v", points)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, WithRetries(2, time.Millisecond))

	var events []APIEvent
	if err := c.get(context.Background(), srv.URL, "/events", nil, &events); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
