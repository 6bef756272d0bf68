package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const wttrPayload = `{
  "current_condition": [
    {
      "temp_C": "12",
      "weatherDesc": [{"value": "Partly cloudy"}]
    }
  ]
}`

func clockAtHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 31, hour, 0, 0, 0, time.Local)
	}
}

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(wttrPayload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, clockAtHour(12))
	report, err := c.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if report.TempC != "12" || report.Description != "Partly cloudy" {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.TimeOfDay != "day" {
		t.Errorf("time_of_day = %q, want day", report.TimeOfDay)
	}
}

func TestClient_nightHours(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(wttrPayload))
	}))
	defer srv.Close()

	for _, hour := range []int{0, 5, 21, 23} {
		c := NewClient(srv.URL, time.Second, clockAtHour(hour))
		report, err := c.Current(context.Background())
		if err != nil {
			t.Fatalf("Current at hour %d: %v", hour, err)
		}
		if report.TimeOfDay != "night" {
			t.Errorf("hour %d: time_of_day = %q, want night", hour, report.TimeOfDay)
		}
	}
}

func TestClient_upstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Current(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestClient_malformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current_condition": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Current(context.Background()); err == nil {
		t.Fatal("expected error on empty conditions")
	}
}

func TestClient_unreachableUpstream(t *testing.T) {
	// A closed server makes the transport fail immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Current(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}
