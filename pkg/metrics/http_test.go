package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/api/public/verify", "200", 30*time.Millisecond)
	m.ObserveRequest("GET", "/api/public/verify", "200", 45*time.Millisecond)
	m.ObserveRequest("GET", "", "404", time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/public/verify", "200")); got != 2 {
		t.Fatalf("expected 2 observed requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unknown", "404")); got != 1 {
		t.Fatalf("expected empty route to normalize to unknown, got %v", got)
	}
}

func TestInFlightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()

	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Fatalf("expected 1 in flight, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", "200", time.Second)
	m.IncInFlight()
	m.DecInFlight()

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/", "200", time.Second)
}
