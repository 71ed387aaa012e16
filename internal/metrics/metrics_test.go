package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.HTTPRequestsTotal.WithLabelValues("GET", "GET /health", "200").Inc()
	m.SessionsPurgedTotal.Add(3)

	if got := testutil.ToFloat64(m.SessionsPurgedTotal); got != 3 {
		t.Errorf("Expected 3 purged sessions, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "criteria_settings_http_requests_total") {
		t.Error("Expected request counter in exposition output")
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when registering twice")
		}
	}()
	New(registry)
}
