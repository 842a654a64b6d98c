package http

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RequestsTotal.WithLabelValues("GET", "ok").Inc()
	m.RequestDuration.WithLabelValues("GET").Observe(0.01)
	m.ActiveSessions.Set(3)
	m.StoreSelections.WithLabelValues("ok").Inc()
	m.DirectoryRefreshes.WithLabelValues("throttled").Inc()
	m.GraphQLQueries.WithLabelValues("transport_error").Inc()
	m.EventSubscribers.Inc()

	want := []string{
		"woofront_requests_total",
		"woofront_request_duration_seconds",
		"woofront_active_sessions",
		"woofront_store_selections_total",
		"woofront_directory_forced_refreshes_total",
		"woofront_graphql_queries_total",
		"woofront_event_subscribers",
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	got := make(map[string]bool, len(families))
	for _, mf := range families {
		got[mf.GetName()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("metric %s not registered", name)
		}
	}

	if v := testutil.ToFloat64(m.ActiveSessions); v != 3 {
		t.Errorf("ActiveSessions = %v, want 3", v)
	}
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering metrics twice did not panic")
		}
	}()
	NewMetrics(reg)
}
