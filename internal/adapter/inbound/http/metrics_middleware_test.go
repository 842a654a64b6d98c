package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func durationSamples(t *testing.T, reg *prometheus.Registry, method string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "woofront_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "method" && lp.GetValue() == method {
					return m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		wantLabel   string
		wantSamples uint64
	}{
		{"page ok", http.MethodGet, "/store/alpha/products", http.StatusOK, "ok", 1},
		{"redirect ok", http.MethodGet, "/store/alpha", http.StatusFound, "ok", 1},
		{"api error", http.MethodPost, "/api/session/select", http.StatusNotFound, "error", 1},
		{"upstream error", http.MethodPost, "/graphql", http.StatusBadGateway, "error", 1},
		{"metrics skipped", http.MethodGet, "/metrics", http.StatusOK, "", 0},
		{"health skipped", http.MethodGet, "/health", http.StatusOK, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics := NewMetrics(reg)

			handler := MetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			if got := durationSamples(t, reg, tt.method); got != tt.wantSamples {
				t.Errorf("duration samples = %d, want %d", got, tt.wantSamples)
			}
			if tt.wantLabel == "" {
				return
			}
			var m dto.Metric
			if err := metrics.RequestsTotal.WithLabelValues(tt.method, tt.wantLabel).Write(&m); err != nil {
				t.Fatal(err)
			}
			if m.Counter.GetValue() != 1 {
				t.Errorf("requests_total{status=%q} = %f, want 1", tt.wantLabel, m.Counter.GetValue())
			}
		})
	}
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	if _, _, err := rec.Hijack(); err == nil {
		t.Error("Hijack() on a non-hijacker succeeded")
	}
	if rec.status != http.StatusOK {
		t.Errorf("status = %d after failed hijack", rec.status)
	}
}
