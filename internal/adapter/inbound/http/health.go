package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// HealthChecker verifies component health.
type HealthChecker struct {
	sessions  *service.SessionManager
	directory *service.DirectoryService
	version   string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(sessions *service.SessionManager, directory *service.DirectoryService, version string) *HealthChecker {
	return &HealthChecker{
		sessions:  sessions,
		directory: directory,
		version:   version,
	}
}

// Check performs health checks on all components. The gateway is unhealthy
// only when the directory has failed and nothing can be served; a fallback
// list is reported as degraded.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.sessions != nil {
		checks["sessions"] = fmt.Sprintf("ok: %d active", h.sessions.Count())
	} else {
		checks["sessions"] = "not configured"
	}

	if h.directory != nil {
		st := h.directory.Status()
		switch {
		case st.Stores == 0 && st.LastError != "":
			checks["directory"] = "unavailable: " + st.LastError
			healthy = false
		case st.UsingFallback:
			checks["directory"] = fmt.Sprintf("degraded: serving %d fallback stores (%s)", st.Stores, st.LastError)
		case st.Stores == 0:
			checks["directory"] = "not loaded"
		default:
			checks["directory"] = fmt.Sprintf("ok: %d stores", st.Stores)
		}
	} else {
		checks["directory"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:  status,
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}

func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
}
