package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/graphql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/memory"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var seenID string
	handler := RequestIDMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(RequestIDKey).(string)
		LoggerFromContext(r.Context()).Info("handled")
	}))

	t.Run("propagates incoming id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-123")
		handler.ServeHTTP(rec, req)

		if seenID != "req-123" || rec.Header().Get("X-Request-ID") != "req-123" {
			t.Errorf("id = %q, header = %q", seenID, rec.Header().Get("X-Request-ID"))
		}
		if !strings.Contains(buf.String(), "request_id=req-123") {
			t.Errorf("log line missing request_id: %s", buf.String())
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if len(seenID) != 36 {
			t.Errorf("generated id = %q, want a uuid", seenID)
		}
	})
}

func TestLoggerFromContext_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if LoggerFromContext(req.Context()) != slog.Default() {
		t.Error("expected slog.Default() without a request logger")
	}
}

func TestExtractRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractRealIP(req); got != tt.want {
				t.Errorf("extractRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDNSRebindingProtection(t *testing.T) {
	handler := DNSRebindingProtection([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		origin string
		want   int
	}{
		{"", http.StatusOK},
		{"http://localhost:3000", http.StatusOK},
		{"http://evil.example.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/session/select", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("origin %q: status = %d, want %d", tt.origin, rec.Code, tt.want)
		}
	}
}

func TestSessionMiddleware(t *testing.T) {
	logger := discardLogger()
	directory := service.NewDirectoryService(staticSource{stores: healthStores}, service.DirectoryOptions{Logger: logger})
	sessions := service.NewSessionManager(memory.NewSessionStorage(), directory, graphql.NewFactory(),
		service.BindingPolicy{PlaceholderEndpoint: "https://placeholder.invalid/graphql"}, service.NewEventHub(), logger,
		service.SessionManagerConfig{})
	defer sessions.Stop()

	var seen string
	handler := SessionMiddleware(sessions, CookieSettings{Secure: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := ScopeFromContext(r.Context())
		if !ok {
			t.Fatal("no scope in context")
		}
		seen = scope.ID()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if c.Value != seen || !c.HttpOnly || !c.Secure {
		t.Errorf("session cookie = %+v, scope = %q", c, seen)
	}

	// The same cookie reuses the scope and sets nothing.
	first := seen
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: first})
	handler.ServeHTTP(rec, req)
	if seen != first {
		t.Errorf("scope = %q, want %q", seen, first)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("cookie re-set for an existing session")
	}
	if sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", sessions.Count())
	}
}
