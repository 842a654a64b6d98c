package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

// Handler serves pages and the session API.
type Handler struct {
	sessions  *service.SessionManager
	directory *service.DirectoryService
	resolver  *service.EndpointResolver
	events    *service.EventHub
	cookies   CookieSettings
	logger    *slog.Logger
	metrics   *Metrics
	upgrader  websocket.Upgrader
}

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithCookieSettings sets the attributes of written cookies.
func WithCookieSettings(c CookieSettings) HandlerOption {
	return func(h *Handler) { h.cookies = c }
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a Handler.
func NewHandler(sessions *service.SessionManager, directory *service.DirectoryService,
	resolver *service.EndpointResolver, events *service.EventHub, opts ...HandlerOption) *Handler {
	h := &Handler{
		sessions:  sessions,
		directory: directory,
		resolver:  resolver,
		events:    events,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the page and API routes. allowedOrigins guards the API and
// websocket upgrades against cross-origin use.
func (h *Handler) Routes(metrics *Metrics, allowedOrigins []string) http.Handler {
	h.metrics = metrics
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}

	session := SessionMiddleware(h.sessions, h.cookies, metrics)
	api := func(fn http.HandlerFunc) http.Handler {
		return DNSRebindingProtection(allowedOrigins)(session(fn))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/stores", DNSRebindingProtection(allowedOrigins)(http.HandlerFunc(h.handleStores)))
	mux.Handle("GET /api/session", api(h.handleGetSession))
	mux.Handle("POST /api/session/select", api(h.handleSelect))
	mux.Handle("DELETE /api/session/select", api(h.handleReset))
	mux.Handle("PUT /api/session/pin", api(h.handlePin))
	mux.Handle("DELETE /api/session/pin", api(h.handleUnpin))
	mux.Handle("POST /api/session/navigate", api(h.handleNavigate))
	mux.Handle("POST /api/session/reload", api(h.handleReload))
	mux.Handle("GET /api/session/events", session(http.HandlerFunc(h.handleEvents)))
	mux.Handle("POST /graphql", api(h.handleGraphQL))
	mux.Handle("GET /", session(http.HandlerFunc(h.handlePage)))
	return mux
}

// CloseStreams ends every open event stream.
func (h *Handler) CloseStreams() {
	h.events.Close()
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// scopeOf returns the request's session scope. Routes without
// SessionMiddleware never call it.
func scopeOf(r *http.Request) *service.Scope {
	scope, ok := ScopeFromContext(r.Context())
	if !ok {
		panic("http: session scope missing from request context")
	}
	return scope
}

func (h *Handler) sink(w http.ResponseWriter, r *http.Request) *responseCookieSink {
	return newCookieSink(w, h.cookies, LoggerFromContext(r.Context()))
}
