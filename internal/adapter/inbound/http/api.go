package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/routing"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

// requestError marks a malformed client request.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

type storesResponse struct {
	Stores    []store.Store           `json:"stores"`
	Directory service.DirectoryStatus `json:"directory"`
	Refreshed bool                    `json:"refreshed"`
}

// handleStores returns the directory. force=true refreshes when the refresh
// limiter allows it and serves the cache otherwise.
func (h *Handler) handleStores(w http.ResponseWriter, r *http.Request) {
	var (
		d         *store.Directory
		refreshed bool
		err       error
	)
	if r.URL.Query().Get("force") == "true" {
		d, refreshed, err = h.directory.TryRefresh(r.Context())
		h.countRefresh(refreshed, err)
	} else {
		d, err = h.directory.Stores(r.Context(), false)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	stores := d.Stores()
	if stores == nil {
		stores = []store.Store{}
	}
	writeJSON(w, r, http.StatusOK, storesResponse{
		Stores:    stores,
		Directory: h.directory.Status(),
		Refreshed: refreshed,
	})
}

func (h *Handler) countRefresh(refreshed bool, err error) {
	if h.metrics == nil {
		return
	}
	result := "throttled"
	switch {
	case err != nil:
		result = "error"
	case refreshed:
		result = "refreshed"
	}
	h.metrics.DirectoryRefreshes.WithLabelValues(result).Inc()
}

type sessionResponse struct {
	SessionID string                    `json:"sessionId"`
	Selection service.SelectionSnapshot `json:"selection"`
	Binding   *gql.Binding              `json:"binding,omitempty"`
	Pinned    string                    `json:"pinnedEndpoint,omitempty"`
	Endpoint  string                    `json:"lastEndpoint,omitempty"`
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	scope := scopeOf(r)
	writeSession(w, r, scope)
}

func writeSession(w http.ResponseWriter, r *http.Request, scope *service.Scope) {
	ctx := r.Context()
	resp := sessionResponse{
		SessionID: scope.ID(),
		Selection: scope.Selection.Snapshot(),
	}
	if b, ok := scope.Client.Current(); ok {
		resp.Binding = &b
	}

	var err error
	if resp.Pinned, _, err = scope.Pinned(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.Endpoint, _, err = scope.LastEndpoint(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type selectRequest struct {
	Slug string `json:"slug"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	if !store.IsValidSlug(req.Slug) {
		writeError(w, r, badRequest("invalid store slug %q", req.Slug))
		return
	}

	st, err := scopeOf(r).Selection.SelectBySlug(r.Context(), h.sink(w, r), req.Slug)
	h.countSelection(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"store": st})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := scopeOf(r).Selection.Reset(r.Context(), h.sink(w, r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *Handler) handlePin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	u, err := url.Parse(req.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, r, badRequest("endpoint must be an absolute http(s) URL"))
		return
	}

	scope := scopeOf(r)
	if err := scope.Pin(r.Context(), req.Endpoint); err != nil {
		writeError(w, r, err)
		return
	}
	LoggerFromContext(r.Context()).Info("graphql endpoint pinned", "endpoint", req.Endpoint)
	writeSession(w, r, scope)
}

// handleUnpin removes the override and re-resolves so the binding falls
// back to the selected store.
func (h *Handler) handleUnpin(w http.ResponseWriter, r *http.Request) {
	scope := scopeOf(r)
	if err := scope.Unpin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.resolver.ResolveClient(r.Context(), scope, h.sink(w, r), nil); err != nil {
		writeError(w, r, err)
		return
	}
	writeSession(w, r, scope)
}

type navigateRequest struct {
	Path  string            `json:"path"`
	Query map[string]string `json:"query,omitempty"`
}

type navigateResponse struct {
	Resolution service.Resolution `json:"resolution"`
	Decision   routing.Decision   `json:"decision"`
	Route      routeView          `json:"route"`
}

// handleNavigate runs client resolution for a navigation and then the
// post-hydration guard. Navigating to a store entry selects that store.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	if !strings.HasPrefix(req.Path, "/") {
		writeError(w, r, badRequest("path must start with /"))
		return
	}

	ctx := r.Context()
	scope := scopeOf(r)
	sink := h.sink(w, r)
	route := routing.Match(req.Path)

	if route.Class == routing.ClassStoreEntry {
		st, err := scope.Selection.SelectBySlug(ctx, sink, route.Slug)
		h.countSelection(err)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, _ := scope.Client.Current()
		writeJSON(w, r, http.StatusOK, navigateResponse{
			Resolution: service.Resolution{Source: service.SourceRoute, Store: &st, Binding: &b},
			Decision:   routing.Decision{Redirect: routing.LandingURL(st.Slug)},
			Route:      viewOf(route),
		})
		return
	}

	query := make(url.Values, len(req.Query))
	for k, v := range req.Query {
		query.Set(k, v)
	}
	res, err := h.resolver.ResolveClient(ctx, scope, sink, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, navigateResponse{
		Resolution: res,
		Decision:   routing.Guard(req.Path, res.Source != service.SourceNone),
		Route:      viewOf(route),
	})
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := scopeOf(r).Client.ForceReload(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGraphQL sends one query through the session's binding.
func (h *Handler) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req gql.Request
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, badRequest("query is required"))
		return
	}

	data, err := scopeOf(r).Client.Query(r.Context(), req)
	h.countQuery(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Data json.RawMessage `json:"data"`
	}{Data: data})
}

func (h *Handler) countQuery(err error) {
	if h.metrics == nil {
		return
	}
	var transportErr *gql.TransportError
	var graphqlErr *gql.GraphQLError
	outcome := "ok"
	switch {
	case err == nil:
	case errors.As(err, &transportErr):
		outcome = "transport_error"
	case errors.As(err, &graphqlErr):
		outcome = "graphql_error"
	case errors.Is(err, store.ErrNoStoreSelected):
		outcome = "no_store"
	default:
		outcome = "error"
	}
	h.metrics.GraphQLQueries.WithLabelValues(outcome).Inc()
}
