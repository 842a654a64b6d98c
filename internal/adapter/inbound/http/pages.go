package http

import (
	"errors"
	"net/http"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/routing"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

// routeView is the JSON form of a matched route.
type routeView struct {
	Class  string            `json:"class"`
	Name   string            `json:"name,omitempty"`
	Slug   string            `json:"slug,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

func viewOf(r routing.Route) routeView {
	return routeView{Class: r.Class.String(), Name: r.Name, Slug: r.Slug, Params: r.Params}
}

// renderContext is what a page render pass starts from.
type renderContext struct {
	Path       string             `json:"path"`
	Route      routeView          `json:"route"`
	Resolution service.Resolution `json:"resolution"`
}

// handlePage runs the server-priming guard for a page request. The bare
// store entry selects the store and redirects to its landing page.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	route := routing.Match(r.URL.Path)
	switch route.Class {
	case routing.ClassOperational:
		http.NotFound(w, r)
		return
	case routing.ClassStoreEntry:
		h.handleStoreEntry(w, r, route.Slug)
		return
	}

	var cookie string
	if c, err := r.Cookie(store.CookieName); err == nil {
		cookie = c.Value
	}

	rs, err := h.resolver.ResolveServer(r.Context(), service.RenderRequest{
		SelectedStoreCookie: cookie,
		Path:                r.URL.Path,
	}, h.sink(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rs.Close()

	writeJSON(w, r, http.StatusOK, renderContext{
		Path:       r.URL.Path,
		Route:      viewOf(rs.Route),
		Resolution: rs.Resolution,
	})
}

func (h *Handler) handleStoreEntry(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()
	scope := scopeOf(r)

	st, err := h.directory.Find(ctx, slug)
	if err != nil {
		h.countSelection(err)
		writeError(w, r, err)
		return
	}
	err = scope.Selection.SelectByRecord(ctx, h.sink(w, r), st)
	h.countSelection(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, routing.LandingURL(st.Slug), http.StatusFound)
}

func (h *Handler) countSelection(err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, store.ErrStoreNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	h.metrics.StoreSelections.WithLabelValues(result).Inc()
}
