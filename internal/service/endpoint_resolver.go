package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/routing"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// Source names the signal a resolution was decided by.
type Source string

const (
	SourcePinned      Source = "pinned"
	SourcePersisted   Source = "persisted"
	SourceQuery       Source = "query"
	SourceCookie      Source = "cookie"
	SourceRoute       Source = "route"
	SourcePlaceholder Source = "placeholder"
	SourceNone        Source = "none"
)

// Resolution is the outcome of endpoint resolution.
type Resolution struct {
	Source  Source       `json:"source"`
	Store   *store.Store `json:"store,omitempty"`
	Binding *gql.Binding `json:"binding,omitempty"`
}

// RenderRequest is what a render pass can see of the incoming request.
type RenderRequest struct {
	// SelectedStoreCookie is the raw selectedStore cookie value, "" if absent.
	SelectedStoreCookie string
	// Path is the request path.
	Path string
}

// RenderScope is the fresh per-request scope of a render pass.
type RenderScope struct {
	Resolution Resolution
	Route      routing.Route
	Client     *Rebinder
}

// Close releases the render scope's client.
func (r *RenderScope) Close() {
	r.Client.Close()
}

// EndpointResolver applies one precedence order per environment to decide
// which endpoint the query client is bound to.
type EndpointResolver struct {
	directory *DirectoryService
	factory   gql.ClientFactory
	policy    BindingPolicy
	logger    *slog.Logger
}

// NewEndpointResolver creates an EndpointResolver.
func NewEndpointResolver(directory *DirectoryService, factory gql.ClientFactory, policy BindingPolicy, logger *slog.Logger) *EndpointResolver {
	return &EndpointResolver{
		directory: directory,
		factory:   factory,
		policy:    policy,
		logger:    logger,
	}
}

// ResolveClient binds a session scope. Precedence: pinned endpoint, persisted
// selection still present in the directory, "store" query parameter, none.
// With SourceNone the caller redirects; no endpoint is guessed.
func (r *EndpointResolver) ResolveClient(ctx context.Context, scope *Scope, sink CookieSink, query url.Values) (Resolution, error) {
	if pinned, ok, err := scope.Pinned(ctx); err != nil {
		return Resolution{}, fmt.Errorf("read pinned endpoint: %w", err)
	} else if ok && pinned != "" {
		b := r.policy.ForEndpoint(pinned)
		if _, err := scope.Client.Bind(ctx, b); err != nil {
			return Resolution{}, err
		}
		return Resolution{Source: SourcePinned, Store: scope.Selection.Selected(), Binding: &b}, nil
	}

	if res, ok, err := r.resolvePersisted(ctx, scope, sink); err != nil || ok {
		return res, err
	}

	if slug := query.Get("store"); slug != "" {
		st, err := scope.Selection.SelectBySlug(ctx, sink, slug)
		switch {
		case err == nil:
			b := r.policy.ForStore(st)
			return Resolution{Source: SourceQuery, Store: &st, Binding: &b}, nil
		case errors.Is(err, store.ErrStoreNotFound):
			r.logger.Info("ignoring unknown store query parameter", "session_id", scope.ID(), "slug", slug)
		default:
			return Resolution{}, err
		}
	}

	if scope.Selection.Selected() != nil {
		scope.Selection.forget(ctx, sink)
	}
	scope.Client.Drop(ctx)
	return Resolution{Source: SourceNone}, nil
}

func (r *EndpointResolver) resolvePersisted(ctx context.Context, scope *Scope, sink CookieSink) (Resolution, bool, error) {
	persisted, ok, err := scope.Selection.restore(ctx)
	if errors.Is(err, store.ErrPersistenceCorrupt) {
		r.logger.Warn("discarded corrupt persisted selection", "session_id", scope.ID(), "error", err)
		return Resolution{}, false, nil
	}
	if err != nil {
		return Resolution{}, false, fmt.Errorf("read persisted selection: %w", err)
	}
	if !ok {
		return Resolution{}, false, nil
	}

	d, err := r.directory.Stores(ctx, false)
	switch {
	case errors.Is(err, store.ErrDirectoryUnavailable):
		// The record cannot be checked; keep using it.
		r.logger.Warn("directory unavailable, trusting persisted selection", "session_id", scope.ID(), "store", persisted.Slug)
	case err != nil:
		return Resolution{}, false, err
	default:
		current, found := d.Find(persisted.Slug)
		if !found {
			r.logger.Info("persisted store no longer listed", "session_id", scope.ID(), "store", persisted.Slug)
			scope.Selection.forget(ctx, sink)
			return Resolution{}, false, nil
		}
		persisted = current
	}

	if err := scope.Selection.adopt(ctx, sink, persisted); err != nil {
		return Resolution{}, false, err
	}
	b := r.policy.ForStore(persisted)
	return Resolution{Source: SourcePersisted, Store: &persisted, Binding: &b}, true, nil
}

// ResolveServer builds a render scope. Precedence: selectedStore cookie,
// "/store/:slug" path, placeholder for routes outside "/store/". A store
// path whose slug is unknown after one refresh fails with
// store.ErrNoStoreSelected. When the route decides, the cookie is primed.
func (r *EndpointResolver) ResolveServer(ctx context.Context, req RenderRequest, sink CookieSink) (*RenderScope, error) {
	route := routing.Match(req.Path)
	scope := &RenderScope{
		Route:  route,
		Client: NewRebinder(r.factory, r.logger),
	}

	if st, ok := r.fromCookie(ctx, req.SelectedStoreCookie); ok {
		return r.bindRender(ctx, scope, SourceCookie, st, r.policy.ForStore(st))
	}

	if route.Slug != "" {
		st, err := r.directory.Find(ctx, route.Slug)
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, fmt.Errorf("%w: unknown store %q", store.ErrNoStoreSelected, route.Slug)
		}
		if err != nil {
			return nil, err
		}
		sink.SetSelectedStore(st)
		return r.bindRender(ctx, scope, SourceRoute, st, r.policy.ForStore(st))
	}

	b := r.policy.Placeholder()
	if _, err := scope.Client.Bind(ctx, b); err != nil {
		return nil, err
	}
	scope.Resolution = Resolution{Source: SourcePlaceholder, Binding: &b}
	return scope, nil
}

// fromCookie decodes the selectedStore cookie. The directory's record wins
// over the cookie's endpoint; a slug the directory no longer lists is
// ignored. When the directory cannot be reached the cookie is used as is.
func (r *EndpointResolver) fromCookie(ctx context.Context, value string) (store.Store, bool) {
	if value == "" {
		return store.Store{}, false
	}
	st, err := store.DecodeCookie(value)
	if err != nil {
		r.logger.Warn("ignoring corrupt selectedStore cookie", "error", err)
		return store.Store{}, false
	}

	d, err := r.directory.Stores(ctx, false)
	if err != nil {
		r.logger.Warn("directory unavailable, trusting selectedStore cookie", "store", st.Slug, "error", err)
		return st, true
	}
	current, ok := d.Find(st.Slug)
	if !ok {
		r.logger.Info("ignoring selectedStore cookie for unlisted store", "store", st.Slug)
		return store.Store{}, false
	}
	return current, true
}

func (r *EndpointResolver) bindRender(ctx context.Context, scope *RenderScope, src Source, st store.Store, b gql.Binding) (*RenderScope, error) {
	if _, err := scope.Client.Bind(ctx, b); err != nil {
		return nil, err
	}
	scope.Resolution = Resolution{Source: src, Store: &st, Binding: &b}
	return scope, nil
}
