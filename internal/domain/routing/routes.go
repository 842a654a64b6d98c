// Package routing classifies storefront paths and builds store-scoped URLs.
package routing

import (
	"net/url"
	"strings"
)

// Class is the guard-relevant category of a path.
type Class int

const (
	// ClassExcluded paths never require a selected store ("/", "/index").
	ClassExcluded Class = iota
	// ClassStoreEntry is the bare "/store/:slug" selection entry.
	ClassStoreEntry
	// ClassStoreScoped paths live under "/store/:slug/".
	ClassStoreScoped
	// ClassAppScoped paths are application pages outside "/store/" that
	// still need a tenant (cart, account, search).
	ClassAppScoped
	// ClassOperational paths belong to the gateway itself (API, health, metrics).
	ClassOperational
)

func (c Class) String() string {
	switch c {
	case ClassExcluded:
		return "excluded"
	case ClassStoreEntry:
		return "store-entry"
	case ClassStoreScoped:
		return "store-scoped"
	case ClassAppScoped:
		return "app-scoped"
	case ClassOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// RequiresStore reports whether pages of this class need a selected store.
func (c Class) RequiresStore() bool {
	return c == ClassStoreScoped || c == ClassAppScoped
}

// Route is a matched storefront path.
type Route struct {
	Class Class
	// Name identifies the page, e.g. "products" or "product". Empty for
	// unknown pages.
	Name string
	// Slug is the store slug taken from the path, if any.
	Slug string
	// Params holds named path parameters other than the slug.
	Params map[string]string
}

// operationalPrefixes are served by the gateway, not the storefront.
var operationalPrefixes = []string{"/api/", "/graphql", "/health", "/metrics", "/_"}

// storePattern is a route under "/store/:slug/". Segments starting with ':'
// capture a parameter.
type storePattern struct {
	name     string
	segments []string
}

var storePatterns = []storePattern{
	{"products", []string{"products"}},
	{"products-page", []string{"products", "page", ":page"}},
	{"categories", []string{"categories"}},
	{"product", []string{"product", ":product"}},
	{"product-category", []string{"product-category", ":category"}},
	{"product-category-page", []string{"product-category", ":category", "page", ":page"}},
	{"wishlist", []string{"wishlist"}},
	{"checkout", []string{"checkout"}},
	{"order-received", []string{"checkout", "order-received", ":order"}},
	{"order-summary", []string{"order-summary", ":order"}},
	{"contact", []string{"contact"}},
}

// Match classifies path. Query strings and fragments are ignored.
func Match(path string) Route {
	path = cleanPath(path)

	switch path {
	case "/", "/index":
		return Route{Class: ClassExcluded, Name: "home"}
	}
	for _, p := range operationalPrefixes {
		if path == strings.TrimSuffix(p, "/") || strings.HasPrefix(path, p) {
			return Route{Class: ClassOperational}
		}
	}

	slug, rest, ok := splitStorePath(path)
	if !ok {
		return Route{Class: ClassAppScoped, Name: strings.Trim(path, "/")}
	}
	if len(rest) == 0 {
		return Route{Class: ClassStoreEntry, Name: "store", Slug: slug}
	}

	r := Route{Class: ClassStoreScoped, Slug: slug}
	for _, p := range storePatterns {
		if params, ok := p.match(rest); ok {
			r.Name = p.name
			r.Params = params
			break
		}
	}
	return r
}

func (p storePattern) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(p.segments) {
		return nil, false
	}
	var params map[string]string
	for i, want := range p.segments {
		if strings.HasPrefix(want, ":") {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[want[1:]] = segs[i]
			continue
		}
		if segs[i] != want {
			return nil, false
		}
	}
	return params, true
}

// splitStorePath returns the slug and the remaining segments of a
// "/store/:slug/..." path.
func splitStorePath(path string) (string, []string, bool) {
	rest, ok := strings.CutPrefix(path, "/store/")
	if !ok {
		return "", nil, false
	}
	segs := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return "", nil, false
	}
	slug, err := url.PathUnescape(segs[0])
	if err != nil || slug == "" {
		return "", nil, false
	}
	return slug, segs[1:], true
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
