package routing

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard decides whether a client-side navigation to path may proceed given
// whether a store is currently selected. Pages that need a store redirect to
// the store entry named by the path, or to "/" when the path names none.
func Guard(path string, hasSelection bool) Decision {
	r := Match(path)
	if !r.Class.RequiresStore() || hasSelection {
		return Decision{Allow: true}
	}
	if r.Slug != "" {
		return Decision{Redirect: StoreURL(r.Slug)}
	}
	return Decision{Redirect: "/"}
}

// LandingURL is where the store entry sends the browser once the store is
// selected.
func LandingURL(slug string) string {
	return ProductsURL(slug, 1)
}
