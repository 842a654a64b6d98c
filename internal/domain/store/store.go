// Package store contains the tenant model of the storefront: stores, their
// slugs, and the directory listing every store the storefront can serve.
package store

import "strings"

// Store is one tenant of the multisite backend.
type Store struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	URL             string `json:"url"`
	GraphQLEndpoint string `json:"graphqlEndpoint"`
	Description     string `json:"description,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
}

// EndpointFor returns the conventional GraphQL endpoint of a site URL.
func EndpointFor(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/graphql"
}

// Valid reports whether s carries everything needed to bind a client.
func (s Store) Valid() bool {
	return IsValidSlug(s.Slug) && s.GraphQLEndpoint != ""
}
