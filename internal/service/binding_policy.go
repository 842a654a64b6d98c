package service

import (
	"maps"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// BindingPolicy turns stores and endpoints into client bindings carrying the
// configured headers and request modes.
type BindingPolicy struct {
	// Origin is sent as the Origin header.
	Origin string
	// CORSMode is recorded on every binding.
	CORSMode string
	// CredentialMode decides whether cookies travel with queries.
	CredentialMode string
	// Headers are added to every binding.
	Headers map[string]string
	// PlaceholderEndpoint is used by Placeholder.
	PlaceholderEndpoint string
}

// ForStore binds to a store's GraphQL endpoint.
func (p BindingPolicy) ForStore(s store.Store) gql.Binding {
	b := p.ForEndpoint(s.GraphQLEndpoint)
	b.StoreSlug = s.Slug
	return b
}

// ForEndpoint binds to an arbitrary endpoint, as used by a pinned override.
func (p BindingPolicy) ForEndpoint(endpoint string) gql.Binding {
	headers := maps.Clone(p.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	if p.Origin != "" {
		headers["Origin"] = p.Origin
	}
	return gql.Binding{
		Endpoint:       endpoint,
		Headers:        headers,
		CORSMode:       p.CORSMode,
		CredentialMode: p.CredentialMode,
	}
}

// Placeholder is the neutral binding used by render passes with no tenant.
func (p BindingPolicy) Placeholder() gql.Binding {
	b := p.ForEndpoint(p.PlaceholderEndpoint)
	b.CredentialMode = gql.CredentialsOmit
	b.Placeholder = true
	return b
}
