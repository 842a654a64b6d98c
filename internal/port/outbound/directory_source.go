// Package outbound defines the outbound port interfaces for reaching the
// multisite backend.
package outbound

import (
	"context"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// DirectorySource fetches the store list from the discovery endpoint.
// Adapters implement this for the REST and GraphQL directory shapes.
type DirectorySource interface {
	// Fetch performs one discovery request and returns stores in upstream
	// order. It does not cache and does not apply fallbacks.
	Fetch(ctx context.Context) ([]store.Store, error)
}
