package gql

import (
	"context"
	"encoding/json"
)

// Request is the body of a GraphQL POST.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Client executes queries against a fixed binding.
type Client interface {
	// Do sends one query and returns the "data" member of the response.
	Do(ctx context.Context, req Request) (json.RawMessage, error)

	// Binding returns the binding the client was built for.
	Binding() Binding

	// Close releases idle connections.
	Close()
}

// ClientFactory builds a fresh Client for a binding. Every call returns a
// client with its own cookie jar.
type ClientFactory interface {
	NewClient(b Binding) (Client, error)
}
