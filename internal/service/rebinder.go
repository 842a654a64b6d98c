package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// Rebinder owns the single query client of a scope and swaps it when the
// tenant changes. Server render scopes use a Rebinder without storage or
// events.
type Rebinder struct {
	sessionID string
	factory   gql.ClientFactory
	storage   session.Storage
	events    EventPublisher
	logger    *slog.Logger

	mu          sync.RWMutex
	client      gql.Client
	fingerprint uint64

	rebinds metric.Int64Counter
}

// RebinderOption is a functional option for configuring Rebinder.
type RebinderOption func(*Rebinder)

// WithSessionStorage records the last bound endpoint in the session's storage.
func WithSessionStorage(sessionID string, storage session.Storage) RebinderOption {
	return func(r *Rebinder) {
		r.sessionID = sessionID
		r.storage = storage
	}
}

// WithEvents publishes binding changes for the session.
func WithEvents(events EventPublisher) RebinderOption {
	return func(r *Rebinder) {
		r.events = events
	}
}

// NewRebinder creates an unbound Rebinder.
func NewRebinder(factory gql.ClientFactory, logger *slog.Logger, opts ...RebinderOption) *Rebinder {
	r := &Rebinder{
		factory: factory,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	counter, err := otel.Meter(meterName).Int64Counter("woofront.client.rebinds",
		metric.WithDescription("Query client rebinds by kind"))
	if err != nil {
		counter = noop.Int64Counter{}
	}
	r.rebinds = counter
	return r
}

// Bind makes b the active binding and returns the client for it. Binding the
// active binding again is a no-op: the same client is returned and no event
// is published. Otherwise a fresh client replaces the old one wholesale.
func (r *Rebinder) Bind(ctx context.Context, b gql.Binding) (gql.Client, error) {
	fp := b.Fingerprint()

	r.mu.RLock()
	if r.client != nil && r.fingerprint == fp {
		c := r.client
		r.mu.RUnlock()
		return c, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil && r.fingerprint == fp {
		return r.client, nil
	}

	client, err := r.factory.NewClient(b)
	if err != nil {
		return nil, fmt.Errorf("create client for %s: %w", b.Endpoint, err)
	}

	if r.storage != nil && !b.Placeholder {
		if err := r.storage.Set(ctx, r.sessionID, session.KeyEndpoint, b.Endpoint); err != nil {
			r.logger.Warn("failed to record last endpoint", "session_id", r.sessionID, "error", err)
		}
	}

	old := r.client
	r.client = client
	r.fingerprint = fp
	if old != nil {
		old.Close()
	}

	r.rebinds.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "bind")))
	r.logger.Debug("query client bound", "session_id", r.sessionID, "endpoint", b.Endpoint, "store", b.StoreSlug)
	r.publish(Event{Type: EventEndpointChanged, Endpoint: b.Endpoint, StoreSlug: b.StoreSlug})
	return client, nil
}

// ForceReload recreates the client for the current binding, discarding its
// connections and cookies.
func (r *Rebinder) ForceReload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return store.ErrNoStoreSelected
	}
	b := r.client.Binding()
	client, err := r.factory.NewClient(b)
	if err != nil {
		return fmt.Errorf("recreate client for %s: %w", b.Endpoint, err)
	}
	r.client.Close()
	r.client = client

	r.rebinds.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "reload")))
	r.logger.Info("query client reloaded", "session_id", r.sessionID, "endpoint", b.Endpoint)
	r.publish(Event{Type: EventClientReloaded, Endpoint: b.Endpoint, StoreSlug: b.StoreSlug})
	return nil
}

// Drop removes the binding. Queries fail with store.ErrNoStoreSelected until
// the next Bind.
func (r *Rebinder) Drop(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return
	}
	r.client.Close()
	r.client = nil
	r.fingerprint = 0

	r.rebinds.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "drop")))
	r.publish(Event{Type: EventClientReset})
}

// Current returns the active binding.
func (r *Rebinder) Current() (gql.Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.client == nil {
		return gql.Binding{}, false
	}
	return r.client.Binding(), true
}

// Query sends one query through the active client.
func (r *Rebinder) Query(ctx context.Context, req gql.Request) (json.RawMessage, error) {
	r.mu.RLock()
	c := r.client
	r.mu.RUnlock()

	if c == nil {
		return nil, store.ErrNoStoreSelected
	}
	return c.Do(ctx, req)
}

// Close releases the active client without publishing.
func (r *Rebinder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		r.client.Close()
		r.client = nil
		r.fingerprint = 0
	}
}

func (r *Rebinder) publish(ev Event) {
	if r.events != nil && r.sessionID != "" {
		r.events.Publish(r.sessionID, ev)
	}
}
