package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/memory"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(slug string) store.Store {
	return store.Store{
		ID:              slug + "-id",
		Name:            slug,
		Slug:            slug,
		URL:             "https://" + slug + ".example.com",
		GraphQLEndpoint: "https://" + slug + ".example.com/graphql",
	}
}

// fakeSource is a DirectorySource returning a configurable result.
type fakeSource struct {
	mu     sync.Mutex
	stores []store.Store
	err    error
	calls  atomic.Int32
	// block, when set, is received from before answering.
	block chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context) ([]store.Store, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]store.Store(nil), f.stores...), nil
}

func (f *fakeSource) set(stores []store.Store, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores = stores
	f.err = err
}

// fakeClient records queries and whether it was closed.
type fakeClient struct {
	binding gql.Binding
	closed  atomic.Bool
	queries atomic.Int32
}

func (c *fakeClient) Do(ctx context.Context, req gql.Request) (json.RawMessage, error) {
	c.queries.Add(1)
	return json.RawMessage(`{"endpoint":"` + c.binding.Endpoint + `"}`), nil
}

func (c *fakeClient) Binding() gql.Binding { return c.binding }

func (c *fakeClient) Close() { c.closed.Store(true) }

// fakeFactory hands out fakeClients and remembers them.
type fakeFactory struct {
	mu      sync.Mutex
	clients []*fakeClient
	err     error
}

func (f *fakeFactory) NewClient(b gql.Binding) (gql.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeClient{binding: b.Clone()}
	f.clients = append(f.clients, c)
	return c, nil
}

func (f *fakeFactory) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFactory) created() []*fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeClient(nil), f.clients...)
}

// recordingSink captures cookie writes.
type recordingSink struct {
	set     []store.Store
	cleared int
}

func (s *recordingSink) SetSelectedStore(st store.Store) { s.set = append(s.set, st) }

func (s *recordingSink) ClearSelectedStore() { s.cleared++ }

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(sessionID string, ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func testPolicy() BindingPolicy {
	return BindingPolicy{
		Origin:              "http://localhost:3000",
		CORSMode:            "cors",
		CredentialMode:      gql.CredentialsInclude,
		PlaceholderEndpoint: "https://placeholder.invalid/graphql",
	}
}

// fixture wires one session scope against fakes.
type fixture struct {
	source    *fakeSource
	directory *DirectoryService
	factory   *fakeFactory
	storage   *memory.SessionStorage
	events    *recordingPublisher
	scope     *Scope
	resolver  *EndpointResolver
}

const testSessionID = "3f1c2a9e-7b4d-4c61-9a0e-5d2b8f6c1e07"

func newFixture(t *testing.T, stores ...store.Store) *fixture {
	t.Helper()

	src := &fakeSource{stores: stores}
	dir := NewDirectoryService(src, DirectoryOptions{Logger: testLogger()})
	factory := &fakeFactory{}
	storage := memory.NewSessionStorage()
	events := &recordingPublisher{}
	policy := testPolicy()

	rebinder := NewRebinder(factory, testLogger(),
		WithSessionStorage(testSessionID, storage),
		WithEvents(events),
	)
	scope := &Scope{
		Selection: NewSelectionState(testSessionID, storage, dir, rebinder, policy, testLogger()),
		Client:    rebinder,
		storage:   storage,
		policy:    policy,
	}
	scope.Session.ID = testSessionID

	return &fixture{
		source:    src,
		directory: dir,
		factory:   factory,
		storage:   storage,
		events:    events,
		scope:     scope,
		resolver:  NewEndpointResolver(dir, factory, policy, testLogger()),
	}
}

// freshScope builds a second scope for the same session, as after a restart.
func (f *fixture) freshScope() *Scope {
	policy := testPolicy()
	rebinder := NewRebinder(f.factory, testLogger(),
		WithSessionStorage(testSessionID, f.storage),
		WithEvents(f.events),
	)
	sc := &Scope{
		Selection: NewSelectionState(testSessionID, f.storage, f.directory, rebinder, policy, testLogger()),
		Client:    rebinder,
		storage:   f.storage,
		policy:    policy,
	}
	sc.Session.ID = testSessionID
	return sc
}
