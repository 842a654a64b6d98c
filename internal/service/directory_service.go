package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/port/outbound"
)

// DefaultFreshness is how long a fetched directory is served from cache.
const DefaultFreshness = 5 * time.Minute

const meterName = "github.com/Singh-Rishabh/WooFrontEnd/service"

// errEmptyDirectory is recorded when discovery answers with no usable store.
var errEmptyDirectory = errors.New("discovery returned no usable stores")

// DirectoryStatus is a point-in-time view of the directory cache.
type DirectoryStatus struct {
	Loading       bool      `json:"isLoading"`
	LastError     string    `json:"lastError,omitempty"`
	FetchedAt     time.Time `json:"fetchedAt,omitzero"`
	UsingFallback bool      `json:"usingFallback"`
	Stores        int       `json:"stores"`
}

// DirectoryOptions configures a DirectoryService.
type DirectoryOptions struct {
	// Freshness defaults to DefaultFreshness.
	Freshness time.Duration
	// Fallback is served when discovery fails and nothing was fetched yet.
	// Empty means discovery failures surface as store.ErrDirectoryUnavailable.
	Fallback []store.Store
	// RefreshLimit bounds forced refreshes triggered by TryRefresh and by
	// lookup misses. Zero means one every ten seconds with a burst of three.
	RefreshLimit rate.Limit
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DirectoryService is the Store Directory Client: a process-wide cache of the
// store list with a freshness window and request coalescing.
type DirectoryService struct {
	source    outbound.DirectorySource
	freshness time.Duration
	fallback  *store.Directory
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time

	group   singleflight.Group
	loading atomic.Bool

	mu            sync.RWMutex
	dir           *store.Directory
	fetchedAt     time.Time
	lastErr       error
	usingFallback bool
	generation    uint64

	fetches metric.Int64Counter
}

// NewDirectoryService creates a DirectoryService reading from source.
func NewDirectoryService(source outbound.DirectorySource, opts DirectoryOptions) *DirectoryService {
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultFreshness
	}
	if opts.RefreshLimit == 0 {
		opts.RefreshLimit = rate.Every(10 * time.Second)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &DirectoryService{
		source:    source,
		freshness: opts.Freshness,
		limiter:   rate.NewLimiter(opts.RefreshLimit, 3),
		logger:    opts.Logger,
		now:       time.Now,
	}
	if len(opts.Fallback) > 0 {
		s.fallback = s.build(opts.Fallback, "fallback")
	}

	counter, err := otel.Meter(meterName).Int64Counter("woofront.directory.fetches",
		metric.WithDescription("Store directory fetches by outcome"))
	if err != nil {
		s.logger.Warn("directory fetch counter unavailable", "error", err)
		counter = noop.Int64Counter{}
	}
	s.fetches = counter
	return s
}

// Stores returns the directory. A fresh cache is returned without I/O unless
// force is set. Concurrent callers share one in-flight fetch. The caller's
// context bounds only its own wait, not the shared fetch.
func (s *DirectoryService) Stores(ctx context.Context, force bool) (*store.Directory, error) {
	if !force {
		if d := s.fresh(); d != nil {
			return d, nil
		}
	}

	ch := s.group.DoChan("directory", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*store.Directory), nil
	}
}

// Find looks up slug. On a miss the directory is refreshed once, subject to
// the refresh limiter, before store.ErrStoreNotFound is returned.
func (s *DirectoryService) Find(ctx context.Context, slug string) (store.Store, error) {
	d, err := s.Stores(ctx, false)
	if err != nil {
		return store.Store{}, err
	}
	if st, ok := d.Find(slug); ok {
		return st, nil
	}

	if !s.limiter.Allow() {
		return store.Store{}, fmt.Errorf("%w: %s", store.ErrStoreNotFound, slug)
	}
	s.logger.Debug("store not in cached directory, refreshing", "slug", slug)
	d, err = s.Stores(ctx, true)
	if err != nil {
		return store.Store{}, err
	}
	if st, ok := d.Find(slug); ok {
		return st, nil
	}
	return store.Store{}, fmt.Errorf("%w: %s", store.ErrStoreNotFound, slug)
}

// TryRefresh forces a refresh if the refresh limiter allows it; otherwise it
// behaves like Stores(ctx, false). refreshed reports which happened.
func (s *DirectoryService) TryRefresh(ctx context.Context) (d *store.Directory, refreshed bool, err error) {
	if !s.limiter.Allow() {
		d, err = s.Stores(ctx, false)
		return d, false, err
	}
	d, err = s.Stores(ctx, true)
	return d, true, err
}

// Cached returns the current directory without I/O. It may be stale, a
// fallback, or nil.
func (s *DirectoryService) Cached() *store.Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Status reports cache state.
func (s *DirectoryService) Status() DirectoryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := DirectoryStatus{
		Loading:       s.loading.Load(),
		FetchedAt:     s.fetchedAt,
		UsingFallback: s.usingFallback,
		Stores:        s.dir.Len(),
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Reset clears the cache. A fetch already in flight completes for its
// waiters but is not stored.
func (s *DirectoryService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dir = nil
	s.fetchedAt = time.Time{}
	s.lastErr = nil
	s.usingFallback = false
	s.generation++
	s.logger.Info("store directory cache cleared")
}

// fresh returns the cached directory if it came from discovery within the
// freshness window.
func (s *DirectoryService) fresh() *store.Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dir == nil || s.usingFallback || s.fetchedAt.IsZero() {
		return nil
	}
	if s.now().Sub(s.fetchedAt) >= s.freshness {
		return nil
	}
	return s.dir
}

func (s *DirectoryService) refresh(ctx context.Context) (*store.Directory, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	started := s.now()
	stores, err := s.source.Fetch(ctx)
	var d *store.Directory
	if err == nil {
		d = s.build(stores, "discovery")
		if d.Len() == 0 {
			err = errEmptyDirectory
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		return s.failLocked(ctx, err)
	}

	s.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	if gen != s.generation {
		s.logger.Debug("discarding directory fetched before reset")
		return d, nil
	}
	if !s.fetchedAt.IsZero() && started.Before(s.fetchedAt) {
		// A newer result is already stored.
		return s.dir, nil
	}

	s.dir = d
	s.fetchedAt = s.now()
	s.lastErr = nil
	s.usingFallback = false
	s.logger.Info("store directory refreshed", "stores", d.Len())
	return d, nil
}

// failLocked decides what a failed fetch serves: the last discovered
// directory, then the fallback list, then store.ErrDirectoryUnavailable.
// fetchedAt is left untouched so the next call fetches again.
func (s *DirectoryService) failLocked(ctx context.Context, err error) (*store.Directory, error) {
	s.lastErr = err

	if s.dir != nil && !s.usingFallback {
		s.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "stale")))
		s.logger.Warn("store directory fetch failed, serving stale directory", "error", err)
		return s.dir, nil
	}
	if s.fallback != nil {
		s.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "fallback")))
		s.logger.Warn("store directory fetch failed, serving fallback stores", "error", err, "stores", s.fallback.Len())
		s.dir = s.fallback
		s.usingFallback = true
		return s.fallback, nil
	}

	s.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
	s.logger.Error("store directory fetch failed", "error", err)
	return nil, fmt.Errorf("%w: %v", store.ErrDirectoryUnavailable, err)
}

// build drops stores that cannot be bound and later duplicates of a slug.
func (s *DirectoryService) build(stores []store.Store, origin string) *store.Directory {
	usable := make([]store.Store, 0, len(stores))
	for _, st := range stores {
		if !st.Valid() {
			s.logger.Warn("dropping store without endpoint", "origin", origin, "id", st.ID, "slug", st.Slug)
			continue
		}
		usable = append(usable, st)
	}
	d, dropped := store.NewDirectory(usable)
	for _, st := range dropped {
		s.logger.Warn("dropping store with duplicate slug", "origin", origin, "id", st.ID, "slug", st.Slug)
	}
	return d
}
