// Package discovery fetches the multisite store list over HTTP.
package discovery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/port/outbound"
)

// Mode selects the request and payload shape.
type Mode string

const (
	// ModeREST issues GET and expects a flat JSON array of site rows.
	ModeREST Mode = "rest"
	// ModeGraphQL POSTs the GetAllStores query and expects a nodes connection.
	ModeGraphQL Mode = "graphql"
	// ModeAuto issues GET and detects the shape from the payload.
	ModeAuto Mode = "auto"
)

// GetAllStoresQuery lists every store of the multisite network.
const GetAllStoresQuery = `query GetAllStores {
  wooMultisiteStores {
    nodes {
      id
      name
      slug
      url
      graphqlEndpoint
    }
  }
}`

// maxDirectorySize caps the discovery response body.
const maxDirectorySize = 4 * 1024 * 1024 // 4MB

// HTTPSource fetches the store directory from a discovery endpoint.
// It implements outbound.DirectorySource.
type HTTPSource struct {
	url        string
	mode       Mode
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option is a functional option for configuring HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		s.httpClient = client
	}
}

// WithTimeout sets the request timeout for the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		if s.httpClient != nil && d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// NewHTTPSource creates a source for the given discovery URL.
func NewHTTPSource(url string, mode Mode, opts ...Option) *HTTPSource {
	s := &HTTPSource{
		url:  url,
		mode: mode,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:    2,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		logger: slog.Default(),
		tracer: otel.Tracer("github.com/Singh-Rishabh/WooFrontEnd/discovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch performs one discovery request.
func (s *HTTPSource) Fetch(ctx context.Context) ([]store.Store, error) {
	ctx, span := s.tracer.Start(ctx, "directory.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("directory.url", s.url),
			attribute.String("directory.mode", string(s.mode)),
		))
	defer span.End()

	stores, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("directory.stores", len(stores)))
	return stores, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]store.Store, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectorySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discovery http status %d", resp.StatusCode)
	}

	switch s.mode {
	case ModeREST:
		return store.NormalizeREST(body)
	case ModeGraphQL:
		return store.NormalizeGraphQL(body)
	default:
		stores, variant, err := store.Normalize(body)
		if err == nil {
			s.logger.Debug("directory payload detected", "variant", variant, "stores", len(stores))
		}
		return stores, err
	}
}

func (s *HTTPSource) newRequest(ctx context.Context) (*http.Request, error) {
	if s.mode != ModeGraphQL {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	body, err := json.Marshal(map[string]string{
		"query":         GetAllStoresQuery,
		"operationName": "GetAllStores",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() {
	s.httpClient.CloseIdleConnections()
}

// Compile-time interface verification.
var _ outbound.DirectorySource = (*HTTPSource)(nil)
