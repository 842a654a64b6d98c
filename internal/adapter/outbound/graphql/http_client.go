// Package graphql provides the HTTP adapter for querying a store's GraphQL endpoint.
package graphql

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

const (
	// defaultMaxResponseSize caps how much of a store response is read.
	defaultMaxResponseSize = 10 * 1024 * 1024 // 10MB

	// maxErrorBodySize caps the body kept on a TransportError.
	maxErrorBodySize = 64 * 1024

	tracerName = "github.com/Singh-Rishabh/WooFrontEnd/graphql"
)

// ErrResponseTooLarge is returned when a store answers with more than the
// configured maximum response size.
var ErrResponseTooLarge = errors.New("graphql response too large")

// HTTPClient sends GraphQL queries to one bound endpoint.
// It implements gql.Client.
type HTTPClient struct {
	binding    gql.Binding
	httpClient *http.Client
	tracer     trace.Tracer
	maxBody    int64
}

// Factory builds HTTPClients. It implements gql.ClientFactory.
type Factory struct {
	timeout   time.Duration
	maxBody   int64
	transport func() http.RoundTripper
}

// FactoryOption is a functional option for configuring Factory.
type FactoryOption func(*Factory)

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) FactoryOption {
	return func(f *Factory) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxResponseSize sets how many bytes of a response are accepted.
func WithMaxResponseSize(n int64) FactoryOption {
	return func(f *Factory) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithTransport overrides the round tripper builder. Used by tests.
func WithTransport(fn func() http.RoundTripper) FactoryOption {
	return func(f *Factory) {
		f.transport = fn
	}
}

// NewFactory creates a client factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		timeout:   30 * time.Second,
		maxBody:   defaultMaxResponseSize,
		transport: defaultTransport,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func defaultTransport() http.RoundTripper {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewClient builds a client with its own transport and cookie jar, so no
// connection, cookie or header state carries over from a previous binding.
func (f *Factory) NewClient(b gql.Binding) (gql.Client, error) {
	b = b.Clone()
	hc := &http.Client{
		Timeout:   f.timeout,
		Transport: f.transport(),
	}
	if b.SendsCookies() {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return &HTTPClient{
		binding:    b,
		httpClient: hc,
		tracer:     otel.Tracer(tracerName),
		maxBody:    f.maxBody,
	}, nil
}

// Binding returns the binding the client was built for.
func (c *HTTPClient) Binding() gql.Binding {
	return c.binding.Clone()
}

// Close releases idle connections.
func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Do sends one POST {query, variables} to the bound endpoint.
// Non-2xx answers return *gql.TransportError; a payload with errors returns
// *gql.GraphQLError. There are no retries.
func (c *HTTPClient) Do(ctx context.Context, q gql.Request) (json.RawMessage, error) {
	if c.binding.Placeholder {
		return nil, fmt.Errorf("query on placeholder endpoint: %w", store.ErrNoStoreSelected)
	}

	ctx, span := c.tracer.Start(ctx, "graphql.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.endpoint", c.binding.Endpoint),
			attribute.String("graphql.operation", q.OperationName),
			attribute.String("store.slug", c.binding.StoreSlug),
		))
	defer span.End()

	data, err := c.do(ctx, q, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return data, err
}

func (c *HTTPClient) do(ctx context.Context, q gql.Request, span trace.Span) (json.RawMessage, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.binding.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.binding.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	tooLarge := int64(len(respBody)) > c.maxBody

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBodySize {
			respBody = respBody[:maxErrorBodySize]
		}
		return nil, &gql.TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if tooLarge {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}

	var r response
	if err := json.Unmarshal(respBody, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if gerr := graphQLError(r.Errors); gerr != nil {
		return nil, gerr
	}
	if len(r.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return r.Data, nil
}

// graphQLError returns nil when raw is absent, null or an empty array.
func graphQLError(raw json.RawMessage) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil
	}
	var errs []struct {
		Message string `json:"message"`
	}
	msg := "unknown error"
	if err := json.Unmarshal(raw, &errs); err == nil && len(errs) > 0 && errs[0].Message != "" {
		msg = errs[0].Message
	}
	return &gql.GraphQLError{Message: msg, Raw: raw}
}

// Compile-time interface verification.
var (
	_ gql.Client        = (*HTTPClient)(nil)
	_ gql.ClientFactory = (*Factory)(nil)
)
