package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

func newBinding(endpoint string) gql.Binding {
	return gql.Binding{
		Endpoint:       endpoint,
		Headers:        map[string]string{"Origin": "http://localhost:3000", "X-Store": "a"},
		CORSMode:       "cors",
		CredentialMode: gql.CredentialsInclude,
		StoreSlug:      "a",
	}
}

func mustClient(t *testing.T, b gql.Binding) gql.Client {
	t.Helper()
	c, err := NewFactory(WithTimeout(5 * time.Second)).NewClient(b)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestHTTPClient_Do_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	var gotBody gql.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if o := r.Header.Get("Origin"); o != "http://localhost:3000" {
			t.Errorf("Origin = %q", o)
		}
		if h := r.Header.Get("X-Store"); h != "a" {
			t.Errorf("X-Store = %q", h)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"data":{"products":{"nodes":[]}}}`)
	}))
	defer srv.Close()

	c := mustClient(t, newBinding(srv.URL))
	data, err := c.Do(context.Background(), gql.Request{
		Query:     "query Products($first:Int){products(first:$first){nodes{id}}}",
		Variables: map[string]any{"first": 2},
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if string(data) != `{"products":{"nodes":[]}}` {
		t.Errorf("data = %s", data)
	}
	if gotBody.Variables["first"] != float64(2) {
		t.Errorf("variables = %v", gotBody.Variables)
	}
	c.Close()
}

func TestHTTPClient_Do_TransportError(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	c := mustClient(t, newBinding(srv.URL))
	_, err := c.Do(context.Background(), gql.Request{Query: "{x}"})

	var te *gql.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Do() error = %v, want *gql.TransportError", err)
	}
	if te.Status != http.StatusBadGateway || te.Body != "upstream down" {
		t.Errorf("TransportError = %+v", te)
	}
	c.Close()
}

func TestHTTPClient_Do_ResponseTooLarge(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"shop":"a very long shop name"}}`)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		max     int64
		wantErr bool
	}{
		{"over limit", 16, true},
		{"within limit", 1024, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFactory(WithMaxResponseSize(tt.max)).NewClient(newBinding(srv.URL))
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()

			_, err = c.Do(context.Background(), gql.Request{Query: "{shop}"})
			if got := errors.Is(err, ErrResponseTooLarge); got != tt.wantErr {
				t.Errorf("Do() error = %v, want ErrResponseTooLarge = %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
		})
	}
}

func TestHTTPClient_Do_GraphQLError(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null,"errors":[{"message":"Cannot query field \"nope\""},{"message":"second"}]}`)
	}))
	defer srv.Close()

	c := mustClient(t, newBinding(srv.URL))
	_, err := c.Do(context.Background(), gql.Request{Query: "{nope}"})

	var ge *gql.GraphQLError
	if !errors.As(err, &ge) {
		t.Fatalf("Do() error = %v, want *gql.GraphQLError", err)
	}
	if ge.Message != `Cannot query field "nope"` {
		t.Errorf("Message = %q", ge.Message)
	}
	var raw []map[string]any
	if err := json.Unmarshal(ge.Raw, &raw); err != nil || len(raw) != 2 {
		t.Errorf("Raw = %s", ge.Raw)
	}
	c.Close()
}

func TestHTTPClient_Do_EmptyErrorsIsSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"ok":true},"errors":[]}`)
	}))
	defer srv.Close()

	c := mustClient(t, newBinding(srv.URL))
	if _, err := c.Do(context.Background(), gql.Request{Query: "{ok}"}); err != nil {
		t.Errorf("Do() error: %v", err)
	}
	c.Close()
}

func TestHTTPClient_Do_PlaceholderRefuses(t *testing.T) {
	t.Parallel()

	b := newBinding("https://placeholder.invalid/graphql")
	b.Placeholder = true
	c := mustClient(t, b)

	_, err := c.Do(context.Background(), gql.Request{Query: "{x}"})
	if !errors.Is(err, store.ErrNoStoreSelected) {
		t.Errorf("Do() error = %v, want ErrNoStoreSelected", err)
	}
}

func TestFactory_FreshCookieJarPerClient(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("woocommerce-session"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "woocommerce-session", Value: "tenant-a", Path: "/"})
			_, _ = io.WriteString(w, `{"data":{"cookie":false}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"cookie":true}}`)
	}))
	defer srv.Close()

	f := NewFactory()
	first, _ := f.NewClient(newBinding(srv.URL))
	second, _ := f.NewClient(newBinding(srv.URL))
	defer first.Close()
	defer second.Close()

	ctx := context.Background()
	if data, _ := first.Do(ctx, gql.Request{Query: "{a}"}); string(data) != `{"cookie":false}` {
		t.Fatalf("first call data = %s", data)
	}
	if data, _ := first.Do(ctx, gql.Request{Query: "{a}"}); string(data) != `{"cookie":true}` {
		t.Errorf("same client should resend its cookie, got %s", data)
	}
	if data, _ := second.Do(ctx, gql.Request{Query: "{a}"}); string(data) != `{"cookie":false}` {
		t.Errorf("new client must not see the previous client's cookie, got %s", data)
	}
}
