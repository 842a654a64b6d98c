package discovery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

const restPayload = `[{"site_id":1,"site_url":"https://lakshmi.cataloghub.in","site_name":"Lakshmi"}]`

const graphqlPayload = `{"data":{"wooMultisiteStores":{"nodes":[
	{"id":"cG9zdDox","name":"Lakshmi","slug":"lakshmi","url":"https://lakshmi.cataloghub.in","graphqlEndpoint":"https://lakshmi.cataloghub.in/graphql"}
]}}}`

func TestHTTPSource_REST(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		_, _ = io.WriteString(w, restPayload)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, ModeREST)
	defer src.Close()

	stores, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(stores) != 1 || stores[0].Slug != "lakshmi" || stores[0].ID != "1" {
		t.Errorf("stores = %+v", stores)
	}
}

func TestHTTPSource_GraphQL(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !strings.Contains(body["query"], "wooMultisiteStores") {
			t.Errorf("query = %q", body["query"])
		}
		_, _ = io.WriteString(w, graphqlPayload)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, ModeGraphQL)
	defer src.Close()

	stores, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(stores) != 1 || stores[0].ID != "cG9zdDox" {
		t.Errorf("stores = %+v", stores)
	}
}

func TestHTTPSource_AutoDetect(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("shape") == "graphql" {
			_, _ = io.WriteString(w, graphqlPayload)
			return
		}
		_, _ = io.WriteString(w, restPayload)
	}))
	defer srv.Close()

	restSrc := NewHTTPSource(srv.URL+"?shape=rest", ModeAuto)
	defer restSrc.Close()
	gqlSrc := NewHTTPSource(srv.URL+"?shape=graphql", ModeAuto)
	defer gqlSrc.Close()

	if stores, err := restSrc.Fetch(context.Background()); err != nil || len(stores) != 1 {
		t.Fatalf("Fetch(rest) = %v, %v", stores, err)
	}
	if stores, err := gqlSrc.Fetch(context.Background()); err != nil || len(stores) != 1 || stores[0].ID != "cG9zdDox" {
		t.Fatalf("Fetch(graphql) = %v, %v", stores, err)
	}
}

func TestHTTPSource_Non2xx(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, ModeREST)
	defer src.Close()

	_, err := src.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("Fetch() error = %v, want status 503", err)
	}
}
