package store

import (
	"errors"
	"testing"
)

func TestNormalize_REST(t *testing.T) {
	t.Parallel()

	payload := `[
		{"site_id": 1, "site_url": "https://lakshmi.cataloghub.in", "site_name": "Lakshmi", "admin_email": "a@b.c", "language": "en"},
		{"site_id": "2", "site_url": "https://shivshakti.cataloghub.in/", "site_name": "ShivShakti"}
	]`

	stores, variant, err := Normalize([]byte(payload))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if variant != VariantREST {
		t.Errorf("variant = %q, want rest", variant)
	}
	want := []Store{
		{ID: "1", Name: "Lakshmi", Slug: "lakshmi", URL: "https://lakshmi.cataloghub.in", GraphQLEndpoint: "https://lakshmi.cataloghub.in/graphql"},
		{ID: "2", Name: "ShivShakti", Slug: "shivshakti", URL: "https://shivshakti.cataloghub.in", GraphQLEndpoint: "https://shivshakti.cataloghub.in/graphql"},
	}
	if len(stores) != len(want) {
		t.Fatalf("len = %d, want %d", len(stores), len(want))
	}
	for i := range want {
		if stores[i] != want[i] {
			t.Errorf("stores[%d] = %+v, want %+v", i, stores[i], want[i])
		}
	}
}

func TestNormalize_GraphQLShapes(t *testing.T) {
	t.Parallel()

	node := `{"id": 7, "name": "Lakshmi", "slug": "lakshmi", "url": "https://lakshmi.cataloghub.in", "graphqlEndpoint": "https://api.lakshmi.example/graphql"}`
	payloads := map[string]string{
		"envelope": `{"data": {"wooMultisiteStores": {"nodes": [` + node + `]}}}`,
		"field":    `{"wooMultisiteStores": {"nodes": [` + node + `]}}`,
		"nodes":    `{"nodes": [` + node + `]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stores, variant, err := Normalize([]byte(payload))
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if variant != VariantGraphQL {
				t.Errorf("variant = %q, want graphql", variant)
			}
			if len(stores) != 1 {
				t.Fatalf("len = %d, want 1", len(stores))
			}
			s := stores[0]
			if s.ID != "7" || s.Slug != "lakshmi" || s.GraphQLEndpoint != "https://api.lakshmi.example/graphql" {
				t.Errorf("store = %+v", s)
			}
		})
	}
}

func TestNormalize_DerivesMissingFields(t *testing.T) {
	t.Parallel()

	stores, err := NormalizeREST([]byte(`[{"url": "not a url"}, {"slug": "Bad Slug", "url": "https://good.example.com"}]`))
	if err != nil {
		t.Fatalf("NormalizeREST() error: %v", err)
	}
	if stores[0].Slug != "not-a-url" {
		t.Errorf("stores[0].Slug = %q, want not-a-url", stores[0].Slug)
	}
	if stores[0].ID != "1" || stores[0].Name != "not-a-url" {
		t.Errorf("stores[0] = %+v, want positional id and slug name", stores[0])
	}
	if stores[1].Slug != "good" {
		t.Errorf("stores[1].Slug = %q, want good", stores[1].Slug)
	}
}

func TestNormalize_PositionalSlug(t *testing.T) {
	t.Parallel()

	stores, err := NormalizeREST([]byte(`[{"name": "a", "url": "https://a.example"}, {"name": "nameless"}]`))
	if err != nil {
		t.Fatalf("NormalizeREST() error: %v", err)
	}
	if stores[1].Slug != "store-2" {
		t.Errorf("Slug = %q, want store-2", stores[1].Slug)
	}
	if stores[1].Valid() {
		t.Error("store without endpoint should not be Valid()")
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "null", `"text"`, `{"other": 1}`, `[1, 2]`} {
		if _, _, err := Normalize([]byte(payload)); !errors.Is(err, ErrUnrecognizedPayload) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnrecognizedPayload", payload, err)
		}
	}

	_, err := NormalizeGraphQL([]byte(`{"errors": [{"message": "boom"}]}`))
	if err == nil || err.Error() != "directory query failed: boom" {
		t.Errorf("NormalizeGraphQL(errors) = %v", err)
	}
}
