package store

import "testing"

func TestSlugFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://lakshmi.cataloghub.in", "lakshmi"},
		{"https://Lakshmi.CatalogHub.in/shop/", "lakshmi"},
		{"http://localhost:8080", "localhost"},
		{"https://my_shop.example.com", "my-shop"},
		{"http://[::1]:8080", "1"},
		{"https://.example.com", "example-com"},
		{"https://_.example.com", "example-com"},
		{"lakshmi.cataloghub.in", "lakshmi-cataloghub-in"},
		{"  My Store!! ", "my-store"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := SlugFromURL(tt.in)
		if got != tt.want {
			t.Errorf("SlugFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got != "" && !IsValidSlug(got) {
			t.Errorf("SlugFromURL(%q) = %q is not a valid slug", tt.in, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	t.Parallel()

	valid := []string{"a", "lakshmi", "shiv-shakti", "store-12"}
	invalid := []string{"", "-a", "a-", "a--b", "A", "a_b", "a b", "a/b"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestDeriveSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		explicit string
		url      string
		pos      int
		want     string
	}{
		{"explicit wins", "custom", "https://lakshmi.cataloghub.in", 1, "custom"},
		{"invalid explicit falls to url", "Not Valid", "https://lakshmi.cataloghub.in", 1, "lakshmi"},
		{"underscore label sanitized", "", "https://my_shop.example.com", 2, "my-shop"},
		{"no url uses position", "", "", 3, "store-3"},
		{"garbage url uses position", "", "!!!", 4, "store-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DeriveSlug(tt.explicit, tt.url, tt.pos)
			if got != tt.want {
				t.Errorf("DeriveSlug() = %q, want %q", got, tt.want)
			}
			if !IsValidSlug(got) {
				t.Errorf("DeriveSlug() = %q is not a valid slug", got)
			}
		})
	}
}
