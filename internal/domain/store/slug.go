package store

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonAlnumRunRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsValidSlug reports whether slug is path-safe: lowercase alphanumeric
// segments separated by single hyphens.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// SlugFromURL derives a path-safe slug from a site URL. It takes the sanitized
// first label of the hostname, or the whole sanitized hostname when that label
// is empty; when the URL has no parseable host it falls back to a sanitized
// form of the whole input. It never fails but may return "".
func SlugFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil && u.Hostname() != "" {
		host := u.Hostname()
		label, _, _ := strings.Cut(host, ".")
		if s := sanitize(label); s != "" {
			return s
		}
		return sanitize(host)
	}
	return sanitize(raw)
}

// DeriveSlug picks the slug for the store at the 1-based position in upstream
// order. A valid explicit slug wins, then the URL-derived slug, then
// "store-<position>". The result is always non-empty and valid.
func DeriveSlug(explicit, siteURL string, position int) string {
	if IsValidSlug(explicit) {
		return explicit
	}
	if s := SlugFromURL(siteURL); s != "" {
		return s
	}
	return "store-" + strconv.Itoa(position)
}

func sanitize(s string) string {
	s = nonAlnumRunRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
