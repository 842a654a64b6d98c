package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Variant names an upstream payload shape the directory accepts.
type Variant string

const (
	// VariantREST is a flat JSON array of site rows.
	VariantREST Variant = "rest"
	// VariantGraphQL is a "nodes" connection, optionally wrapped in
	// data.wooMultisiteStores.
	VariantGraphQL Variant = "graphql"
)

// ErrUnrecognizedPayload is returned when a payload matches no variant.
var ErrUnrecognizedPayload = errors.New("unrecognized store directory payload")

// rawStore accepts both the multisite REST row (site_*) and the GraphQL node
// field names.
type rawStore struct {
	ID              flexString `json:"id"`
	SiteID          flexString `json:"site_id"`
	Name            string     `json:"name"`
	SiteName        string     `json:"site_name"`
	Slug            string     `json:"slug"`
	URL             string     `json:"url"`
	SiteURL         string     `json:"site_url"`
	GraphQLEndpoint string     `json:"graphqlEndpoint"`
	Description     string     `json:"description"`
	Thumbnail       string     `json:"thumbnail"`
}

type nodesPayload struct {
	Nodes []rawStore `json:"nodes"`
}

type graphqlPayload struct {
	Data *struct {
		WooMultisiteStores *nodesPayload `json:"wooMultisiteStores"`
	} `json:"data"`
	WooMultisiteStores *nodesPayload `json:"wooMultisiteStores"`
	Nodes              []rawStore    `json:"nodes"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// Normalize detects the payload variant and converts it to stores in
// upstream order.
func Normalize(payload []byte) ([]Store, Variant, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, "", ErrUnrecognizedPayload
	}
	switch trimmed[0] {
	case '[':
		stores, err := NormalizeREST(trimmed)
		return stores, VariantREST, err
	case '{':
		stores, err := NormalizeGraphQL(trimmed)
		return stores, VariantGraphQL, err
	default:
		return nil, "", ErrUnrecognizedPayload
	}
}

// NormalizeREST converts a flat array of site rows.
func NormalizeREST(payload []byte) ([]Store, error) {
	var rows []rawStore
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return convert(rows), nil
}

// NormalizeGraphQL converts a nodes connection. GraphQL errors in the
// envelope are reported as an error.
func NormalizeGraphQL(payload []byte) ([]Store, error) {
	var env struct {
		graphqlPayload
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	if len(env.Errors) > 0 {
		return nil, fmt.Errorf("directory query failed: %s", env.Errors[0].Message)
	}

	switch {
	case env.Data != nil && env.Data.WooMultisiteStores != nil:
		return convert(env.Data.WooMultisiteStores.Nodes), nil
	case env.WooMultisiteStores != nil:
		return convert(env.WooMultisiteStores.Nodes), nil
	case env.Nodes != nil:
		return convert(env.Nodes), nil
	default:
		return nil, ErrUnrecognizedPayload
	}
}

func convert(rows []rawStore) []Store {
	out := make([]Store, 0, len(rows))
	for i, r := range rows {
		out = append(out, r.toStore(i+1))
	}
	return out
}

func (r rawStore) toStore(position int) Store {
	s := Store{
		ID:              string(r.ID),
		Name:            r.Name,
		URL:             strings.TrimRight(r.URL, "/"),
		GraphQLEndpoint: r.GraphQLEndpoint,
		Description:     r.Description,
		Thumbnail:       r.Thumbnail,
	}
	if s.ID == "" {
		s.ID = string(r.SiteID)
	}
	if s.ID == "" {
		s.ID = strconv.Itoa(position)
	}
	if s.Name == "" {
		s.Name = r.SiteName
	}
	if s.URL == "" {
		s.URL = strings.TrimRight(r.SiteURL, "/")
	}
	s.Slug = DeriveSlug(r.Slug, s.URL, position)
	if s.Name == "" {
		s.Name = s.Slug
	}
	if s.GraphQLEndpoint == "" && s.URL != "" {
		s.GraphQLEndpoint = EndpointFor(s.URL)
	}
	return s
}
