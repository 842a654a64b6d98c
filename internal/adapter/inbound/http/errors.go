package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// errorResponse is the JSON body of every error answer.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Status and Body are set for upstream transport failures.
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	// Errors carries the upstream GraphQL errors verbatim.
	Errors json.RawMessage `json:"errors,omitempty"`
}

// statusFor maps an error to its HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var transportErr *gql.TransportError
	var graphqlErr *gql.GraphQLError
	var reqErr *requestError

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "upstream_transport"
	case errors.As(err, &graphqlErr):
		return http.StatusBadRequest, "upstream_graphql"
	case errors.Is(err, store.ErrNoStoreSelected):
		return http.StatusNotFound, "no_store_selected"
	case errors.Is(err, store.ErrStoreNotFound):
		return http.StatusNotFound, "store_not_found"
	case errors.Is(err, store.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable, "directory_unavailable"
	case errors.Is(err, store.ErrPersistenceCorrupt):
		return http.StatusBadRequest, "persistence_corrupt"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError writes err as a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: code}

	var transportErr *gql.TransportError
	var graphqlErr *gql.GraphQLError
	switch {
	case errors.As(err, &transportErr):
		resp.Status = transportErr.Status
		resp.Body = transportErr.Body
	case errors.As(err, &graphqlErr):
		resp.Error = graphqlErr.Message
		resp.Errors = graphqlErr.Raw
	}

	logger := LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, r, status, resp)
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		LoggerFromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// readJSON decodes the request body into v, rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
