package gql

import (
	"encoding/json"
	"fmt"
)

// TransportError is returned when the endpoint answers with a non-2xx status.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphql transport error: status %d", e.Status)
}

// GraphQLError is returned when the payload carries an errors array.
// Message is the first error's message; Raw holds the full array.
type GraphQLError struct {
	Message string
	Raw     json.RawMessage
}

func (e *GraphQLError) Error() string {
	return "graphql error: " + e.Message
}
