// Package http serves the storefront gateway over HTTP.
//
// Every request is tied to a browser session through the woofront_session
// cookie. Page requests run the server resolution on a fresh render scope
// and answer with a render context; API requests act on the session's
// long-lived scope.
//
// # Usage
//
//	transport := http.NewHTTPTransport(handler,
//	    http.WithAddr("127.0.0.1:3000"),
//	    http.WithAllowedOrigins([]string{"http://localhost:3000"}),
//	    http.WithLogger(logger),
//	)
//	err := transport.Start(ctx)
//
// # Endpoints
//
//	GET    /api/stores             - store directory (?force=true refreshes, throttled)
//	GET    /api/session            - selection snapshot and active binding
//	POST   /api/session/select     - select a store by slug
//	DELETE /api/session/select     - reset the selection
//	PUT    /api/session/pin        - pin a manual GraphQL endpoint
//	DELETE /api/session/pin        - remove the pinned endpoint
//	POST   /api/session/navigate   - client resolution plus route guard
//	POST   /api/session/reload     - recreate the query client
//	GET    /api/session/events     - websocket stream of binding changes
//	POST   /graphql                - query through the session's binding
//	GET    /health                 - component health
//	GET    /metrics                - Prometheus metrics
//
// Any other GET is a page request.
//
// # Cookies
//
//	woofront_session  - session id, HttpOnly
//	selectedStore     - URL-encoded JSON store record, readable by scripts
package http
