package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// handleEvents streams the session's binding changes over a websocket. The
// first message describes the current binding so a client never starts
// from a stale view.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	scope := scopeOf(r)
	logger := LoggerFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	events, cancel := h.events.Subscribe(scope.ID())
	defer cancel()
	if h.metrics != nil {
		h.metrics.EventSubscribers.Inc()
		defer h.metrics.EventSubscribers.Dec()
	}

	readerDone := make(chan struct{})
	defer func() {
		conn.Close()
		<-readerDone
	}()

	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		// Clients only send control frames; read until the connection ends.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket closed", "error", err)
				}
				return
			}
		}
	}()

	if err := writeEvent(conn, currentEvent(scope)); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func currentEvent(scope *service.Scope) service.Event {
	b, ok := scope.Client.Current()
	if !ok {
		return service.Event{Type: service.EventClientReset, At: time.Now().UTC()}
	}
	return service.Event{
		Type:      service.EventEndpointChanged,
		Endpoint:  b.Endpoint,
		StoreSlug: b.StoreSlug,
		At:        time.Now().UTC(),
	}
}

func writeEvent(conn *websocket.Conn, ev service.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
