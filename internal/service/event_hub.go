package service

import (
	"sync"
	"time"
)

// EventType names a tenant-change notification.
type EventType string

const (
	// EventEndpointChanged is published when a scope is bound to a new endpoint.
	EventEndpointChanged EventType = "endpoint-changed"
	// EventClientReset is published when a scope's binding is dropped.
	EventClientReset EventType = "client-reset"
	// EventClientReloaded is published when the client is recreated for the
	// same binding.
	EventClientReloaded EventType = "client-reloaded"
)

// Event is delivered to every subscriber of a session.
type Event struct {
	Type      EventType `json:"type"`
	Endpoint  string    `json:"endpoint,omitempty"`
	StoreSlug string    `json:"storeSlug,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher is the narrow interface the rebinder publishes through.
type EventPublisher interface {
	Publish(sessionID string, ev Event)
}

const defaultSubscriberBuffer = 16

type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// EventHub fans out events to per-session subscribers. Slow subscribers lose
// events rather than block publishers.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	buffer int
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
	}
}

// Subscribe registers a listener for sessionID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (h *EventHub) Subscribe(sessionID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers ev to the session's subscribers without blocking.
func (h *EventHub) Publish(sessionID string, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[sessionID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of listeners for sessionID.
func (h *EventHub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, id)
	}
}

// Compile-time interface verification.
var _ EventPublisher = (*EventHub)(nil)
