package session

// Package session holds the client-side session state container: a
// sequence-stamped event hub and a store that consumes it in order.

import (
	"sync"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// EventType identifies a session-change event.
type EventType string

const (
	// EventSignedIn announces a newly established session.
	EventSignedIn EventType = "SIGNED_IN"
	// EventSignedOut announces the end of the session.
	EventSignedOut EventType = "SIGNED_OUT"
	// EventTokenRefreshed announces a rotated token pair for the same user.
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is a session change stamped with a hub-wide monotonic sequence
// number. Seq totally orders events so stale async results can be rejected.
type Event struct {
	Seq     uint64
	Type    EventType
	Session domainauth.Session
}

// subscriberBuffer bounds how far a consumer may lag before events are
// dropped. The store consumes promptly; drops indicate a stuck consumer.
const subscriberBuffer = 64

// Hub fans session-change events out to subscribers, stamping each with a
// monotonically increasing sequence number. Publish order equals delivery
// order per subscriber.
type Hub struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Publish stamps and delivers the event, returning the stamped copy so the
// publisher can apply it synchronously.
func (h *Hub) Publish(t EventType, session domainauth.Session) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	ev := Event{Seq: h.seq, Type: t, Session: session}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is stuck; dropping keeps publishers non-blocking.
		}
	}
	return ev
}

// Subscribe registers a consumer. The returned cancel func closes the
// channel; callers must stop reading after cancel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Seq returns the sequence number of the most recently published event.
func (h *Hub) Seq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}
