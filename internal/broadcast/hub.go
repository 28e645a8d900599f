// internal/broadcast/hub.go
//
// Coalescing "state changed" notifier.
//
// Every subscription owns a channel of capacity one. Publish does a
// non-blocking send to each of them: if a wake is already pending the send is
// dropped, so any number of publishes between two receives collapse into a
// single wake. Wakes carry no payload; subscribers re-read the latest state
// after waking and therefore never observe an intermediate word.
//
// Publishing with no subscribers is a no-op. Closing the hub closes every
// subscription channel, which subscribers treat as end of stream.

package broadcast

import "sync"

// Hub fans out wake-ups to subscribers.
type Hub struct {
	mu      sync.Mutex // serializes Publish, Subscribe, Close
	subs    map[uint64]chan struct{}
	nextID  uint64
	version uint64 // generation, incremented by every Publish
	closed  bool
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan struct{})}
}

// Subscription is one consumer's handle on the hub.
type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan struct{}
	once sync.Once
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscription{hub: h, id: h.nextID, ch: make(chan struct{}, 1)}
	h.nextID++
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s.id] = s.ch
	return s
}

// Publish wakes every subscriber and returns the new generation.
func (h *Hub) Publish() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return h.version
	}
	h.version++
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
			// wake already pending
		}
	}
	return h.version
}

// Version returns the number of publishes so far.
func (h *Hub) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close tears the hub down. Safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// C returns the wake channel. It is closed when the hub shuts down.
func (s *Subscription) C() <-chan struct{} { return s.ch }

// Close unsubscribes. Safe to call more than once and after Hub.Close.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if ch, ok := h.subs[s.id]; ok {
			delete(h.subs, s.id)
			close(ch)
		}
	})
}
