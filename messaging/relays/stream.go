package relays

import (
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrich/engine/library"
)

// Stream is one live subscription as seen by a monitor: a fan-in of every
// configured relay, deduplicated by event id. After Close returns no further
// events are delivered, even if relay goroutines are still winding down.
type Stream struct {
	Events chan nostr.Event
	EOSE   chan struct{}

	done     chan struct{}
	seen     map[library.Sha256]bool
	mu       *deadlock.Mutex
	closed   bool
	caughtUp bool
}

func NewStream(buffer int) *Stream {
	return &Stream{
		Events: make(chan nostr.Event, buffer),
		EOSE:   make(chan struct{}),
		done:   make(chan struct{}),
		seen:   make(map[library.Sha256]bool),
		mu:     &deadlock.Mutex{},
	}
}

// Send delivers an event to the consumer. Returns false if the stream is
// closed or the id was already delivered on this stream.
func (s *Stream) Send(ev nostr.Event) bool {
	s.mu.Lock()
	if s.closed || s.seen[ev.ID] {
		s.mu.Unlock()
		return false
	}
	s.seen[ev.ID] = true
	s.mu.Unlock()
	select {
	case s.Events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// MarkCaughtUp fires the one-time end-of-stored-events signal. Later calls
// (one per relay) are no-ops.
func (s *Stream) MarkCaughtUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.caughtUp {
		s.caughtUp = true
		close(s.EOSE)
	}
}

// Close stops delivery. Safe to call from the shutdown path while a consumer
// callback is mid-flight, and safe to call twice.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

func (s *Stream) Done() <-chan struct{} {
	return s.done
}
