package event

import "sync/atomic"

// Subscription represents an active registration on the bus.
type Subscription struct {
	id        uint64
	pattern   Topic
	handler   Handler
	bus       *Bus
	cancelled atomic.Bool
}

// Pattern returns the subscribed topic pattern.
func (s *Subscription) Pattern() Topic {
	return s.pattern
}

// IsActive returns true while the subscription can receive events.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Cancel permanently removes the subscription from the bus.
// Cancel is idempotent.
func (s *Subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	s.bus.remove(s.id)
}
