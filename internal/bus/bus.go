// Package bus implements the in-process broadcast channel that fans
// note change events out to live subscriber sessions.
//
// Publish never blocks: each subscriber owns a private bounded lane, and
// a lane that overflows drops its oldest events and records the loss.
// The loss is surfaced to that subscriber alone as a LaggedError on its
// next read; the publisher and other subscribers are unaffected. With
// zero subscribers a published event is silently discarded.
//
// The bus is constructed once at service startup and handed by reference
// to every component that needs it; there is no package-level instance.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alderlake/notehub/internal/model"
)

// DefaultCapacity is the per-subscriber lane capacity used when the
// configured capacity is zero or negative.
const DefaultCapacity = 512

// ErrClosed is returned by Subscription.Next after the bus is torn down
// and the lane has been drained.
var ErrClosed = errors.New("event bus closed")

// LaggedError signals that a subscriber's lane overflowed and Dropped
// events were lost since its last successful read. It is non-fatal:
// the subscriber keeps its lane and continues reading, and is expected
// to reconcile missed state via a full list fetch.
type LaggedError struct {
	Dropped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("subscriber lagged: %d events dropped", e.Dropped)
}

// Bus is a bounded multi-subscriber broadcast channel.
type Bus struct {
	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	capacity int
	closed   bool
}

// New creates a bus whose subscriber lanes hold at most capacity
// pending events each.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

// Publish enqueues the event into every live subscriber lane. It never
// blocks and never fails: a full lane sheds its oldest event, and with
// no subscribers the event is discarded.
func (b *Bus) Publish(ev model.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for sub := range b.subs {
		sub.enqueue(ev)
	}
}

// Subscribe registers a new independent consumption point. Events
// published before Subscribe returns are never delivered to it.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus:    b,
		notify: make(chan struct{}, 1),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.closed = true
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close tears down the bus. Blocked readers drain any remaining lane
// contents and then observe ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		sub.markClosed()
	}
}

// Subscription is one subscriber's private cursor into the bus.
// It is owned by a single consuming goroutine.
type Subscription struct {
	bus *Bus

	mu      sync.Mutex
	queue   []model.ChangeEvent
	dropped uint64
	closed  bool

	// notify carries at most one pending wakeup; Next re-checks state
	// after every wakeup, so a coalesced signal is sufficient.
	notify chan struct{}
}

// enqueue appends the event to the lane, shedding the oldest entry when
// the lane is at capacity. Called with the bus lock held, which is what
// preserves cross-subscriber publish order.
func (s *Subscription) enqueue(ev model.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.queue) >= s.bus.capacity {
		s.queue = s.queue[1:]
		s.dropped++
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the subscriber's loss count
// advanced, the bus closed, or ctx is done. A *LaggedError is reported
// before any events that survived the overflow, so the loss is never
// silently skipped.
func (s *Subscription) Next(ctx context.Context) (model.ChangeEvent, error) {
	for {
		s.mu.Lock()
		if s.dropped > 0 {
			n := s.dropped
			s.dropped = 0
			s.mu.Unlock()
			return model.ChangeEvent{}, &LaggedError{Dropped: n}
		}
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return model.ChangeEvent{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return model.ChangeEvent{}, ctx.Err()
		case <-s.notify:
		}
	}
}

// Close releases the subscription's lane and deregisters it from the
// bus. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}
