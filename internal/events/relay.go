package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/alderlake/notehub/internal/bus"
)

// Relay mirrors bus events onto an external Publisher (NATS), so other
// processes can observe note changes without holding a connection to
// this service. The relay is itself a lag-tolerant bus subscriber:
// if the broker is slow the relay lane overflows and the loss is
// logged, never pushed back on the mutation path.
type Relay struct {
	bus       *bus.Bus
	publisher Publisher

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelay creates a relay draining the given bus into the publisher.
func NewRelay(b *bus.Bus, p Publisher) *Relay {
	return &Relay{bus: b, publisher: p}
}

// Start subscribes to the bus and begins forwarding in a background
// goroutine. Call Stop to shut down.
func (r *Relay) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	sub := r.bus.Subscribe()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer sub.Close()
		r.run(ctx, sub)
	}()
}

// Stop cancels the relay and waits for the forwarding loop to exit.
func (r *Relay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Relay) run(ctx context.Context, sub *bus.Subscription) {
	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			var lag *bus.LaggedError
			switch {
			case errors.As(err, &lag):
				slog.Warn("event relay lagged", "dropped", lag.Dropped)
				continue
			case errors.Is(err, bus.ErrClosed), errors.Is(err, context.Canceled):
				return
			default:
				slog.Warn("event relay read failed", "error", err)
				return
			}
		}

		topic := TopicFor(ev.Kind)
		if topic == "" {
			continue
		}
		if err := r.publisher.Publish(ctx, topic, PayloadFor(ev)); err != nil {
			slog.Warn("event relay publish failed", "topic", topic, "note_id", ev.NoteID, "error", err)
		}
	}
}
