package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alderlake/notehub/internal/model"
)

func createdEvent(id int64) model.ChangeEvent {
	return model.CreatedEvent(&model.Note{ID: id, Title: "t", Version: 1})
}

func TestPublish_NoSubscribers(t *testing.T) {
	b := New(4)
	defer b.Close()

	// Publishing far beyond capacity with nobody listening must neither
	// block nor error.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish(createdEvent(int64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked with zero subscribers")
	}
}

func TestSubscribe_NoReplay(t *testing.T) {
	b := New(4)
	defer b.Close()

	b.Publish(createdEvent(1))

	sub := b.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := sub.Next(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next after pre-subscribe publish = %v, want deadline exceeded", err)
	}
}

func TestNext_DeliversInOrder(t *testing.T) {
	b := New(16)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	for i := int64(1); i <= 5; i++ {
		b.Publish(createdEvent(i))
	}

	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		ev, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next(%d): %v", i, err)
		}
		if ev.NoteID != i {
			t.Errorf("event %d has note id %d, want %d", i, ev.NoteID, i)
		}
	}
}

func TestNext_BlocksUntilPublish(t *testing.T) {
	b := New(4)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	got := make(chan model.ChangeEvent, 1)
	go func() {
		ev, err := sub.Next(context.Background())
		if err != nil {
			return
		}
		got <- ev
	}()

	time.Sleep(20 * time.Millisecond)
	b.Publish(createdEvent(7))

	select {
	case ev := <-got:
		if ev.NoteID != 7 {
			t.Errorf("got note id %d, want 7", ev.NoteID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake after Publish")
	}
}

func TestSlowSubscriber_Lags(t *testing.T) {
	const capacity = 8
	b := New(capacity)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	const published = 20
	for i := int64(1); i <= published; i++ {
		b.Publish(createdEvent(i))
	}

	ctx := context.Background()

	// The overflow must be signaled before any surviving events.
	_, err := sub.Next(ctx)
	var lag *LaggedError
	if !errors.As(err, &lag) {
		t.Fatalf("first Next = %v, want *LaggedError", err)
	}
	if lag.Dropped != published-capacity {
		t.Errorf("lag dropped = %d, want %d", lag.Dropped, published-capacity)
	}

	// Surviving events are the newest `capacity` ones, still in order.
	for i := int64(published - capacity + 1); i <= published; i++ {
		ev, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next after lag: %v", err)
		}
		if ev.NoteID != i {
			t.Errorf("surviving event has note id %d, want %d", ev.NoteID, i)
		}
	}
}

func TestSlowSubscriber_DoesNotAffectOthers(t *testing.T) {
	const capacity = 4
	b := New(capacity)
	defer b.Close()

	slow := b.Subscribe()
	defer slow.Close()
	fast := b.Subscribe()
	defer fast.Close()

	ctx := context.Background()
	for i := int64(1); i <= 10; i++ {
		b.Publish(createdEvent(i))

		// The fast subscriber keeps up and must see every event.
		ev, err := fast.Next(ctx)
		if err != nil {
			t.Fatalf("fast Next: %v", err)
		}
		if ev.NoteID != i {
			t.Errorf("fast subscriber saw id %d, want %d", ev.NoteID, i)
		}
	}

	// The slow subscriber lagged but was signaled.
	_, err := slow.Next(ctx)
	var lag *LaggedError
	if !errors.As(err, &lag) {
		t.Fatalf("slow Next = %v, want *LaggedError", err)
	}
	if lag.Dropped == 0 {
		t.Error("lag dropped = 0, want positive count")
	}
}

func TestClose_WakesBlockedSubscriber(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()

	errCh := make(chan error, 1)
	go func() {
		_, err := sub.Next(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	b.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Next after Close = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake after bus Close")
	}
}

func TestClose_DrainsLaneFirst(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()

	b.Publish(createdEvent(1))
	b.Close()

	ctx := context.Background()
	ev, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next should deliver buffered event before ErrClosed, got %v", err)
	}
	if ev.NoteID != 1 {
		t.Errorf("buffered event id = %d, want 1", ev.NoteID)
	}

	_, err = sub.Next(ctx)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Next after drain = %v, want ErrClosed", err)
	}
}

func TestNext_ContextCancel(t *testing.T) {
	b := New(4)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := sub.Next(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Next after cancel = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake after context cancel")
	}
}

func TestSubscriptionClose_Deregisters(t *testing.T) {
	b := New(4)
	defer b.Close()

	sub := b.Subscribe()
	if got := b.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	sub.Close()
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount after Close = %d, want 0", got)
	}

	// Publishing after the subscriber leaves must not panic or block.
	b.Publish(createdEvent(1))
}

func TestConcurrentPublishers_PerIDOrder(t *testing.T) {
	b := New(1024)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	// One goroutine per note id publishes strictly increasing versions;
	// the subscriber must observe versions in order for each id.
	const perID = 50
	done := make(chan struct{})
	for id := int64(1); id <= 3; id++ {
		go func(id int64) {
			for v := int64(1); v <= perID; v++ {
				b.Publish(model.UpdatedEvent(&model.Delta{ID: id, Version: v}))
			}
			done <- struct{}{}
		}(id)
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	lastVersion := make(map[int64]int64)
	ctx := context.Background()
	for i := 0; i < 3*perID; i++ {
		ev, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ev.Delta.Version <= lastVersion[ev.NoteID] {
			t.Fatalf("note %d: version %d observed after %d", ev.NoteID, ev.Delta.Version, lastVersion[ev.NoteID])
		}
		lastVersion[ev.NoteID] = ev.Delta.Version
	}
}
