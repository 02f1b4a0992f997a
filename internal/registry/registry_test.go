package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRegisterAndCount(t *testing.T) {
	r := New()
	if got := r.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0", got)
	}

	r.Register("sub-a", KindWebsocket, "127.0.0.1:5000")
	r.Register("sub-b", KindSSE, "127.0.0.1:5001")

	if got := r.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestRegister_EmptyIDIgnored(t *testing.T) {
	r := New()
	r.Register("", KindWebsocket, "")
	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0 after empty-id register", got)
	}
}

func TestUnregister(t *testing.T) {
	r := New()
	r.Register("sub-a", KindWebsocket, "")
	r.Unregister("sub-a")
	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}

	// Unknown ids are a no-op.
	r.Unregister("sub-missing")
}

func TestSnapshot_SortedNewestFirst(t *testing.T) {
	r := New()
	r.Register("sub-old", KindWebsocket, "")
	time.Sleep(5 * time.Millisecond)
	r.Register("sub-new", KindSSE, "")

	entries := r.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("Snapshot() returned %d entries, want 2", len(entries))
	}
	if entries[0].SessionID != "sub-new" || entries[1].SessionID != "sub-old" {
		t.Errorf("Snapshot() order = [%s, %s], want newest first",
			entries[0].SessionID, entries[1].SessionID)
	}
	if entries[0].Kind != KindSSE {
		t.Errorf("entry kind = %q, want %q", entries[0].Kind, KindSSE)
	}
}

func TestRecordCounters(t *testing.T) {
	r := New()
	r.Register("sub-a", KindWebsocket, "")
	r.RecordSent("sub-a", 5)
	r.RecordSent("sub-a", 3)
	r.RecordDropped("sub-a", 2)

	entries := r.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("Snapshot() returned %d entries, want 1", len(entries))
	}
	if entries[0].EventsSent != 8 {
		t.Errorf("EventsSent = %d, want 8", entries[0].EventsSent)
	}
	if entries[0].EventsDropped != 2 {
		t.Errorf("EventsDropped = %d, want 2", entries[0].EventsDropped)
	}

	// Counters for unknown sessions are ignored.
	r.RecordSent("sub-missing", 1)
	r.RecordDropped("sub-missing", 1)
}

func TestStats_LifetimeTotalsSurviveDisconnect(t *testing.T) {
	r := New()
	r.Register("sub-a", KindWebsocket, "")
	r.RecordSent("sub-a", 10)
	r.RecordDropped("sub-a", 1)
	r.Unregister("sub-a")

	r.Register("sub-b", KindSSE, "")
	r.RecordSent("sub-b", 4)

	stats := r.Stats()
	if stats.ActiveSessions != 1 {
		t.Errorf("ActiveSessions = %d, want 1", stats.ActiveSessions)
	}
	if stats.LifetimeSessions != 2 {
		t.Errorf("LifetimeSessions = %d, want 2", stats.LifetimeSessions)
	}
	if stats.TotalEventsSent != 14 {
		t.Errorf("TotalEventsSent = %d, want 14", stats.TotalEventsSent)
	}
	if stats.TotalEventsDropped != 1 {
		t.Errorf("TotalEventsDropped = %d, want 1", stats.TotalEventsDropped)
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("sub-%d", n)
			r.Register(id, KindWebsocket, "")
			for j := 0; j < 100; j++ {
				r.RecordSent(id, 1)
			}
			r.Unregister(id)
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Snapshot()
			r.Stats()
			r.Count()
		}()
	}
	wg.Wait()

	stats := r.Stats()
	if stats.ActiveSessions != 0 {
		t.Errorf("ActiveSessions = %d, want 0", stats.ActiveSessions)
	}
	if stats.TotalEventsSent != 1000 {
		t.Errorf("TotalEventsSent = %d, want 1000", stats.TotalEventsSent)
	}
}
