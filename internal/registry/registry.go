// Package registry tracks live subscriber sessions for the stats surface.
//
// The Registry maintains an in-memory map of connected push sessions
// (websocket and SSE), updated directly by the transport handlers as
// sessions attach, deliver events, and disconnect. Sessions that
// disconnect cleanly remove themselves; a lifetime tally of delivered
// and dropped events survives them so GET /v1/stats reflects totals
// since process start, not just the current connections.
package registry

import (
	"sort"
	"sync"
	"time"
)

// Kind distinguishes the transport a session is attached over.
type Kind string

const (
	KindWebsocket Kind = "ws"
	KindSSE       Kind = "sse"
)

// Entry is a snapshot of a single live session's state.
type Entry struct {
	SessionID     string    `json:"session_id"`
	Kind          Kind      `json:"kind"`
	RemoteAddr    string    `json:"remote_addr,omitempty"`
	ConnectedAt   time.Time `json:"connected_at"`
	UptimeSecs    float64   `json:"uptime_secs"`
	EventsSent    int64     `json:"events_sent"`
	EventsDropped int64     `json:"events_dropped"`
}

// Stats aggregates the registry for GET /v1/stats.
type Stats struct {
	Sessions           []Entry `json:"sessions"`
	ActiveSessions     int     `json:"active_sessions"`
	LifetimeSessions   int64   `json:"lifetime_sessions"`
	TotalEventsSent    int64   `json:"total_events_sent"`
	TotalEventsDropped int64   `json:"total_events_dropped"`
}

// Registry maintains an in-memory roster of live subscriber sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	started  time.Time

	lifetimeSessions int64
	lifetimeSent     int64
	lifetimeDropped  int64
}

type sessionState struct {
	kind        Kind
	remoteAddr  string
	connectedAt time.Time
	sent        int64
	dropped     int64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*sessionState),
		started:  time.Now(),
	}
}

// Register records a newly attached session. Called by the transport
// handler once the connection is established and an id is assigned.
func (r *Registry) Register(id string, kind Kind, remoteAddr string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionState{
		kind:        kind,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
	}
	r.lifetimeSessions++
}

// Unregister removes a session, folding its counters into the lifetime
// totals. Safe to call for ids that were never registered.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.sessions[id]
	if !ok {
		return
	}
	r.lifetimeSent += state.sent
	r.lifetimeDropped += state.dropped
	delete(r.sessions, id)
}

// RecordSent increments the delivered-event counter for a session.
func (r *Registry) RecordSent(id string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.sessions[id]; ok {
		state.sent += n
	}
}

// RecordDropped increments the dropped-event counter for a session,
// typically after the session's bus lane overflowed.
func (r *Registry) RecordDropped(id string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.sessions[id]; ok {
		state.dropped += n
	}
}

// Count returns the number of currently attached sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the current sessions sorted by connection time,
// newest first.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(r.sessions))
	for id, state := range r.sessions {
		entries = append(entries, Entry{
			SessionID:     id,
			Kind:          state.kind,
			RemoteAddr:    state.remoteAddr,
			ConnectedAt:   state.connectedAt,
			UptimeSecs:    now.Sub(state.connectedAt).Seconds(),
			EventsSent:    state.sent,
			EventsDropped: state.dropped,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ConnectedAt.After(entries[j].ConnectedAt)
	})

	return entries
}

// Stats returns the full aggregate view, including totals carried over
// from sessions that have already disconnected.
func (r *Registry) Stats() Stats {
	snapshot := r.Snapshot()

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Sessions:           snapshot,
		ActiveSessions:     len(r.sessions),
		LifetimeSessions:   r.lifetimeSessions,
		TotalEventsSent:    r.lifetimeSent,
		TotalEventsDropped: r.lifetimeDropped,
	}
	for _, e := range snapshot {
		stats.TotalEventsSent += e.EventsSent
		stats.TotalEventsDropped += e.EventsDropped
	}
	return stats
}
