package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alderlake/notehub/internal/bus"
	"github.com/alderlake/notehub/internal/events"
	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/registry"
	"github.com/alderlake/notehub/internal/store"
)

// NoteServer owns the request-handling side of the service: it validates
// input, drives the store, and distributes change events to the bus,
// the audit log, and the external publisher.
type NoteServer struct {
	store     store.Store
	bus       *bus.Bus
	publisher events.Publisher
	Registry  *registry.Registry
}

// NewNoteServer returns a NoteServer backed by the given store, bus,
// and publisher.
func NewNoteServer(s store.Store, b *bus.Bus, p events.Publisher) *NoteServer {
	return &NoteServer{
		store:     s,
		bus:       b,
		publisher: p,
		Registry:  registry.New(),
	}
}

// recordAndPublish distributes a change event after the mutation has
// committed: live subscribers via the bus, the persisted audit log, and
// the external publisher. The bus publish never blocks; the audit row
// and broker publish are best-effort and failures are logged, never
// surfaced to the caller whose mutation already succeeded.
func (s *NoteServer) recordAndPublish(ctx context.Context, ev model.ChangeEvent) {
	s.bus.Publish(ev)

	topic := events.TopicFor(ev.Kind)
	payload, err := json.Marshal(events.PayloadFor(ev))
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "note_id", ev.NoteID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		NoteID:  ev.NoteID,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "note_id", ev.NoteID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, events.PayloadFor(ev)); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "note_id", ev.NoteID, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// createNote validates and persists a new note at version 1, then
// distributes the Created event.
func (s *NoteServer) createNote(ctx context.Context, title, body string) (*model.Note, error) {
	title = model.NormalizeTitle(title)
	if title == "" {
		return nil, inputError("title cannot be empty")
	}

	now := time.Now().UnixMilli()
	note := &model.Note{
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, model.CreatedEvent(note))
	return note, nil
}

// updateNote applies a partial update. At least one field must be
// present; a present title must be non-empty after trimming. When the
// store reports a real change, the Updated event carries the minimal
// delta; a no-op update distributes nothing.
func (s *NoteServer) updateNote(ctx context.Context, id int64, title, body *string) (*model.Note, error) {
	if title == nil && body == nil {
		return nil, inputError("at least one of title or body is required")
	}
	if title != nil {
		t := model.NormalizeTitle(*title)
		if t == "" {
			return nil, inputError("title cannot be empty")
		}
		title = &t
	}

	now := time.Now().UnixMilli()
	note, delta, err := s.store.UpdateNote(ctx, id, title, body, now)
	if err != nil {
		return nil, err
	}

	if delta != nil {
		s.recordAndPublish(ctx, model.UpdatedEvent(delta))
	}
	return note, nil
}

// deleteNote removes a note and distributes the Deleted event.
func (s *NoteServer) deleteNote(ctx context.Context, id int64) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.recordAndPublish(ctx, model.DeletedEvent(id))
	return nil
}
