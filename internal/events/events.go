package events

import (
	"context"

	"github.com/alderlake/notehub/internal/model"
)

// Event topic constants
const (
	TopicNoteCreated = "notes.note.created"
	TopicNoteUpdated = "notes.note.updated"
	TopicNoteDeleted = "notes.note.deleted"
)

// TopicFor returns the topic for a change event kind. Unknown kinds map
// to the empty topic and should not be published.
func TopicFor(kind model.ChangeKind) string {
	switch kind {
	case model.ChangeCreated:
		return TopicNoteCreated
	case model.ChangeUpdated:
		return TopicNoteUpdated
	case model.ChangeDeleted:
		return TopicNoteDeleted
	}
	return ""
}

// Event payload types, JSON-encoded when published externally.

type NoteCreated struct {
	Note *model.Note `json:"note"`
}

type NoteUpdated struct {
	Delta *model.Delta `json:"delta"`
}

type NoteDeleted struct {
	NoteID int64 `json:"note_id"`
}

// PayloadFor wraps a change event in its external payload type.
func PayloadFor(ev model.ChangeEvent) any {
	switch ev.Kind {
	case model.ChangeCreated:
		return NoteCreated{Note: ev.Note}
	case model.ChangeUpdated:
		return NoteUpdated{Delta: ev.Delta}
	case model.ChangeDeleted:
		return NoteDeleted{NoteID: ev.NoteID}
	}
	return nil
}

// Publisher is the interface for emitting events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
