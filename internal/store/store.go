package store

import (
	"context"
	"errors"

	"github.com/alderlake/notehub/internal/model"
)

// ErrNotFound is returned when no row matches the requested identifier.
// It is returned on every call against a missing id, including repeated
// deletes.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for notes and chats.
//
// The store is the sole writer of persisted note state and the sole
// source of truth for note versions. Millisecond timestamps are supplied
// by the caller, never by the database.
type Store interface {
	// Note CRUD
	//
	// CreateNote persists the note and fills in the assigned id.
	// UpdateNote performs a transactional read-modify-write: it bumps
	// version and updated_at only when title or body actually changed,
	// and returns the minimal delta (nil when nothing changed).
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id int64) (*model.Note, error)
	ListNotes(ctx context.Context) ([]*model.Note, error)
	UpdateNote(ctx context.Context, id int64, title, body *string, now int64) (*model.Note, *model.Delta, error)
	DeleteNote(ctx context.Context, id int64) error

	// Chats
	CreateChat(ctx context.Context, chat *model.Chat) error
	GetChat(ctx context.Context, id int64) (*model.Chat, error)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	AddChatMessage(ctx context.Context, msg *model.ChatMessage) error
	GetChatMessages(ctx context.Context, chatID int64) ([]*model.ChatMessage, error)
	TouchChat(ctx context.Context, id int64, now int64) error

	// Event audit log
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, noteID int64) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
