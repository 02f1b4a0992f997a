package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/alderlake/notehub/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanNote scans a single row into a model.Note.
// The row must contain columns in the order defined by noteColumns.
func scanNote(row scannable) (*model.Note, error) {
	var n model.Note
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.CreatedAt,
		&n.UpdatedAt,
		&n.Version,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &n, nil
}

// scanChat scans a single row into a model.Chat.
func scanChat(row scannable) (*model.Chat, error) {
	var c model.Chat
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

// scanChatMessage scans a single row into a model.ChatMessage.
func scanChatMessage(row scannable) (*model.ChatMessage, error) {
	var (
		m           model.ChatMessage
		role        string
		integration sql.NullString
	)
	err := row.Scan(
		&m.ID,
		&m.ChatID,
		&role,
		&integration,
		&m.Content,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	m.Role = model.MessageRole(role)
	m.Integration = model.Integration(integration.String)
	return &m, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var (
		e       model.Event
		payload []byte
	)
	err := row.Scan(
		&e.ID,
		&e.Topic,
		&e.NoteID,
		&payload,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}
