package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

// noteColumns is the column list used for SELECT statements on the notes table.
const noteColumns = `id, title, body, created_at, updated_at, version`

// chatColumns is the column list used for SELECT statements on the chats table.
const chatColumns = `id, title, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateNote(ctx context.Context, db executor, n *model.Note) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO notes (title, body, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		n.Title,
		n.Body,
		n.CreatedAt,
		n.UpdatedAt,
		n.Version,
	)
	if err := row.Scan(&n.ID); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func queryGetNote(ctx context.Context, db executor, id int64) (*model.Note, error) {
	row := db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	return scanNote(row)
}

// queryGetNoteForUpdate reads a note with a row lock, serializing
// concurrent read-modify-write cycles on the same id.
func queryGetNoteForUpdate(ctx context.Context, db executor, id int64) (*model.Note, error) {
	row := db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 FOR UPDATE`, id)
	return scanNote(row)
}

func queryListNotes(ctx context.Context, db executor) ([]*model.Note, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func queryUpdateNote(ctx context.Context, db executor, n *model.Note) error {
	_, err := db.ExecContext(ctx, `
		UPDATE notes
		SET title = $1, body = $2, updated_at = $3, version = $4
		WHERE id = $5`,
		n.Title,
		n.Body,
		n.UpdatedAt,
		n.Version,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func queryDeleteNote(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryCreateChat(ctx context.Context, db executor, c *model.Chat) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO chats (title, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		c.Title,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err := row.Scan(&c.ID); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func queryGetChat(ctx context.Context, db executor, id int64) (*model.Chat, error) {
	row := db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id)
	return scanChat(row)
}

func queryListChats(ctx context.Context, db executor) ([]*model.Chat, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+chatColumns+` FROM chats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]*model.Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func queryAddChatMessage(ctx context.Context, db executor, m *model.ChatMessage) error {
	var integration any
	if m.Integration != "" {
		integration = string(m.Integration)
	}
	row := db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (chat_id, role, integration, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		m.ChatID,
		string(m.Role),
		integration,
		m.Content,
		m.CreatedAt,
	)
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func queryGetChatMessages(ctx context.Context, db executor, chatID int64) ([]*model.ChatMessage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, chat_id, role, integration, content, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY id`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*model.ChatMessage, 0)
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func queryTouchChat(ctx context.Context, db executor, id int64, now int64) error {
	res, err := db.ExecContext(ctx, `UPDATE chats SET updated_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch chat: rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO note_events (topic, note_id, payload, created_at)
		VALUES ($1, $2, $3, NOW())`,
		e.Topic,
		e.NoteID,
		[]byte(e.Payload),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

func queryGetEvents(ctx context.Context, db executor, noteID int64) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, note_id, payload, created_at
		FROM note_events
		WHERE note_id = $1
		ORDER BY id`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// mapNotFound converts sql.ErrNoRows into the store's sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
