// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateNote(ctx context.Context, note *model.Note) error {
	return queryCreateNote(ctx, s.db, note)
}

func (s *PostgresStore) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	return queryGetNote(ctx, s.db, id)
}

func (s *PostgresStore) ListNotes(ctx context.Context) ([]*model.Note, error) {
	return queryListNotes(ctx, s.db)
}

// UpdateNote performs the read-modify-write for a note inside a single
// transaction so that concurrent updates on the same id serialize and
// the version sequence has no gaps and no repeats. When neither field
// differs from the stored values, no write happens and the returned
// delta is nil.
func (s *PostgresStore) UpdateNote(ctx context.Context, id int64, title, body *string, now int64) (*model.Note, *model.Delta, error) {
	var (
		note  *model.Note
		delta *model.Delta
	)
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		note, delta, err = tx.UpdateNote(ctx, id, title, body, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return note, delta, nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, id int64) error {
	return queryDeleteNote(ctx, s.db, id)
}

func (s *PostgresStore) CreateChat(ctx context.Context, chat *model.Chat) error {
	return queryCreateChat(ctx, s.db, chat)
}

func (s *PostgresStore) GetChat(ctx context.Context, id int64) (*model.Chat, error) {
	return queryGetChat(ctx, s.db, id)
}

func (s *PostgresStore) ListChats(ctx context.Context) ([]*model.Chat, error) {
	return queryListChats(ctx, s.db)
}

func (s *PostgresStore) AddChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	return queryAddChatMessage(ctx, s.db, msg)
}

func (s *PostgresStore) GetChatMessages(ctx context.Context, chatID int64) ([]*model.ChatMessage, error) {
	return queryGetChatMessages(ctx, s.db, chatID)
}

func (s *PostgresStore) TouchChat(ctx context.Context, id int64, now int64) error {
	return queryTouchChat(ctx, s.db, id, now)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, noteID int64) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, noteID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateNote(ctx context.Context, note *model.Note) error {
	return queryCreateNote(ctx, s.tx, note)
}

func (s *txStore) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	return queryGetNote(ctx, s.tx, id)
}

func (s *txStore) ListNotes(ctx context.Context) ([]*model.Note, error) {
	return queryListNotes(ctx, s.tx)
}

// UpdateNote on a txStore does the actual read-modify-write against the
// enclosing transaction. The row is locked with FOR UPDATE so a second
// writer cannot interleave a stale read between our read and write.
func (s *txStore) UpdateNote(ctx context.Context, id int64, title, body *string, now int64) (*model.Note, *model.Delta, error) {
	old, err := queryGetNoteForUpdate(ctx, s.tx, id)
	if err != nil {
		return nil, nil, err
	}

	updated := *old
	if title != nil {
		updated.Title = *title
	}
	if body != nil {
		updated.Body = *body
	}

	if updated.Title == old.Title && updated.Body == old.Body {
		return old, nil, nil
	}

	updated.Version = old.Version + 1
	updated.UpdatedAt = now

	if err := queryUpdateNote(ctx, s.tx, &updated); err != nil {
		return nil, nil, err
	}

	delta := model.ComputeDelta(old, &updated)
	return &updated, &delta, nil
}

func (s *txStore) DeleteNote(ctx context.Context, id int64) error {
	return queryDeleteNote(ctx, s.tx, id)
}

func (s *txStore) CreateChat(ctx context.Context, chat *model.Chat) error {
	return queryCreateChat(ctx, s.tx, chat)
}

func (s *txStore) GetChat(ctx context.Context, id int64) (*model.Chat, error) {
	return queryGetChat(ctx, s.tx, id)
}

func (s *txStore) ListChats(ctx context.Context) ([]*model.Chat, error) {
	return queryListChats(ctx, s.tx)
}

func (s *txStore) AddChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	return queryAddChatMessage(ctx, s.tx, msg)
}

func (s *txStore) GetChatMessages(ctx context.Context, chatID int64) ([]*model.ChatMessage, error) {
	return queryGetChatMessages(ctx, s.tx, chatID)
}

func (s *txStore) TouchChat(ctx context.Context, id int64, now int64) error {
	return queryTouchChat(ctx, s.tx, id, now)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, noteID int64) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, noteID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
