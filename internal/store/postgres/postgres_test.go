package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// noteRowColumns is the column list for scanNote results.
var noteRowColumns = []string{"id", "title", "body", "created_at", "updated_at", "version"}

func noteRow(id int64, title, body string, createdAt, updatedAt, version int64) *sqlmock.Rows {
	return sqlmock.NewRows(noteRowColumns).AddRow(id, title, body, createdAt, updatedAt, version)
}

func TestCreateNote(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`INSERT INTO notes \(title, body, created_at, updated_at, version\)`).
		WithArgs("draft", "hello body", int64(1000), int64(1000), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	note := &model.Note{Title: "draft", Body: "hello body", CreatedAt: 1000, UpdatedAt: 1000, Version: 1}
	if err := s.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.ID != 1 {
		t.Errorf("note ID = %d, want 1", note.ID)
	}
}

func TestGetNote(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(noteRow(1, "draft", "hello body", 1000, 1000, 1))

	note, err := s.GetNote(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if note.Title != "draft" || note.Version != 1 {
		t.Errorf("got note %+v, want title=draft version=1", note)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetNote(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNote error = %v, want store.ErrNotFound", err)
	}
}

func TestListNotes_OrderedByID(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	rows := sqlmock.NewRows(noteRowColumns).
		AddRow(int64(1), "first", "", int64(10), int64(10), int64(1)).
		AddRow(int64(2), "second", "", int64(20), int64(20), int64(1))
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes ORDER BY id`).
		WillReturnRows(rows)

	notes, err := s.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].ID != 1 || notes[1].ID != 2 {
		t.Errorf("notes out of order: ids %d, %d", notes[0].ID, notes[1].ID)
	}
}

func TestUpdateNote_TitleChanged(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(noteRow(1, "draft", "hello body", 1000, 1000, 1))
	mock.ExpectExec(`UPDATE notes`).
		WithArgs("renamed", "hello body", int64(2000), int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	title := "renamed"
	note, delta, err := s.UpdateNote(context.Background(), 1, &title, nil, 2000)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if note.Version != 2 {
		t.Errorf("note version = %d, want 2", note.Version)
	}
	if note.Body != "hello body" {
		t.Errorf("note body = %q, want unchanged %q", note.Body, "hello body")
	}
	if delta == nil {
		t.Fatal("delta is nil, want title delta")
	}
	if delta.Title == nil || *delta.Title != "renamed" {
		t.Errorf("delta title = %v, want renamed", delta.Title)
	}
	if delta.Body != nil {
		t.Errorf("delta body = %q, want nil", *delta.Body)
	}
	if delta.Version != 2 || delta.UpdatedAt != 2000 {
		t.Errorf("delta version/updated_at = %d/%d, want 2/2000", delta.Version, delta.UpdatedAt)
	}
}

func TestUpdateNote_NoOp(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	// Identical values: no UPDATE statement may run, version stays put.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(noteRow(1, "renamed", "hello body", 1000, 1500, 2))
	mock.ExpectCommit()

	title := "renamed"
	note, delta, err := s.UpdateNote(context.Background(), 1, &title, nil, 3000)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if delta != nil {
		t.Errorf("delta = %+v, want nil for no-op update", delta)
	}
	if note.Version != 2 {
		t.Errorf("note version = %d, want unchanged 2", note.Version)
	}
	if note.UpdatedAt != 1500 {
		t.Errorf("note updated_at = %d, want unchanged 1500", note.UpdatedAt)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	title := "renamed"
	_, _, err := s.UpdateNote(context.Background(), 9, &title, nil, 2000)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateNote error = %v, want store.ErrNotFound", err)
	}
}

func TestUpdateNote_WriteFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(noteRow(1, "draft", "hello body", 1000, 1000, 1))
	mock.ExpectExec(`UPDATE notes`).
		WithArgs("renamed", "hello body", int64(2000), int64(2), int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	title := "renamed"
	_, _, err := s.UpdateNote(context.Background(), 1, &title, nil, 2000)
	if err == nil {
		t.Fatal("UpdateNote succeeded, want storage error")
	}
}

func TestDeleteNote(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteNote(context.Background(), 1); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
}

func TestDeleteNote_NotFoundRepeatedly(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	// Each delete of a missing id reports not found; never a silent success.
	for i := 0; i < 2; i++ {
		mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	for i := 0; i < 2; i++ {
		err := s.DeleteNote(context.Background(), 42)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("delete attempt %d: error = %v, want store.ErrNotFound", i+1, err)
		}
	}
}

func TestCreateChat(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`INSERT INTO chats \(title, created_at, updated_at\)`).
		WithArgs("planning", int64(500), int64(500)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	chat := &model.Chat{Title: "planning", CreatedAt: 500, UpdatedAt: 500}
	if err := s.CreateChat(context.Background(), chat); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if chat.ID != 3 {
		t.Errorf("chat ID = %d, want 3", chat.ID)
	}
}

func TestTouchChat_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`UPDATE chats SET updated_at = \$1 WHERE id = \$2`).
		WithArgs(int64(900), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.TouchChat(context.Background(), 8, 900)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("TouchChat error = %v, want store.ErrNotFound", err)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, body, created_at, updated_at, version FROM notes WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(noteRow(1, "draft", "", 10, 10, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		_, err := tx.GetNote(context.Background(), 1)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("RunInTransaction error = %v, want %v", err, wantErr)
	}
}
