package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

func TestUpdateNote_VersionBump(t *testing.T) {
	m := New()
	ctx := context.Background()

	note := &model.Note{Title: "draft", Body: "b", Version: 1, CreatedAt: 100, UpdatedAt: 100}
	if err := m.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	title := "final"
	updated, delta, err := m.UpdateNote(ctx, note.ID, &title, nil, 200)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Version != 2 || updated.UpdatedAt != 200 {
		t.Errorf("updated = %+v", updated)
	}
	if delta == nil || delta.Title == nil || *delta.Title != "final" || delta.Body != nil {
		t.Errorf("delta = %+v", delta)
	}

	// Same content again changes nothing.
	same, delta, err := m.UpdateNote(ctx, note.ID, &title, nil, 300)
	if err != nil {
		t.Fatalf("UpdateNote no-op: %v", err)
	}
	if delta != nil {
		t.Errorf("no-op delta = %+v, want nil", delta)
	}
	if same.Version != 2 || same.UpdatedAt != 200 {
		t.Errorf("no-op mutated note: %+v", same)
	}
}

func TestNotFound(t *testing.T) {
	m := New()
	ctx := context.Background()

	if _, err := m.GetNote(ctx, 7); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNote err = %v", err)
	}
	if err := m.DeleteNote(ctx, 7); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteNote err = %v", err)
	}
	if _, _, err := m.UpdateNote(ctx, 7, nil, nil, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateNote err = %v", err)
	}
	if _, err := m.GetChat(ctx, 7); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetChat err = %v", err)
	}
	if err := m.TouchChat(ctx, 7, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("TouchChat err = %v", err)
	}
}

func TestClonesAreIsolated(t *testing.T) {
	m := New()
	ctx := context.Background()

	note := &model.Note{Title: "draft", Version: 1}
	if err := m.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	got, err := m.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	got.Title = "scribbled"

	again, err := m.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if again.Title != "draft" {
		t.Errorf("stored note mutated through returned pointer: %+v", again)
	}
}
