package backup

import (
	"context"
	"sort"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

// mockStore is a minimal in-memory store.Store for backup tests.
type mockStore struct {
	notes    map[int64]*model.Note
	chats    map[int64]*model.Chat
	messages map[int64][]*model.ChatMessage

	listNotesErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		notes:    make(map[int64]*model.Note),
		chats:    make(map[int64]*model.Chat),
		messages: make(map[int64][]*model.ChatMessage),
	}
}

func (m *mockStore) CreateNote(_ context.Context, note *model.Note) error {
	m.notes[note.ID] = note
	return nil
}

func (m *mockStore) GetNote(_ context.Context, id int64) (*model.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return n, nil
}

func (m *mockStore) ListNotes(_ context.Context) ([]*model.Note, error) {
	if m.listNotesErr != nil {
		return nil, m.listNotesErr
	}
	notes := make([]*model.Note, 0, len(m.notes))
	for _, n := range m.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (m *mockStore) UpdateNote(_ context.Context, id int64, title, body *string, now int64) (*model.Note, *model.Delta, error) {
	return nil, nil, store.ErrNotFound
}

func (m *mockStore) DeleteNote(_ context.Context, id int64) error {
	if _, ok := m.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *mockStore) CreateChat(_ context.Context, chat *model.Chat) error {
	m.chats[chat.ID] = chat
	return nil
}

func (m *mockStore) GetChat(_ context.Context, id int64) (*model.Chat, error) {
	c, ok := m.chats[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) ListChats(_ context.Context) ([]*model.Chat, error) {
	chats := make([]*model.Chat, 0, len(m.chats))
	for _, c := range m.chats {
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (m *mockStore) AddChatMessage(_ context.Context, msg *model.ChatMessage) error {
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], msg)
	return nil
}

func (m *mockStore) GetChatMessages(_ context.Context, chatID int64) ([]*model.ChatMessage, error) {
	return m.messages[chatID], nil
}

func (m *mockStore) TouchChat(_ context.Context, id int64, now int64) error {
	c, ok := m.chats[id]
	if !ok {
		return store.ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error { return nil }

func (m *mockStore) GetEvents(_ context.Context, noteID int64) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
