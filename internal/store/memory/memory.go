// Package memory provides an in-memory store.Store. It backs tests and
// the standalone server mode that runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

// Store keeps all state in process memory. Safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	notes      map[int64]*model.Note
	nextNoteID int64

	chats      map[int64]*model.Chat
	messages   map[int64][]*model.ChatMessage
	nextChatID int64
	nextMsgID  int64

	events []*model.Event
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		notes:    make(map[int64]*model.Note),
		chats:    make(map[int64]*model.Chat),
		messages: make(map[int64][]*model.ChatMessage),
	}
}

func (m *Store) CreateNote(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNoteID++
	note.ID = m.nextNoteID
	clone := *note
	m.notes[note.ID] = &clone
	return nil
}

func (m *Store) GetNote(_ context.Context, id int64) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *Store) ListNotes(_ context.Context) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := make([]*model.Note, 0, len(m.notes))
	for _, n := range m.notes {
		clone := *n
		notes = append(notes, &clone)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

// UpdateNote applies the partial update under the lock, bumping version
// and updated_at only when the content actually changed. A no-op update
// returns the unchanged note and a nil delta.
func (m *Store) UpdateNote(_ context.Context, id int64, title, body *string, now int64) (*model.Note, *model.Delta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, nil, store.ErrNotFound
	}

	old := *n
	updated := old
	if title != nil {
		updated.Title = *title
	}
	if body != nil {
		updated.Body = *body
	}
	if updated.Title == old.Title && updated.Body == old.Body {
		clone := old
		return &clone, nil, nil
	}

	updated.Version = old.Version + 1
	updated.UpdatedAt = now
	m.notes[id] = &updated
	delta := model.ComputeDelta(&old, &updated)
	clone := updated
	return &clone, &delta, nil
}

func (m *Store) DeleteNote(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *Store) CreateChat(_ context.Context, chat *model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextChatID++
	chat.ID = m.nextChatID
	clone := *chat
	m.chats[chat.ID] = &clone
	return nil
}

func (m *Store) GetChat(_ context.Context, id int64) (*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *Store) ListChats(_ context.Context) ([]*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chats := make([]*model.Chat, 0, len(m.chats))
	for _, c := range m.chats {
		clone := *c
		chats = append(chats, &clone)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (m *Store) AddChatMessage(_ context.Context, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsgID++
	msg.ID = m.nextMsgID
	clone := *msg
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], &clone)
	return nil
}

func (m *Store) GetChatMessages(_ context.Context, chatID int64) ([]*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]*model.ChatMessage, 0, len(m.messages[chatID]))
	for _, msg := range m.messages[chatID] {
		clone := *msg
		msgs = append(msgs, &clone)
	}
	return msgs, nil
}

func (m *Store) TouchChat(_ context.Context, id int64, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return store.ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}

func (m *Store) RecordEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	clone.ID = int64(len(m.events) + 1)
	m.events = append(m.events, &clone)
	return nil
}

func (m *Store) GetEvents(_ context.Context, noteID int64) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Event
	for _, e := range m.events {
		if e.NoteID == noteID {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

// RunInTransaction runs fn against the store directly. All writes are
// already atomic per call, so there is nothing to roll back.
func (m *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *Store) Close() error { return nil }
