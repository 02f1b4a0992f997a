package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	NoteCount int       `json:"note_count"`
	ChatCount int       `json:"chat_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// chatExport embeds a chat with its full message history.
type chatExport struct {
	Chat     *model.Chat          `json:"chat"`
	Messages []*model.ChatMessage `json:"messages"`
}

// ExportJSONL writes all notes and chats from the store as JSONL to w.
// Notes come first, ordered by id; each chat embeds its messages.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}

	chats, err := s.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	exports := make([]chatExport, 0, len(chats))
	for _, c := range chats {
		messages, err := s.GetChatMessages(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("get messages for chat %d: %w", c.ID, err)
		}
		exports = append(exports, chatExport{Chat: c, Messages: messages})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		NoteCount: len(notes),
		ChatCount: len(chats),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, n := range notes {
		if err := enc.Encode(record{Type: "note", Data: n}); err != nil {
			return fmt.Errorf("encode note %d: %w", n.ID, err)
		}
	}

	for _, c := range exports {
		if err := enc.Encode(record{Type: "chat", Data: c}); err != nil {
			return fmt.Errorf("encode chat %d: %w", c.Chat.ID, err)
		}
	}

	return nil
}
