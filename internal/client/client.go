// Package client provides a transport-agnostic interface for the notehub
// service and an HTTP implementation that talks to the notehub REST API
// with protobuf bodies.
package client

import (
	"context"
	"time"

	"github.com/alderlake/notehub/internal/model"
)

// NotehubClient is the interface that all notehub CLI commands use to
// communicate with the server. It is implemented by HTTPClient (default)
// and can be backed by any transport.
type NotehubClient interface {
	// Note CRUD
	CreateNote(ctx context.Context, title, body string) (*model.Note, error)
	GetNote(ctx context.Context, id int64) (*model.Note, error)
	ListNotes(ctx context.Context) ([]*model.Note, error)
	UpdateNote(ctx context.Context, id int64, title, body *string) (*model.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	GetNoteEvents(ctx context.Context, id int64) ([]*model.Event, error)

	// Live events
	Watch(ctx context.Context) (<-chan model.ChangeEvent, func(), error)

	// Chats
	CreateChat(ctx context.Context, title string) (*model.Chat, error)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	GetChat(ctx context.Context, id int64) (*model.Chat, []*model.ChatMessage, error)
	InteractChat(ctx context.Context, id int64, prompt string, integrations []model.Integration) (*InteractResult, error)

	// Service surface
	Health(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Close() error
}

// InteractResult is the outcome of a chat interaction.
type InteractResult struct {
	Chat          *model.Chat
	PromptMessage *model.ChatMessage
	Responses     []*model.ChatMessage
}

// SessionStats mirrors one live session entry from GET /v1/stats.
type SessionStats struct {
	SessionID     string    `json:"session_id"`
	Kind          string    `json:"kind"`
	RemoteAddr    string    `json:"remote_addr,omitempty"`
	ConnectedAt   time.Time `json:"connected_at"`
	UptimeSecs    float64   `json:"uptime_secs"`
	EventsSent    int64     `json:"events_sent"`
	EventsDropped int64     `json:"events_dropped"`
}

// Stats mirrors the GET /v1/stats response.
type Stats struct {
	BusSubscribers     int            `json:"bus_subscribers"`
	ActiveSessions     int            `json:"active_sessions"`
	LifetimeSessions   int64          `json:"lifetime_sessions"`
	TotalEventsSent    int64          `json:"total_events_sent"`
	TotalEventsDropped int64          `json:"total_events_dropped"`
	Sessions           []SessionStats `json:"sessions"`
}
