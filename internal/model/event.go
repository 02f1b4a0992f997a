package model

import (
	"encoding/json"
	"time"
)

// Event is a persisted audit record of a change event, mirroring what is
// fanned out to live subscribers. The audit log is append-only and is
// not used for replay; subscribers that lag reconcile via a full list.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	NoteID    int64           `json:"note_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
