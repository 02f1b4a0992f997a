package model

import "strings"

// Note is the versioned record synchronized by the service.
//
// Timestamps are unix milliseconds supplied by the caller, not the
// database. Version starts at 1 and increments by exactly 1 on every
// update that actually changes title or body; a no-op update leaves it
// untouched.
type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at_unix_ms"`
	UpdatedAt int64  `json:"updated_at_unix_ms"`
	Version   int64  `json:"version"`
}

// NormalizeTitle trims surrounding whitespace from a title.
// An empty result means the title is invalid.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
