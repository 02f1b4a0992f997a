package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/alderlake/notehub/internal/wire"
)

// maxBodyBytes caps request body reads.
const maxBodyBytes = 1 << 20

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must
// include a valid Authorization: Bearer <token> header.
func (s *NoteServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/notes", s.handleCreateNote)
	mux.HandleFunc("GET /v1/notes", s.handleListNotes)
	mux.HandleFunc("GET /v1/notes/{id}", s.handleGetNote)
	mux.HandleFunc("PATCH /v1/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /v1/notes/{id}", s.handleDeleteNote)
	mux.HandleFunc("GET /v1/notes/{id}/events", s.handleGetNoteEvents)
	mux.HandleFunc("GET /v1/notes/events", s.handleNoteEvents)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("POST /v1/chats", s.handleCreateChat)
	mux.HandleFunc("GET /v1/chats", s.handleListChats)
	mux.HandleFunc("GET /v1/chats/{id}", s.handleGetChat)
	mux.HandleFunc("POST /v1/chats/{id}/interact", s.handleInteractChat)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var handler http.Handler = AuthMiddleware(authToken, mux)
	handler = RecoveryMiddleware(handler)
	handler = LoggingMiddleware(handler)
	return handler
}

// handleHealth handles GET /v1/health.
func (s *NoteServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetStats handles GET /v1/stats.
func (s *NoteServer) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.Registry.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"bus_subscribers":      s.bus.SubscriberCount(),
		"active_sessions":      stats.ActiveSessions,
		"lifetime_sessions":    stats.LifetimeSessions,
		"total_events_sent":    stats.TotalEventsSent,
		"total_events_dropped": stats.TotalEventsDropped,
		"sessions":             stats.Sessions,
	})
}

// readBody reads a request body with the standard size cap.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// writeProto writes a protobuf response body with the given status code.
func writeProto(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", wire.ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
