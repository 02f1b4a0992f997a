package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alderlake/notehub/internal/bus"
	"github.com/alderlake/notehub/internal/events"
	"github.com/alderlake/notehub/internal/idgen"
	"github.com/alderlake/notehub/internal/registry"
)

// sseKeepaliveInterval is how often keepalive comments are sent to
// prevent connection timeouts.
const sseKeepaliveInterval = 15 * time.Second

// sseFrame is a single event ready to write to the stream.
type sseFrame struct {
	event string
	data  []byte
}

// handleEventStream handles GET /v1/events/stream (SSE endpoint).
//
// Each connection drains its own bus lane. There is no replay on
// reconnect: a consumer that reconnects reconciles by re-fetching the
// note list. An overflowed lane surfaces as an "event:lagged" frame
// carrying the dropped count.
func (s *NoteServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	id, err := idgen.GenerateWithPrefix("sse-")
	if err != nil {
		slog.Warn("failed to generate session id", "error", err)
		id = "sse-unidentified"
	}
	s.Registry.Register(id, registry.KindSSE, r.RemoteAddr)
	defer s.Registry.Unregister(id)

	sub := s.bus.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	frames := make(chan sseFrame, 16)

	go func() {
		defer close(frames)
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				var lag *bus.LaggedError
				if errors.As(err, &lag) {
					s.Registry.RecordDropped(id, int64(lag.Dropped))
					data, _ := json.Marshal(map[string]uint64{"dropped": lag.Dropped})
					select {
					case frames <- sseFrame{event: "lagged", data: data}:
					case <-ctx.Done():
						return
					}
					continue
				}
				return
			}

			data, err := json.Marshal(events.PayloadFor(ev))
			if err != nil {
				slog.Warn("failed to marshal event for SSE", "session", id, "note_id", ev.NoteID, "error", err)
				continue
			}
			select {
			case frames <- sseFrame{event: events.TopicFor(ev.Kind), data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event:%s\n", frame.event)
			fmt.Fprintf(w, "data:%s\n\n", frame.data)
			flusher.Flush()
			if frame.event != "lagged" {
				s.Registry.RecordSent(id, 1)
			}
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}
