package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alderlake/notehub/internal/bus"
	"github.com/alderlake/notehub/internal/idgen"
	"github.com/alderlake/notehub/internal/registry"
	"github.com/alderlake/notehub/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The push stream carries no client-specific state, so any origin
	// may attach.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleNoteEvents handles GET /v1/notes/events, the websocket push
// stream. Each connection gets its own bus lane; events are sent as
// binary protobuf NoteEvent frames. A lagged lane is logged and counted
// but the session continues with whatever survived the overflow.
func (s *NoteServer) handleNoteEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	id, err := idgen.Generate()
	if err != nil {
		slog.Warn("failed to generate session id", "error", err)
		id = "sub-unidentified"
	}
	s.Registry.Register(id, registry.KindWebsocket, r.RemoteAddr)
	defer s.Registry.Unregister(id)

	sub := s.bus.Subscribe()
	defer sub.Close()

	slog.Info("websocket session attached", "session", id, "remote", r.RemoteAddr)

	// The read loop exists only to notice the peer going away; any
	// inbound frame content is discarded.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			var lag *bus.LaggedError
			switch {
			case errors.As(err, &lag):
				slog.Warn("websocket session lagged", "session", id, "dropped", lag.Dropped)
				s.Registry.RecordDropped(id, int64(lag.Dropped))
				continue
			case errors.Is(err, bus.ErrClosed):
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			default:
				return
			}
		}

		data, err := wire.EncodeEvent(ev)
		if err != nil {
			slog.Warn("failed to encode event", "session", id, "note_id", ev.NoteID, "error", err)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			slog.Info("websocket session detached", "session", id, "error", err)
			return
		}
		s.Registry.RecordSent(id, 1)
	}
}
