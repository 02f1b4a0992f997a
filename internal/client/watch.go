package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/wire"
)

// Watch attaches to the server's websocket push stream and returns a
// channel of change events. The channel closes when the connection
// drops, the context is canceled, or the returned cancel function is
// called.
func (c *HTTPClient) Watch(ctx context.Context) (<-chan model.ChangeEvent, func(), error) {
	wsURL, err := websocketURL(c.baseURL)
	if err != nil {
		return nil, nil, err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	events := make(chan model.ChangeEvent, 16)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { conn.Close() })
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			ev, err := wire.DecodeEvent(data)
			if err != nil {
				slog.Warn("watch: failed to decode event frame", "error", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, cancel, nil
}

// websocketURL converts an http(s) base URL to the ws(s) push endpoint.
func websocketURL(baseURL string) (string, error) {
	switch {
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/v1/notes/events", nil
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/v1/notes/events", nil
	}
	return "", fmt.Errorf("unsupported base URL scheme: %s", baseURL)
}
