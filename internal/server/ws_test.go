package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/wire"
)

// dialWS connects to the websocket push stream of a test server.
func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/notes/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSessions blocks until the registry reports n attached sessions.
func waitForSessions(t *testing.T, srv *NoteServer, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Registry.Count() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry never reached %d sessions (have %d)", n, srv.Registry.Count())
}

func TestWebsocket_ReceivesEvents(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.NewHTTPHandler(""))
	defer ts.Close()

	conn := dialWS(t, ts)
	waitForSessions(t, srv, 1)

	body := wire.EncodeCreateNoteRequest(&wire.CreateNoteRequest{Title: "draft"})
	rec := doProto(t, srv.NewHTTPHandler(""), http.MethodPost, "/v1/notes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", msgType)
	}

	ev, err := wire.DecodeEvent(data)
	if err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Kind != model.ChangeCreated || ev.Note == nil || ev.Note.Title != "draft" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestWebsocket_DeltaFrame(t *testing.T) {
	srv, _, _ := newTestServer(t)
	handler := srv.NewHTTPHandler("")
	ts := httptest.NewServer(handler)
	defer ts.Close()

	body := wire.EncodeCreateNoteRequest(&wire.CreateNoteRequest{Title: "draft", Body: "b"})
	doProto(t, handler, http.MethodPost, "/v1/notes", body)

	conn := dialWS(t, ts)
	waitForSessions(t, srv, 1)

	title := "renamed"
	patch := wire.EncodeUpdateNoteRequest(&wire.UpdateNoteRequest{Title: &title})
	doProto(t, handler, http.MethodPatch, "/v1/notes/1", patch)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	ev, err := wire.DecodeEvent(data)
	if err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Kind != model.ChangeUpdated || ev.Delta == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Delta.Title == nil || *ev.Delta.Title != "renamed" || ev.Delta.Body != nil {
		t.Errorf("unexpected delta: %+v", ev.Delta)
	}
}

func TestWebsocket_SessionUnregistersOnClose(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.NewHTTPHandler(""))
	defer ts.Close()

	conn := dialWS(t, ts)
	waitForSessions(t, srv, 1)

	conn.Close()
	waitForSessions(t, srv, 0)
}

func TestWebsocket_TwoSubscribersBothReceive(t *testing.T) {
	srv, _, _ := newTestServer(t)
	handler := srv.NewHTTPHandler("")
	ts := httptest.NewServer(handler)
	defer ts.Close()

	connA := dialWS(t, ts)
	connB := dialWS(t, ts)
	waitForSessions(t, srv, 2)

	body := wire.EncodeCreateNoteRequest(&wire.CreateNoteRequest{Title: "draft"})
	doProto(t, handler, http.MethodPost, "/v1/notes", body)

	for _, conn := range []*websocket.Conn{connA, connB} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		ev, err := wire.DecodeEvent(data)
		if err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if ev.Kind != model.ChangeCreated {
			t.Errorf("event kind = %q, want created", ev.Kind)
		}
	}
}
