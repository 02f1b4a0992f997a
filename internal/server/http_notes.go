package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
	"github.com/alderlake/notehub/internal/wire"
)

// pathID extracts the {id} path value as an int64. A second return of
// false means a 400 has already been written.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// handleCreateNote handles POST /v1/notes.
func (s *NoteServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	req, err := wire.DecodeCreateNoteRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid protobuf body")
		return
	}

	note, err := s.createNote(r.Context(), req.Title, req.Body)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeProto(w, http.StatusCreated, wire.EncodeNoteResponse(note))
}

// handleListNotes handles GET /v1/notes.
func (s *NoteServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.ListNotes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeListNotesResponse(notes))
}

// handleGetNote handles GET /v1/notes/{id}.
func (s *NoteServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	note, err := s.store.GetNote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeNoteResponse(note))
}

// handleUpdateNote handles PATCH /v1/notes/{id}.
func (s *NoteServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	req, err := wire.DecodeUpdateNoteRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid protobuf body")
		return
	}

	note, err := s.updateNote(r.Context(), id, req.Title, req.Body)
	if err != nil {
		var ie inputError
		switch {
		case errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, ie.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "note not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeNoteResponse(note))
}

// handleDeleteNote handles DELETE /v1/notes/{id}.
func (s *NoteServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.deleteNote(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeDeleteNoteResponse(id))
}

// handleGetNoteEvents handles GET /v1/notes/{id}/events, returning the
// persisted audit rows for a note as JSON.
func (s *NoteServer) handleGetNoteEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
