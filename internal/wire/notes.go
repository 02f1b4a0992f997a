package wire

import (
	"fmt"

	"github.com/alderlake/notehub/internal/model"
)

// Note field numbers (notes.v1.Note).
const (
	noteFieldID        = 1
	noteFieldTitle     = 2
	noteFieldBody      = 3
	noteFieldCreatedAt = 4
	noteFieldUpdatedAt = 5
	noteFieldVersion   = 6
)

// EncodeNote serializes a note.
func EncodeNote(n *model.Note) []byte {
	var buf []byte
	buf = appendInt64(buf, noteFieldID, n.ID)
	buf = appendString(buf, noteFieldTitle, n.Title)
	buf = appendString(buf, noteFieldBody, n.Body)
	buf = appendInt64(buf, noteFieldCreatedAt, n.CreatedAt)
	buf = appendInt64(buf, noteFieldUpdatedAt, n.UpdatedAt)
	buf = appendInt64(buf, noteFieldVersion, n.Version)
	return buf
}

// DecodeNote parses a note, skipping unknown fields.
func DecodeNote(b []byte) (*model.Note, error) {
	var n model.Note
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &n, nil
		}
		switch num {
		case noteFieldID:
			n.ID, err = d.int64()
		case noteFieldTitle:
			n.Title, err = d.string()
		case noteFieldBody:
			n.Body, err = d.string()
		case noteFieldCreatedAt:
			n.CreatedAt, err = d.int64()
		case noteFieldUpdatedAt:
			n.UpdatedAt, err = d.int64()
		case noteFieldVersion:
			n.Version, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// NoteDelta field numbers (notes.v1.NoteDelta). Title and body are
// optional: their presence on the wire means the field changed.
const (
	deltaFieldID        = 1
	deltaFieldTitle     = 2
	deltaFieldBody      = 3
	deltaFieldUpdatedAt = 4
	deltaFieldVersion   = 5
)

// EncodeDelta serializes a delta, emitting title/body only when present.
func EncodeDelta(delta *model.Delta) []byte {
	var buf []byte
	buf = appendInt64(buf, deltaFieldID, delta.ID)
	if delta.Title != nil {
		buf = appendStringPresent(buf, deltaFieldTitle, *delta.Title)
	}
	if delta.Body != nil {
		buf = appendStringPresent(buf, deltaFieldBody, *delta.Body)
	}
	buf = appendInt64(buf, deltaFieldUpdatedAt, delta.UpdatedAt)
	buf = appendInt64(buf, deltaFieldVersion, delta.Version)
	return buf
}

// DecodeDelta parses a delta; absent title/body fields stay nil.
func DecodeDelta(b []byte) (*model.Delta, error) {
	var delta model.Delta
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &delta, nil
		}
		switch num {
		case deltaFieldID:
			delta.ID, err = d.int64()
		case deltaFieldTitle:
			var s string
			if s, err = d.string(); err == nil {
				delta.Title = &s
			}
		case deltaFieldBody:
			var s string
			if s, err = d.string(); err == nil {
				delta.Body = &s
			}
		case deltaFieldUpdatedAt:
			delta.UpdatedAt, err = d.int64()
		case deltaFieldVersion:
			delta.Version, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// NoteEvent oneof field numbers (notes.v1.NoteEvent).
const (
	eventFieldCreated = 1
	eventFieldUpdated = 2
	eventFieldDeleted = 3

	deletedFieldID = 1
)

// EncodeEvent serializes a change event as the NoteEvent oneof.
func EncodeEvent(ev model.ChangeEvent) ([]byte, error) {
	var buf []byte
	switch ev.Kind {
	case model.ChangeCreated:
		buf = appendMessage(buf, eventFieldCreated, EncodeNote(ev.Note))
	case model.ChangeUpdated:
		buf = appendMessage(buf, eventFieldUpdated, EncodeDelta(ev.Delta))
	case model.ChangeDeleted:
		var deleted []byte
		deleted = appendInt64(deleted, deletedFieldID, ev.NoteID)
		buf = appendMessage(buf, eventFieldDeleted, deleted)
	default:
		return nil, fmt.Errorf("wire: unknown event kind %q", ev.Kind)
	}
	return buf, nil
}

// DecodeEvent parses a NoteEvent oneof into a change event.
func DecodeEvent(b []byte) (model.ChangeEvent, error) {
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return model.ChangeEvent{}, err
		}
		if !ok {
			return model.ChangeEvent{}, fmt.Errorf("wire: event has no variant set")
		}
		switch num {
		case eventFieldCreated:
			sub, err := d.bytes()
			if err != nil {
				return model.ChangeEvent{}, err
			}
			note, err := DecodeNote(sub)
			if err != nil {
				return model.ChangeEvent{}, err
			}
			return model.CreatedEvent(note), nil
		case eventFieldUpdated:
			sub, err := d.bytes()
			if err != nil {
				return model.ChangeEvent{}, err
			}
			delta, err := DecodeDelta(sub)
			if err != nil {
				return model.ChangeEvent{}, err
			}
			return model.UpdatedEvent(delta), nil
		case eventFieldDeleted:
			sub, err := d.bytes()
			if err != nil {
				return model.ChangeEvent{}, err
			}
			id, err := decodeNoteDeleted(sub)
			if err != nil {
				return model.ChangeEvent{}, err
			}
			return model.DeletedEvent(id), nil
		default:
			if err := d.skip(num, typ); err != nil {
				return model.ChangeEvent{}, err
			}
		}
	}
}

func decodeNoteDeleted(b []byte) (int64, error) {
	var id int64
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return id, nil
		}
		switch num {
		case deletedFieldID:
			id, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return 0, err
		}
	}
}

// CreateNoteRequest (notes.v1.CreateNoteRequest): 1 title, 2 body.
type CreateNoteRequest struct {
	Title string
	Body  string
}

func EncodeCreateNoteRequest(req *CreateNoteRequest) []byte {
	var buf []byte
	buf = appendString(buf, 1, req.Title)
	buf = appendString(buf, 2, req.Body)
	return buf
}

func DecodeCreateNoteRequest(b []byte) (*CreateNoteRequest, error) {
	var req CreateNoteRequest
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &req, nil
		}
		switch num {
		case 1:
			req.Title, err = d.string()
		case 2:
			req.Body, err = d.string()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// UpdateNoteRequest (notes.v1.UpdateNoteRequest): 1 title, 2 body,
// both optional; a nil field means "leave unchanged".
type UpdateNoteRequest struct {
	Title *string
	Body  *string
}

func EncodeUpdateNoteRequest(req *UpdateNoteRequest) []byte {
	var buf []byte
	if req.Title != nil {
		buf = appendStringPresent(buf, 1, *req.Title)
	}
	if req.Body != nil {
		buf = appendStringPresent(buf, 2, *req.Body)
	}
	return buf
}

func DecodeUpdateNoteRequest(b []byte) (*UpdateNoteRequest, error) {
	var req UpdateNoteRequest
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &req, nil
		}
		switch num {
		case 1:
			var s string
			if s, err = d.string(); err == nil {
				req.Title = &s
			}
		case 2:
			var s string
			if s, err = d.string(); err == nil {
				req.Body = &s
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeNoteResponse wraps a note as a single-field response message
// (Create/Get/UpdateNoteResponse all share the shape {1 note}).
func EncodeNoteResponse(n *model.Note) []byte {
	return appendMessage(nil, 1, EncodeNote(n))
}

// DecodeNoteResponse unwraps a {1 note} response.
func DecodeNoteResponse(b []byte) (*model.Note, error) {
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("wire: response has no note")
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			return DecodeNote(sub)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

// EncodeListNotesResponse serializes {1 repeated notes}.
func EncodeListNotesResponse(notes []*model.Note) []byte {
	var buf []byte
	for _, n := range notes {
		buf = appendMessage(buf, 1, EncodeNote(n))
	}
	return buf
}

// DecodeListNotesResponse parses {1 repeated notes}.
func DecodeListNotesResponse(b []byte) ([]*model.Note, error) {
	notes := make([]*model.Note, 0)
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return notes, nil
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			n, err := DecodeNote(sub)
			if err != nil {
				return nil, err
			}
			notes = append(notes, n)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

// EncodeDeleteNoteResponse serializes {1 id}.
func EncodeDeleteNoteResponse(id int64) []byte {
	return appendInt64(nil, 1, id)
}

// DecodeDeleteNoteResponse parses {1 id}.
func DecodeDeleteNoteResponse(b []byte) (int64, error) {
	var id int64
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return id, nil
		}
		switch num {
		case 1:
			id, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return 0, err
		}
	}
}
