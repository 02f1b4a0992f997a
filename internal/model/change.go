package model

// ChangeKind tags the variants of a ChangeEvent.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is the tagged union distributed to live subscribers.
// Exactly one of Note (created) or Delta (updated) is set; deleted
// events carry only the id. NoteID is populated for every variant.
type ChangeEvent struct {
	Kind   ChangeKind `json:"kind"`
	NoteID int64      `json:"note_id"`
	Note   *Note      `json:"note,omitempty"`
	Delta  *Delta     `json:"delta,omitempty"`
}

// CreatedEvent builds a ChangeEvent carrying the full new note.
func CreatedEvent(note *Note) ChangeEvent {
	return ChangeEvent{Kind: ChangeCreated, NoteID: note.ID, Note: note}
}

// UpdatedEvent builds a ChangeEvent carrying the minimal delta.
func UpdatedEvent(delta *Delta) ChangeEvent {
	return ChangeEvent{Kind: ChangeUpdated, NoteID: delta.ID, Delta: delta}
}

// DeletedEvent builds a ChangeEvent carrying only the identifier.
func DeletedEvent(id int64) ChangeEvent {
	return ChangeEvent{Kind: ChangeDeleted, NoteID: id}
}
