package model

// Delta is the minimal field-level description of a note update.
// Title and Body are non-nil only when the corresponding field actually
// changed; Version and UpdatedAt always carry the post-update values so
// subscribers can apply the delta without refetching the note.
type Delta struct {
	ID        int64   `json:"id"`
	Title     *string `json:"title,omitempty"`
	Body      *string `json:"body,omitempty"`
	UpdatedAt int64   `json:"updated_at_unix_ms"`
	Version   int64   `json:"version"`
}

// Changed reports whether the delta carries any field change.
func (d *Delta) Changed() bool {
	return d.Title != nil || d.Body != nil
}

// ComputeDelta compares two snapshots of the same note and returns the
// minimal delta between them. ComputeDelta(x, x) yields a delta with nil
// Title and Body.
func ComputeDelta(old, new *Note) Delta {
	d := Delta{
		ID:        new.ID,
		UpdatedAt: new.UpdatedAt,
		Version:   new.Version,
	}
	if old.Title != new.Title {
		title := new.Title
		d.Title = &title
	}
	if old.Body != new.Body {
		body := new.Body
		d.Body = &body
	}
	return d
}

// Apply overlays the delta onto a note snapshot, overwriting only the
// fields the delta carries plus version and timestamp. Applying the
// delta computed from (old, new) onto old reproduces new.
func (d *Delta) Apply(n *Note) {
	if d.Title != nil {
		n.Title = *d.Title
	}
	if d.Body != nil {
		n.Body = *d.Body
	}
	n.UpdatedAt = d.UpdatedAt
	n.Version = d.Version
}
