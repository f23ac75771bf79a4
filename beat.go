package tabula

import "slices"

// Beat is a timing slot of a bar holding one note slot per string.
// Notes[i] is the slot of string i+1.
type Beat struct {
	ID        ID
	Duration  Duration
	Dots      int
	BeamGroup ID `yaml:",omitempty"` // beats sharing a non-empty group are beamed
	Notes     []Note
}

// NewBeat returns a beat with an empty slot for every string.
func NewBeat(ids *IDSource, stringsCount int, d Duration) (Beat, error) {
	if !d.Valid() {
		return Beat{}, invalid(ErrUnknownDuration, "unknown duration %v", float64(d))
	}
	b := Beat{ID: ids.New(), Duration: d, Notes: make([]Note, stringsCount)}
	for i := range b.Notes {
		b.Notes[i] = NewNote(ids.New(), i+1)
	}
	return b, nil
}

// BaseDuration is the note value scaled by the dots, without tuplet scaling.
func (b *Beat) BaseDuration() float64 {
	return float64(b.Duration) * DotScale(b.Dots)
}

// IsEmpty reports whether no slot holds a fretted note.
func (b *Beat) IsEmpty() bool {
	return !slices.ContainsFunc(b.Notes, func(n Note) bool { return n.HasFret() })
}

// Note returns the slot of string s, or nil when s is out of range.
func (b *Beat) Note(s int) *Note {
	if s < 1 || s > len(b.Notes) {
		return nil
	}
	return &b.Notes[s-1]
}

// NoteByID returns the slot with the given identity.
func (b *Beat) NoteByID(id ID) *Note {
	for i := range b.Notes {
		if b.Notes[i].ID == id {
			return &b.Notes[i]
		}
	}
	return nil
}

// SetDuration changes the note value.
func (b *Beat) SetDuration(d Duration) error {
	if !d.Valid() {
		return invalid(ErrUnknownDuration, "unknown duration %v", float64(d))
	}
	b.Duration = d
	return nil
}

// SetDots changes the dot count, 0..MaxDots.
func (b *Beat) SetDots(dots int) error {
	if dots < 0 || dots > MaxDots {
		return invalid(ErrInvalidField, "dots must be within 0..%d, got %d", MaxDots, dots)
	}
	b.Dots = dots
	return nil
}

// Validate checks the beat against the string count of its track.
func (b *Beat) Validate(stringsCount int) error {
	if !b.Duration.Valid() {
		return invalid(ErrUnknownDuration, "beat %s: unknown duration %v", b.ID, float64(b.Duration))
	}
	if b.Dots < 0 || b.Dots > MaxDots {
		return invalid(ErrInvalidField, "beat %s: dots must be within 0..%d, got %d", b.ID, MaxDots, b.Dots)
	}
	if len(b.Notes) != stringsCount {
		return invalid(ErrInvalidPosition, "beat %s: has %d note slots for %d strings", b.ID, len(b.Notes), stringsCount)
	}
	for i, n := range b.Notes {
		if n.String != i+1 {
			return invalid(ErrInvalidPosition, "beat %s: slot %d holds string %d", b.ID, i, n.String)
		}
		if n.Fret != NoFret && (n.Fret < 0 || n.Fret > MaxFret) {
			return invalid(ErrInvalidPosition, "beat %s: fret %d out of range", b.ID, n.Fret)
		}
	}
	return nil
}

// Copy makes a deep copy of a Beat, keeping identities.
func (b *Beat) Copy() Beat {
	notes := make([]Note, len(b.Notes))
	for i := range b.Notes {
		notes[i] = b.Notes[i].Copy()
	}
	return Beat{ID: b.ID, Duration: b.Duration, Dots: b.Dots, BeamGroup: b.BeamGroup, Notes: notes}
}

// Clone copies the beat with fresh identities for the beat, its notes and
// its effects. Effects shared between notes stay shared, and so do beam groups
// when the same remap is used for several beats.
func (b *Beat) Clone(ids *IDSource, remap map[ID]ID) Beat {
	c := Beat{ID: ids.New(), Duration: b.Duration, Dots: b.Dots, Notes: make([]Note, len(b.Notes))}
	if b.BeamGroup != "" {
		c.BeamGroup = remapID(ids, remap, b.BeamGroup)
	}
	for i := range b.Notes {
		c.Notes[i] = b.Notes[i].clone(ids, remap)
	}
	return c
}
