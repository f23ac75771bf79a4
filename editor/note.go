package editor

import "github.com/tabula-go/tabula"

// SetFret puts a fret on a note slot.
func (m *Model) SetFret(ref NoteRef, fret int) error {
	return m.setFret(ref, fret, MajorChange)
}

func (m *Model) setFret(ref NoteRef, fret int, severity ChangeSeverity) error {
	defer m.change("SetFret", severity)()
	n, _, err := m.note(ref)
	if err != nil {
		return m.cancel("SetFret", err)
	}
	if fret < 0 {
		return m.cancel("SetFret", rejected(tabula.ErrInvalidPosition, "fret %d is negative", fret))
	}
	if err := n.SetFret(fret); err != nil {
		return m.cancel("SetFret", err)
	}
	return nil
}

// ClearFret empties a note slot, dropping its effects. Effects shared with
// other notes of the beat stay on those notes.
func (m *Model) ClearFret(ref NoteRef) error {
	defer m.change("ClearFret", MajorChange)()
	n, _, err := m.note(ref)
	if err != nil {
		return m.cancel("ClearFret", err)
	}
	n.SetFret(tabula.NoFret)
	return nil
}
