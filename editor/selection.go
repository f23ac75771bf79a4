package editor

import (
	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
)

type (
	// NoteRef addresses a note slot by the identity of its beat and the
	// 1-based string, so it stays valid across re-flows of the layout.
	NoteRef struct {
		Beat   tabula.ID
		String int
	}

	// BeatRange is the beat selection made by dragging: every beat in
	// document order between Anchor and Head, both included.
	BeatRange struct {
		Anchor, Head tabula.ID
		Dragging     bool
	}
)

// Cursor returns the selected note slot.
func (m *Model) Cursor() NoteRef { return m.d.Cursor }

// SetCursor moves the cursor to ref without recording an undo entry, e.g.
// on a click. The range selection is cleared and the next change gets an
// undo entry of its own.
func (m *Model) SetCursor(ref NoteRef) error {
	if _, _, err := m.note(ref); err != nil {
		return err
	}
	m.d.Cursor = ref
	m.d.Selection = BeatRange{}
	m.fretEntry = fretEntry{}
	m.prevUndoKind = ""
	return nil
}

// Move moves the cursor one step in the layout. Consecutive moves share one
// undo entry.
func (m *Model) Move(dir layout.Direction) error {
	defer m.change("Move", MinorChange)()
	p, ok := m.tab.PathOf(m.d.Cursor.Beat, m.d.Cursor.String)
	if !ok {
		return m.cancel("Move", rejected(ErrNotFound, "cursor beat %s is not laid out", m.d.Cursor.Beat))
	}
	next, ok := m.tab.Move(p, dir)
	if !ok {
		m.changeCancel = true
		return nil
	}
	beat, note, _ := m.tab.Resolve(next)
	m.d.Cursor = NoteRef{Beat: beat.Beat.ID, String: note.Note.String}
	return nil
}

// StartDrag starts a range selection at beat.
func (m *Model) StartDrag(beat tabula.ID) error {
	if _, _, ok := m.d.Track.FindBeat(beat); !ok {
		return rejected(ErrNotFound, "no beat %s", beat)
	}
	m.d.Selection = BeatRange{Anchor: beat, Head: beat, Dragging: true}
	return nil
}

// DragTo extends the range selection to beat. Without a drag in progress it
// does nothing.
func (m *Model) DragTo(beat tabula.ID) error {
	if !m.d.Selection.Dragging {
		return nil
	}
	if _, _, ok := m.d.Track.FindBeat(beat); !ok {
		return rejected(ErrNotFound, "no beat %s", beat)
	}
	m.d.Selection.Head = beat
	return nil
}

// EndDrag finishes the range selection. A drag that is never ended leaves
// the selection as of the last DragTo.
func (m *Model) EndDrag() {
	m.d.Selection.Dragging = false
}

// ClearSelection drops the range selection.
func (m *Model) ClearSelection() {
	m.d.Selection = BeatRange{}
}

// SelectedBeats returns the identities of the beats in the range selection
// in document order, or the cursor beat when there is no range.
func (m *Model) SelectedBeats() []tabula.ID {
	s := m.d.Selection
	if s.Anchor == "" {
		if m.d.Cursor.Beat == "" {
			return nil
		}
		return []tabula.ID{m.d.Cursor.Beat}
	}
	var ret []tabula.ID
	inside := false
	for i := range m.d.Track.Bars {
		for _, b := range m.d.Track.Bars[i].Beats {
			edge := b.ID == s.Anchor || b.ID == s.Head
			if edge && !inside {
				inside = true
				ret = append(ret, b.ID)
				if s.Anchor == s.Head {
					return ret
				}
				continue
			}
			if inside {
				ret = append(ret, b.ID)
				if edge {
					return ret
				}
			}
		}
	}
	return ret
}

// SelectedNotes returns the notes an effect shortcut works on: every
// fretted note of a range selection, or the cursor note.
func (m *Model) SelectedNotes() []NoteRef {
	if m.d.Selection.Anchor == "" {
		return []NoteRef{m.d.Cursor}
	}
	var ret []NoteRef
	for _, id := range m.SelectedBeats() {
		b, _, err := m.beat(id)
		if err != nil {
			continue
		}
		for _, n := range b.Notes {
			if n.HasFret() {
				ret = append(ret, NoteRef{Beat: id, String: n.String})
			}
		}
	}
	return ret
}

func (m *Model) beat(id tabula.ID) (*tabula.Beat, *tabula.Bar, error) {
	i, j, ok := m.d.Track.FindBeat(id)
	if !ok {
		return nil, nil, rejected(ErrNotFound, "no beat %s", id)
	}
	bar := &m.d.Track.Bars[i]
	return &bar.Beats[j], bar, nil
}

func (m *Model) note(ref NoteRef) (*tabula.Note, *tabula.Beat, error) {
	b, _, err := m.beat(ref.Beat)
	if err != nil {
		return nil, nil, err
	}
	n := b.Note(ref.String)
	if n == nil {
		return nil, nil, rejected(tabula.ErrInvalidPosition, "beat %s has no string %d", ref.Beat, ref.String)
	}
	return n, b, nil
}

func (m *Model) bar(id tabula.ID) (*tabula.Bar, error) {
	for i := range m.d.Track.Bars {
		if m.d.Track.Bars[i].ID == id {
			return &m.d.Track.Bars[i], nil
		}
	}
	return nil, rejected(ErrNotFound, "no bar %s", id)
}
