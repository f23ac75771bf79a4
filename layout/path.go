package layout

import "github.com/tabula-go/tabula"

type (
	// Path addresses a note slot by position: the line, the bar within the
	// line, the beat within the bar and the 1-based string. A path is only
	// meaningful for the layout it was taken from; after an Update it must
	// be resolved again.
	Path struct {
		Line, Bar, Beat, String int
	}

	Direction int
)

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Resolve walks the current lines to the beat and note a path points at.
func (t *Tab) Resolve(p Path) (*BeatElement, *NoteElement, bool) {
	if p.Line < 0 || p.Line >= len(t.Lines) {
		return nil, nil, false
	}
	l := t.Lines[p.Line]
	if p.Bar < 0 || p.Bar >= len(l.Bars) {
		return nil, nil, false
	}
	b := l.Bars[p.Bar]
	if p.Beat < 0 || p.Beat >= len(b.Beats) {
		return nil, nil, false
	}
	be := b.Beats[p.Beat]
	if p.String < 1 || p.String > len(be.Notes) {
		return nil, nil, false
	}
	return be, be.Notes[p.String-1], true
}

// PathOf returns the path of string s of a beat.
func (t *Tab) PathOf(beat tabula.ID, s int) (Path, bool) {
	be, ok := t.beats[beat]
	if !ok || s < 1 || s > len(be.Notes) {
		return Path{}, false
	}
	l := be.Bar.Line
	for i, b := range l.Bars {
		if b == be.Bar {
			return Path{Line: l.Index, Bar: i, Beat: be.Index, String: s}, true
		}
	}
	return Path{}, false
}

// Move returns the path one step from p. Left and Right stay on the string
// and cross beat, bar and line boundaries; Up and Down stay in the beat.
// At the edges of the document or the strings the move is refused.
func (t *Tab) Move(p Path, dir Direction) (Path, bool) {
	be, _, ok := t.Resolve(p)
	if !ok {
		return p, false
	}
	switch dir {
	case Up:
		if p.String <= 1 {
			return p, false
		}
		p.String--
		return p, true
	case Down:
		if p.String >= len(be.Notes) {
			return p, false
		}
		p.String++
		return p, true
	}
	k := t.orderIndex(be)
	if dir == Left {
		k--
	} else {
		k++
	}
	if k < 0 || k >= len(t.order) {
		return p, false
	}
	return t.PathOf(t.order[k].Beat.ID, p.String)
}

func (t *Tab) orderIndex(be *BeatElement) int {
	for i, b := range t.order {
		if b == be {
			return i
		}
	}
	return -1
}
