package layout

import (
	"fmt"

	"github.com/tabula-go/tabula"
)

type (
	NoteElement struct {
		Note     *tabula.Note
		Beat     *BeatElement
		Rect     Rect
		FretRect Rect // empty when the note has no fret
		Effects  []*EffectElement

		effects map[tabula.ID]*EffectElement
	}

	// SlideDirection tells which way the line of a slide goes.
	SlideDirection int

	// EffectElement is the geometry of an effect on one note. Slides and
	// legato get a connector to the neighbouring note on the same string,
	// other effects mark the fret.
	EffectElement struct {
		Effect    tabula.Effect
		Note      *NoteElement
		Rect      Rect
		Direction SlideDirection
		Text      string
	}
)

const (
	SlideNone SlideDirection = iota
	SlideUp
	SlideDown
)

func (n *NoteElement) Key() tabula.ID { return n.Note.ID }
func (n *NoteElement) Bounds() Rect   { return n.Rect }
func (n *NoteElement) children() []Element {
	return asElements(n.Effects)
}

func (n *NoteElement) look() any {
	return struct {
		fret     int
		fretRect Rect
	}{n.Note.Fret, n.FretRect}
}

// Key combines the note and the effect, as an effect shared by several
// notes gets one element on each.
func (e *EffectElement) Key() tabula.ID      { return e.Note.Note.ID + "/" + e.Effect.ID }
func (e *EffectElement) Bounds() Rect        { return e.Rect }
func (e *EffectElement) children() []Element { return nil }
func (e *EffectElement) look() any {
	return struct {
		effect    tabula.Effect
		direction SlideDirection
		text      string
	}{e.Effect, e.Direction, e.Text}
}

func (t *Tab) newNote(n *tabula.Note) *NoteElement {
	e := &NoteElement{}
	t.changes.created(e)
	return e
}

func (t *Tab) updateNote(e *NoteElement, n *tabula.Note) {
	e.Note = n
	t.notes[n.ID] = e
	var st Stats
	e.effects, e.Effects, st = Reconcile(n.Effects, e.effects,
		func(ef tabula.Effect) tabula.ID { return ef.ID },
		func(tabula.Effect) *EffectElement {
			ee := &EffectElement{}
			t.changes.created(ee)
			return ee
		},
		func(ee *EffectElement, ef tabula.Effect) {
			ee.Effect = ef
			ee.Note = e
		},
		evictInto[*EffectElement](t.changes))
	t.changes.Stats.Add(st)
}

func fretDigits(fret int) int {
	if fret >= 10 {
		return 2
	}
	return 1
}

func (n *NoteElement) place(dim Dim, r Rect) {
	n.Rect = r
	n.FretRect = Rect{}
	if n.Note.HasFret() {
		n.FretRect = centeredIn(r, float64(fretDigits(n.Note.Fret))*dim.FretDigitWidth, r.Y, r.Height)
	}
}

func (n *NoteElement) scaleHorBy(scale float64) {
	n.Rect.ScaleHorBy(scale)
	if n.Note.HasFret() {
		n.FretRect = centeredIn(n.Rect, n.FretRect.Width, n.FretRect.Y, n.FretRect.Height)
	}
}

// connect derives the effect geometry once every note has its final
// position. prev and next are the notes on the same string in the
// neighbouring beats of the same line, nil at a line or document end.
func (n *NoteElement) connect(prev, next *NoteElement) {
	for _, e := range n.Effects {
		e.Direction = SlideNone
		e.Text = ""
		t := e.Effect.Type
		if t.IsSlide() || t.IsLegato() {
			if !n.Note.HasFret() {
				panic(fmt.Sprintf("layout: %v on note %s without a fret", t, n.Note.ID))
			}
		}
		switch t {
		case tabula.SlideStart:
			if fretted(next) {
				e.Rect = between(n.FretRect, next.FretRect)
				e.Direction = direction(n.Note.Fret, next.Note.Fret)
			} else {
				e.Rect = between(n.FretRect, Rect{X: n.Beat.Rect.Right(), Y: n.FretRect.Y, Height: n.FretRect.Height})
				e.Direction = SlideDown
			}
		case tabula.SlideEnd:
			if fretted(prev) {
				e.Rect = between(prev.FretRect, n.FretRect)
				e.Direction = direction(prev.Note.Fret, n.Note.Fret)
			} else {
				e.Rect = between(Rect{X: n.Beat.Rect.X, Y: n.FretRect.Y, Height: n.FretRect.Height}, n.FretRect)
				e.Direction = SlideUp
			}
		case tabula.HammerOnStart:
			end := n.Beat.Rect.Right()
			e.Text = "H"
			if fretted(next) {
				end = next.FretRect.CenterX()
				if next.Note.Fret < n.Note.Fret {
					e.Text = "P"
				}
			}
			half := n.Rect.Height / 2
			e.Rect = Rect{X: n.FretRect.CenterX(), Y: n.Rect.Y - half, Width: end - n.FretRect.CenterX(), Height: half}
		default:
			e.Rect = n.FretRect
			e.Text = e.Effect.Label()
		}
	}
}

func fretted(n *NoteElement) bool {
	return n != nil && n.Note.HasFret()
}

// between spans the gap from the right edge of a to the left edge of b.
func between(a, b Rect) Rect {
	return Rect{X: a.Right(), Y: a.Y, Width: b.X - a.Right(), Height: a.Height}
}

func direction(from, to int) SlideDirection {
	if to > from {
		return SlideUp
	}
	return SlideDown
}
