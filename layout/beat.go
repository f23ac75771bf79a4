package layout

import "github.com/tabula-go/tabula"

type (
	BeatElement struct {
		Beat  *tabula.Beat
		Bar   *BarElement
		Index int // within the bar

		// Rect covers the labels of this beat, its notes and the duration
		// glyph. Notes of all beats on a line share the same top, so a beat
		// with fewer labels than its neighbours starts lower.
		Rect         Rect
		NotesRect    Rect
		DurationRect Rect
		Beam         *Beam // to the next beat, nil when not beamed
		Notes        []*NoteElement
		Labels       []*LabelElement

		width  float64
		notes  map[tabula.ID]*NoteElement
		labels map[tabula.ID]*LabelElement
	}

	// LabelElement is a row above the notes of a beat naming an effect,
	// e.g. "P.M.". Effects shared by several notes get a single label.
	LabelElement struct {
		Effect tabula.Effect
		Text   string
		Row    int
		Rect   Rect
	}

	// Beam connects the duration glyphs of two adjacent beats of a beam
	// group. Short is set when their durations differ and sits on the side
	// of the shorter one.
	Beam struct {
		Long  Rect
		Short *Rect
	}
)

func (b *BeatElement) Key() tabula.ID { return b.Beat.ID }
func (b *BeatElement) Bounds() Rect   { return b.Rect }
func (b *BeatElement) children() []Element {
	return append(asElements(b.Notes), asElements(b.Labels)...)
}

// LabelGap is the height the labels of this beat take above its notes.
func (b *BeatElement) LabelGap() float64 { return b.NotesRect.Y - b.Rect.Y }

func (b *BeatElement) look() any {
	var long, short Rect
	if b.Beam != nil {
		long = b.Beam.Long
		if b.Beam.Short != nil {
			short = *b.Beam.Short
		}
	}
	return struct {
		duration     tabula.Duration
		dots         int
		durationRect Rect
		long, short  Rect
	}{b.Beat.Duration, b.Beat.Dots, b.DurationRect, long, short}
}

func (l *LabelElement) Key() tabula.ID      { return "label/" + l.Effect.ID }
func (l *LabelElement) Bounds() Rect        { return l.Rect }
func (l *LabelElement) children() []Element { return nil }
func (l *LabelElement) look() any           { return l.Text }

func (t *Tab) newBeat(*tabula.Beat) *BeatElement {
	e := &BeatElement{}
	t.changes.created(e)
	return e
}

func (t *Tab) updateBeat(e *BeatElement, b *tabula.Beat) {
	e.Beat = b
	t.beats[b.ID] = e
	var st Stats
	e.notes, e.Notes, st = Reconcile(pointers(b.Notes), e.notes,
		func(n *tabula.Note) tabula.ID { return n.ID },
		t.newNote,
		func(ne *NoteElement, n *tabula.Note) {
			ne.Beat = e
			t.updateNote(ne, n)
		},
		evictInto[*NoteElement](t.changes))
	t.changes.Stats.Add(st)
	e.labels, e.Labels, st = Reconcile(labelledEffects(b), e.labels,
		func(ef tabula.Effect) tabula.ID { return ef.ID },
		func(tabula.Effect) *LabelElement {
			le := &LabelElement{}
			t.changes.created(le)
			return le
		},
		func(le *LabelElement, ef tabula.Effect) {
			le.Effect = ef
			le.Text = ef.Label()
		},
		evictInto[*LabelElement](t.changes))
	t.changes.Stats.Add(st)
}

// labelledEffects returns the effects of the beat that need a label row,
// each identity once, in string order.
func labelledEffects(b *tabula.Beat) []tabula.Effect {
	var ret []tabula.Effect
	seen := map[tabula.ID]bool{}
	for _, n := range b.Notes {
		for _, ef := range n.Effects {
			if tabula.NeedsLabel(ef.Type) && !seen[ef.ID] {
				seen[ef.ID] = true
				ret = append(ret, ef)
			}
		}
	}
	return ret
}

func (b *BeatElement) place(dim Dim, x, notesTop float64) {
	gap := float64(len(b.Labels)) * dim.LabelHeight
	top := notesTop - gap
	for i, l := range b.Labels {
		l.Row = i
		l.Rect = Rect{X: x, Y: top + float64(i)*dim.LabelHeight, Width: b.width, Height: dim.LabelHeight}
	}
	b.NotesRect = Rect{X: x, Y: notesTop, Width: b.width, Height: float64(len(b.Notes)) * dim.NoteHeight}
	for i, n := range b.Notes {
		n.place(dim, Rect{X: x, Y: notesTop + float64(i)*dim.NoteHeight, Width: b.width, Height: dim.NoteHeight})
	}
	b.Rect = Rect{X: x, Y: top, Width: b.width, Height: gap + b.NotesRect.Height + dim.DurationsHeight}
	b.DurationRect = centeredIn(b.Rect, dim.DurationGlyphWidth, b.NotesRect.Bottom(), dim.DurationsHeight)
}

// scaleHorBy scales the beat and everything in it. Centered parts are
// centered again in the scaled rects instead of being scaled themselves.
func (b *BeatElement) scaleHorBy(scale float64) {
	b.Rect.ScaleHorBy(scale)
	b.NotesRect.ScaleHorBy(scale)
	for _, l := range b.Labels {
		l.Rect.ScaleHorBy(scale)
	}
	for _, n := range b.Notes {
		n.scaleHorBy(scale)
	}
	b.DurationRect = centeredIn(b.Rect, b.DurationRect.Width, b.DurationRect.Y, b.DurationRect.Height)
}

func beamable(b *BeatElement) bool {
	return b.Beat.BeamGroup != "" && b.Beat.Duration <= tabula.Eighth
}

// beamTo computes the beam from b to next, clearing it when the two are
// not in the same beam group.
func (b *BeatElement) beamTo(dim Dim, next *BeatElement) {
	b.Beam = nil
	if next == nil || !beamable(b) || !beamable(next) || b.Beat.BeamGroup != next.Beat.BeamGroup {
		return
	}
	from, to := b.DurationRect.CenterX(), next.DurationRect.CenterX()
	y := b.DurationRect.Bottom() - dim.BeamHeight
	beam := &Beam{Long: Rect{X: from, Y: y, Width: to - from, Height: dim.BeamHeight}}
	if b.Beat.Duration != next.Beat.Duration {
		short := Rect{Y: y - 2*dim.BeamHeight, Width: dim.ShortBeamWidth, Height: dim.BeamHeight}
		if b.Beat.Duration < next.Beat.Duration {
			short.X = from
		} else {
			short.X = to - dim.ShortBeamWidth
		}
		beam.Short = &short
	}
	b.Beam = beam
}
