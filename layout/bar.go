package layout

import (
	"fmt"

	"github.com/tabula-go/tabula"
	"github.com/viterin/vek"
)

type (
	BarElement struct {
		Bar   *tabula.Bar
		Index int // within the track
		Line  *Line

		Rect Rect
		// HeaderRect holds time signature and tempo. It is empty unless
		// ShowHeader is set.
		HeaderRect Rect
		ShowHeader bool
		// Fits mirrors Bar.DurationsFit; a renderer shows bars that do not
		// fit differently.
		Fits    bool
		Beats   []*BeatElement
		Tuplets []*TupletElement

		beats   map[tabula.ID]*BeatElement
		tuplets map[tabula.ID]*TupletElement
	}

	// TupletElement is the bracket under the beats of a tuplet group.
	TupletElement struct {
		Group *tabula.TupletGroup
		Rect  Rect
		Text  string
	}
)

func (b *BarElement) Key() tabula.ID { return b.Bar.ID }
func (b *BarElement) Bounds() Rect   { return b.Rect }
func (b *BarElement) children() []Element {
	return append(asElements(b.Beats), asElements(b.Tuplets)...)
}

func (b *BarElement) look() any {
	return struct {
		beatsCount   int
		beatDuration tabula.Duration
		tempo        int
		repeat       tabula.RepeatStatus
		header       Rect
		fits         bool
	}{b.Bar.BeatsCount, b.Bar.BeatDuration, b.Bar.Tempo, b.Bar.Repeat, b.HeaderRect, b.Fits}
}

func (e *TupletElement) Key() tabula.ID      { return e.Group.ID }
func (e *TupletElement) Bounds() Rect        { return e.Rect }
func (e *TupletElement) children() []Element { return nil }
func (e *TupletElement) look() any           { return e.Text }

func (t *Tab) newBar(*tabula.Bar) *BarElement {
	e := &BarElement{}
	t.changes.created(e)
	return e
}

func (t *Tab) updateBar(e *BarElement, b *tabula.Bar) {
	e.Bar = b
	e.Fits = b.DurationsFit
	var st Stats
	e.beats, e.Beats, st = Reconcile(pointers(b.Beats), e.beats,
		func(b *tabula.Beat) tabula.ID { return b.ID },
		t.newBeat,
		func(be *BeatElement, beat *tabula.Beat) {
			be.Bar = e
			t.updateBeat(be, beat)
		},
		evictInto[*BeatElement](t.changes))
	t.changes.Stats.Add(st)
	e.tuplets, e.Tuplets, st = Reconcile(pointers(b.Tuplets), e.tuplets,
		func(g *tabula.TupletGroup) tabula.ID { return g.ID },
		func(*tabula.TupletGroup) *TupletElement {
			te := &TupletElement{}
			t.changes.created(te)
			return te
		},
		func(te *TupletElement, g *tabula.TupletGroup) {
			te.Group = g
			te.Text = tupletText(g)
		},
		evictInto[*TupletElement](t.changes))
	t.changes.Stats.Add(st)
	for i, be := range e.Beats {
		be.Index = i
		be.width = t.dim.BeatWidth(be.Beat.Duration, be.Beat.Dots)
		if b.TupletOf(be.Beat.ID) != nil {
			be.width *= t.dim.TupletWidthScale
		}
	}
}

func tupletText(g *tabula.TupletGroup) string {
	if g.IsStandard() {
		return fmt.Sprint(g.NormalCount)
	}
	return fmt.Sprintf("%d:%d", g.NormalCount, g.TupletCount)
}

// needsHeader reports whether the bar starts with a time signature and
// tempo: the first bar does, later ones when either changes.
func needsHeader(prev, cur *tabula.Bar) bool {
	return prev == nil ||
		prev.BeatsCount != cur.BeatsCount ||
		prev.BeatDuration != cur.BeatDuration ||
		prev.Tempo != cur.Tempo
}

func (b *BarElement) naturalWidth(dim Dim) float64 {
	widths := make([]float64, 0, len(b.Beats)+3)
	for _, be := range b.Beats {
		widths = append(widths, be.width)
	}
	widths = append(widths, 2*dim.BarPadding)
	if b.ShowHeader {
		widths = append(widths, dim.BarHeaderWidth)
	}
	if b.Bar.Repeat == tabula.RepeatEnd || b.Bar.Repeat == tabula.RepeatStartEnd {
		widths = append(widths, dim.RepeatWidth)
	}
	return vek.Sum(widths)
}

func (b *BarElement) place(dim Dim, x, top, height, notesTop, notesHeight float64) {
	b.Rect = Rect{X: x, Y: top, Width: b.naturalWidth(dim), Height: height}
	b.HeaderRect = Rect{}
	if b.ShowHeader {
		b.HeaderRect = Rect{X: x, Y: notesTop, Width: dim.BarHeaderWidth, Height: notesHeight}
		x += dim.BarHeaderWidth
	}
	x += dim.BarPadding
	for _, be := range b.Beats {
		be.place(dim, x, notesTop)
		x += be.width
	}
}

func (b *BarElement) scaleHorBy(scale float64) {
	b.Rect.ScaleHorBy(scale)
	if b.ShowHeader {
		b.HeaderRect.ScaleHorBy(scale)
	}
	for _, be := range b.Beats {
		be.scaleHorBy(scale)
	}
}

// decorate places beams and tuplet brackets from the final beat positions.
func (b *BarElement) decorate(dim Dim, tupletTop float64) {
	for i, be := range b.Beats {
		var next *BeatElement
		if i+1 < len(b.Beats) {
			next = b.Beats[i+1]
		}
		be.beamTo(dim, next)
	}
	for _, te := range b.Tuplets {
		te.Rect = Rect{}
		var first, last *BeatElement
		for _, tb := range te.Group.Beats {
			be := b.beats[tb.Beat]
			if be == nil {
				continue
			}
			if first == nil {
				first = be
			}
			last = be
		}
		if first == nil {
			continue
		}
		te.Rect = Rect{X: first.Rect.X, Y: tupletTop, Width: last.Rect.Right() - first.Rect.X, Height: dim.TupletHeight}
	}
}
