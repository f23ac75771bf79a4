package layout

import (
	"fmt"

	"github.com/tabula-go/tabula"
	"github.com/viterin/vek"
)

// Line is one row of bars. Lines are positional: they are matched by index
// between passes and the bars are flowed into them anew each time.
type Line struct {
	Index int
	Rect  Rect
	Bars  []*BarElement
	// LabelRows is the largest number of labels on any beat of the line.
	LabelRows int
	NotesRect Rect
}

func (l *Line) Key() tabula.ID      { return lineKey(l.Index) }
func (l *Line) Bounds() Rect        { return l.Rect }
func (l *Line) children() []Element { return nil }
func (l *Line) look() any {
	return struct {
		bars, labelRows int
		notes           Rect
	}{len(l.Bars), l.LabelRows, l.NotesRect}
}

func lineKey(i int) tabula.ID { return tabula.ID(fmt.Sprintf("line-%d", i)) }

// wrap breaks bars into lines no wider than lineWidth. A bar wider than a
// line gets a line of its own.
func wrap(bars []*BarElement, widths []float64, lineWidth float64) [][]*BarElement {
	var lines [][]*BarElement
	start := 0
	for i := range bars {
		if i > start && vek.Sum(widths[start:i+1]) > lineWidth {
			lines = append(lines, bars[start:i])
			start = i
		}
	}
	if start < len(bars) {
		lines = append(lines, bars[start:])
	}
	return lines
}

// place lays the bars out left to right from y. Unless it is the last line,
// the line is then stretched to the full line width. The last line is only
// ever shrunk.
func (l *Line) place(dim Dim, y float64, stringsCount int, last bool) {
	l.LabelRows = 0
	hasTuplets := false
	for _, b := range l.Bars {
		b.Line = l
		hasTuplets = hasTuplets || len(b.Tuplets) > 0
		for _, be := range b.Beats {
			l.LabelRows = max(l.LabelRows, len(be.Labels))
		}
	}
	notesTop := y + float64(l.LabelRows)*dim.LabelHeight
	notesHeight := float64(stringsCount) * dim.NoteHeight
	tupletTop := notesTop + notesHeight + dim.DurationsHeight
	height := tupletTop - y
	if hasTuplets {
		height += dim.TupletHeight
	}
	x := 0.0
	for _, b := range l.Bars {
		b.place(dim, x, y, height, notesTop, notesHeight)
		x = b.Rect.Right()
	}
	l.Rect = Rect{X: 0, Y: y, Width: x, Height: height}
	if x > 0 && (!last || x > dim.LineWidth) {
		scale := dim.LineWidth / x
		for _, b := range l.Bars {
			b.scaleHorBy(scale)
		}
		l.Rect.ScaleHorBy(scale)
	}
	l.NotesRect = Rect{X: 0, Y: notesTop, Width: l.Rect.Width, Height: notesHeight}
	for _, b := range l.Bars {
		b.decorate(dim, tupletTop)
	}
}
