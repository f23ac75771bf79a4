package layout_test

import (
	"math"
	"testing"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
)

func newTrack(t *testing.T, bars int) (*tabula.Track, *tabula.IDSource) {
	t.Helper()
	ids := tabula.NewSeededIDSource(1)
	tr, err := tabula.NewTrack(ids, "lead", tabula.StandardGuitar())
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	for len(tr.Bars) < bars {
		b, err := tabula.NewBar(ids, 6, 4, tabula.Quarter, 120)
		if err != nil {
			t.Fatalf("NewBar failed: %v", err)
		}
		tr.Bars = append(tr.Bars, b)
	}
	return &tr, ids
}

type recorder struct {
	rendered, updated, unrendered []layout.Element
}

func (r *recorder) Render(e layout.Element)   { r.rendered = append(r.rendered, e) }
func (r *recorder) Update(e layout.Element)   { r.updated = append(r.updated, e) }
func (r *recorder) Unrender(e layout.Element) { r.unrendered = append(r.unrendered, e) }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func beatRects(tab *layout.Tab) []layout.Rect {
	var ret []layout.Rect
	for _, b := range tab.Beats() {
		ret = append(ret, b.Rect, b.DurationRect)
		for _, n := range b.Notes {
			ret = append(ret, n.Rect, n.FretRect)
		}
	}
	return ret
}

func TestUpdateIsIdempotent(t *testing.T) {
	track, _ := newTrack(t, 5)
	track.Bars[1].Beats[2].Notes[0].Fret = 12
	rec := &recorder{}
	tab := layout.NewTab(layout.DefaultDim(), rec)
	first := tab.Update(track)
	if first.Stats.Created == 0 || first.Stats.Reused != 0 {
		t.Fatalf("first pass stats %+v", first.Stats)
	}
	if len(rec.rendered) != first.Stats.Created {
		t.Errorf("renderer saw %d elements, %d were created", len(rec.rendered), first.Stats.Created)
	}
	before := beatRects(tab)
	second := tab.Update(track)
	if second.Stats.Created != 0 || second.Stats.Evicted != 0 {
		t.Errorf("second pass created %d and evicted %d elements", second.Stats.Created, second.Stats.Evicted)
	}
	if len(second.Updated) != 0 || len(rec.updated) != 0 {
		t.Errorf("second pass updated %d elements", len(second.Updated))
	}
	if second.Stats.Reused != first.Stats.Created {
		t.Errorf("second pass reused %d elements, expected %d", second.Stats.Reused, first.Stats.Created)
	}
	after := beatRects(tab)
	if len(before) != len(after) {
		t.Fatalf("rect count changed")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("rect %d moved from %+v to %+v", i, before[i], after[i])
		}
	}
}

func TestUpdateReusesSiblings(t *testing.T) {
	track, ids := newTrack(t, 2)
	tab := layout.NewTab(layout.DefaultDim(), nil)
	tab.Update(track)
	beatsBefore := append([]*layout.BeatElement(nil), tab.Beats()...)
	bar0 := tab.Bars[0]

	track.Bars[1].Beats[1].Notes[2].Fret = 7
	cs := tab.Update(track)
	if cs.Stats.Created != 0 || cs.Stats.Evicted != 0 {
		t.Errorf("changing a fret created %d and evicted %d elements", cs.Stats.Created, cs.Stats.Evicted)
	}

	note := &track.Bars[1].Beats[1].Notes[2]
	vib, _ := tabula.NewEffect(ids.New(), tabula.Vibrato, nil)
	if err := note.ApplyEffect(vib); err != nil {
		t.Fatal(err)
	}
	cs = tab.Update(track)
	// the effect on the note and the label above the beat
	if cs.Stats.Created != 2 || cs.Stats.Evicted != 0 {
		t.Errorf("adding vibrato: stats %+v, expected 2 created", cs.Stats)
	}
	for i, b := range tab.Beats() {
		if b != beatsBefore[i] {
			t.Errorf("beat element %d was replaced", i)
		}
	}
	if tab.Bars[0] != bar0 {
		t.Errorf("untouched bar element was replaced")
	}
}

func TestLabelGap(t *testing.T) {
	track, ids := newTrack(t, 1)
	dim := layout.DefaultDim()
	tab := layout.NewTab(dim, nil)
	tab.Update(track)
	beatID := track.Bars[0].Beats[0].ID
	be, _ := tab.Beat(beatID)
	height := be.Rect.Height
	notesTop := be.NotesRect.Y

	beat := &track.Bars[0].Beats[0]
	beat.Notes[0].Fret = 3
	beat.Notes[1].Fret = 5
	pm, _ := tabula.NewEffect(ids.New(), tabula.PalmMute, nil)
	beat.Notes[0].ApplyEffect(pm)
	beat.Notes[1].ApplyEffect(pm)
	tab.Update(track)
	be, _ = tab.Beat(beatID)
	if len(be.Labels) != 1 {
		t.Fatalf("a palm mute shared by two notes should get one label, got %d", len(be.Labels))
	}
	if !almostEqual(be.Rect.Height, height+dim.LabelHeight) {
		t.Errorf("beat height %v, expected %v", be.Rect.Height, height+dim.LabelHeight)
	}
	if !almostEqual(be.LabelGap(), dim.LabelHeight) {
		t.Errorf("label gap %v", be.LabelGap())
	}
	bend, _ := tabula.NewEffect(ids.New(), tabula.Bend, tabula.BendOptions{BendPitch: 1})
	beat.Notes[0].ApplyEffect(bend)
	tab.Update(track)
	if !almostEqual(be.Rect.Height, height+2*dim.LabelHeight) {
		t.Errorf("two labels: beat height %v", be.Rect.Height)
	}
	if be.Labels[1].Text != "B 1" {
		t.Errorf("bend label %q", be.Labels[1].Text)
	}
	other, _ := tab.Beat(track.Bars[0].Beats[1].ID)
	if !almostEqual(other.NotesRect.Y, be.NotesRect.Y) {
		t.Errorf("notes of a beat without labels should line up with the labelled one")
	}
	if !almostEqual(be.NotesRect.Y-notesTop, 2*dim.LabelHeight) {
		t.Errorf("notes were pushed down by %v", be.NotesRect.Y-notesTop)
	}

	beat.Notes[0].RemoveEffect(tabula.Bend, nil)
	beat.Notes[0].RemoveEffectID(pm.ID)
	beat.Notes[1].RemoveEffectID(pm.ID)
	cs := tab.Update(track)
	if !almostEqual(be.Rect.Height, height) {
		t.Errorf("beat height %v after removing labels, expected %v", be.Rect.Height, height)
	}
	// two labels and three note effects
	if cs.Stats.Evicted != 5 {
		t.Errorf("evicted %d elements, expected 5", cs.Stats.Evicted)
	}
}

func TestEvictionReportsChildren(t *testing.T) {
	track, _ := newTrack(t, 1)
	rec := &recorder{}
	tab := layout.NewTab(layout.DefaultDim(), rec)
	tab.Update(track)
	gone := track.Bars[0].Beats[3].ID
	if err := track.Bars[0].RemoveBeats(3, 4); err != nil {
		t.Fatal(err)
	}
	track.Refit()
	tab.Update(track)
	// the beat and its six notes
	if len(rec.unrendered) != 7 {
		t.Errorf("unrendered %d elements, expected 7", len(rec.unrendered))
	}
	if _, ok := tab.BeatRect(gone); ok {
		t.Errorf("removed beat still has a rect")
	}
	if tab.Bars[0].Fits {
		t.Errorf("a 4/4 bar with three quarters should be flagged")
	}
}

func TestStretchRecentersDurations(t *testing.T) {
	track, _ := newTrack(t, 5)
	dim := layout.DefaultDim()
	tab := layout.NewTab(dim, nil)
	tab.Update(track)
	if len(tab.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(tab.Lines))
	}
	if !almostEqual(tab.Lines[0].Rect.Width, dim.LineWidth) {
		t.Errorf("full line width %v, expected %v", tab.Lines[0].Rect.Width, dim.LineWidth)
	}
	if tab.Lines[1].Rect.Width >= dim.LineWidth {
		t.Errorf("last line should keep its natural width")
	}
	for _, b := range tab.Lines[0].Bars[0].Beats {
		if !almostEqual(b.DurationRect.CenterX(), b.Rect.CenterX()) {
			t.Errorf("duration glyph at %v, beat center %v", b.DurationRect.CenterX(), b.Rect.CenterX())
		}
		if !almostEqual(b.DurationRect.Width, dim.DurationGlyphWidth) {
			t.Errorf("duration glyph was scaled to %v", b.DurationRect.Width)
		}
	}
	first := tab.Lines[0].Bars[0]
	if !first.ShowHeader || tab.Lines[0].Bars[1].ShowHeader {
		t.Errorf("only the first bar should show a header")
	}
	if second := tab.Lines[1].Bars[0]; second.Rect.Y <= first.Rect.Bottom() {
		t.Errorf("second line overlaps the first")
	}
}

func TestBeatWidth(t *testing.T) {
	dim := layout.DefaultDim()
	q := dim.DurationWidths["quarter"]
	for dots, f := range []float64{1, 1.05, 1.10} {
		if got := dim.BeatWidth(tabula.Quarter, dots); !almostEqual(got, q*f) {
			t.Errorf("quarter with %d dots: width %v, expected %v", dots, got, q*f)
		}
	}
	delete(dim.DurationWidths, "sixteenth")
	if err := dim.Validate(); err == nil {
		t.Errorf("Validate accepted dimensions without a sixteenth width")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("BeatWidth of a duration without a width should panic")
		}
	}()
	dim.BeatWidth(tabula.Sixteenth, 0)
}

func TestDefaultDimValid(t *testing.T) {
	if err := layout.DefaultDim().Validate(); err != nil {
		t.Errorf("embedded dimensions are invalid: %v", err)
	}
}

func TestBeams(t *testing.T) {
	track, ids := newTrack(t, 1)
	bar := &track.Bars[0]
	group := ids.New()
	for i := range bar.Beats {
		bar.Beats[i].Duration = tabula.Eighth
		bar.Beats[i].BeamGroup = group
	}
	bar.Beats[2].Duration = tabula.Sixteenth
	bar.Beats[3].BeamGroup = ""
	dim := layout.DefaultDim()
	tab := layout.NewTab(dim, nil)
	tab.Update(track)
	beats := tab.Bars[0].Beats
	if b := beats[0].Beam; b == nil || b.Short != nil {
		t.Errorf("two eighths should get a long beam only, got %+v", b)
	} else if !almostEqual(b.Long.Right(), beats[1].DurationRect.CenterX()) {
		t.Errorf("long beam ends at %v", b.Long.Right())
	}
	b := beats[1].Beam
	if b == nil || b.Short == nil {
		t.Fatalf("eighth to sixteenth should get a short beam")
	}
	if !almostEqual(b.Short.Right(), beats[2].DurationRect.CenterX()) {
		t.Errorf("short beam should hang off the sixteenth")
	}
	if beats[2].Beam != nil {
		t.Errorf("beam crossed into a beat outside the group")
	}
}

func TestTupletBracket(t *testing.T) {
	track, ids := newTrack(t, 1)
	bar := &track.Bars[0]
	extra, _ := tabula.NewBeat(ids, 6, tabula.Eighth)
	bar.Beats[0].Duration = tabula.Eighth
	bar.Beats[1].Duration = tabula.Eighth
	bar.InsertBeat(2, extra)
	g, err := tabula.BuildTupletGroup(ids.New(), []*tabula.Beat{&bar.Beats[0], &bar.Beats[1], &bar.Beats[2]}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := bar.AddTuplet(g); err != nil {
		t.Fatal(err)
	}
	track.Refit()
	dim := layout.DefaultDim()
	tab := layout.NewTab(dim, nil)
	tab.Update(track)
	be := tab.Bars[0]
	if len(be.Tuplets) != 1 || be.Tuplets[0].Text != "3" {
		t.Fatalf("tuplet elements %+v", be.Tuplets)
	}
	r := be.Tuplets[0].Rect
	if !almostEqual(r.X, be.Beats[0].Rect.X) || !almostEqual(r.Right(), be.Beats[2].Rect.Right()) {
		t.Errorf("bracket %+v does not span the group", r)
	}
	want := dim.DurationWidths["eighth"] * dim.TupletWidthScale
	if !almostEqual(be.Beats[0].Rect.Width, want) {
		t.Errorf("tuplet beat width %v, expected %v", be.Beats[0].Rect.Width, want)
	}
}

func TestSlides(t *testing.T) {
	track, ids := newTrack(t, 1)
	bar := &track.Bars[0]
	bar.Beats[0].Notes[1].Fret = 5
	bar.Beats[1].Notes[1].Fret = 7
	start, _ := tabula.NewEffect(ids.New(), tabula.SlideStart, nil)
	end, _ := tabula.NewEffect(ids.New(), tabula.SlideEnd, nil)
	bar.Beats[0].Notes[1].ApplyEffect(start)
	bar.Beats[1].Notes[1].ApplyEffect(end)
	tab := layout.NewTab(layout.DefaultDim(), nil)
	tab.Update(track)
	n, _ := tab.Note(bar.Beats[0].Notes[1].ID)
	e := n.Effects[0]
	if e.Direction != layout.SlideUp {
		t.Errorf("slide from 5 to 7 should go up")
	}
	next, _ := tab.Note(bar.Beats[1].Notes[1].ID)
	if !almostEqual(e.Rect.Right(), next.FretRect.X) {
		t.Errorf("slide ends at %v, next fret at %v", e.Rect.Right(), next.FretRect.X)
	}

	// an effect that was never validated against the note
	bar.Beats[2].Notes[0].Effects = append(bar.Beats[2].Notes[0].Effects, start)
	defer func() {
		if recover() == nil {
			t.Errorf("slide on a note without a fret should panic")
		}
	}()
	tab.Update(track)
}

func TestUpdateReportsChangedElements(t *testing.T) {
	track, _ := newTrack(t, 1)
	rec := &recorder{}
	tab := layout.NewTab(layout.DefaultDim(), rec)
	tab.Update(track)
	beat := &track.Bars[0].Beats[3]
	if err := beat.SetDuration(tabula.Eighth); err != nil {
		t.Fatal(err)
	}
	track.Refit()
	cs := tab.Update(track)
	if cs.Stats.Created != 0 || cs.Stats.Evicted != 0 {
		t.Fatalf("changing a duration created %d and evicted %d elements", cs.Stats.Created, cs.Stats.Evicted)
	}
	be, _ := tab.Beat(beat.ID)
	found := false
	for _, e := range cs.Updated {
		if e == layout.Element(be) {
			found = true
		}
	}
	if !found {
		t.Errorf("beat with a new duration is not in the updated elements")
	}
	if len(rec.updated) != len(cs.Updated) {
		t.Errorf("renderer saw %d updates, change set has %d", len(rec.updated), len(cs.Updated))
	}
	first, _ := tab.Beat(track.Bars[0].Beats[0].ID)
	for _, e := range cs.Updated {
		if e == layout.Element(first.Notes[2]) {
			t.Errorf("untouched note of the first beat reported as updated")
		}
	}
}

func TestKeysAreUnique(t *testing.T) {
	track, ids := newTrack(t, 1)
	beat := &track.Bars[0].Beats[0]
	vib, _ := tabula.NewEffect(ids.New(), tabula.Vibrato, nil)
	for _, s := range []int{1, 2} {
		n := beat.Note(s)
		n.Fret = 5
		if err := n.ApplyEffect(vib); err != nil {
			t.Fatal(err)
		}
	}
	rec := &recorder{}
	layout.NewTab(layout.DefaultDim(), rec).Update(track)
	seen := map[tabula.ID]bool{}
	for _, e := range rec.rendered {
		if seen[e.Key()] {
			t.Errorf("key %s rendered twice", e.Key())
		}
		seen[e.Key()] = true
	}
}
