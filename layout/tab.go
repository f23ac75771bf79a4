package layout

import "github.com/tabula-go/tabula"

// Tab is the laid out form of a track. Update brings it in line with the
// track, reusing the elements of entities that survived since the last
// call. Elements are owned by the Tab and only valid until the next Update.
type Tab struct {
	dim      Dim
	renderer Renderer
	track    *tabula.Track

	Bars  []*BarElement
	Lines []*Line

	bars    map[tabula.ID]*BarElement
	lines   map[tabula.ID]*Line
	beats   map[tabula.ID]*BeatElement
	notes   map[tabula.ID]*NoteElement
	order   []*BeatElement // document order
	changes *ChangeSet
	stats   Stats
	// looks holds how every element appeared after the last pass.
	looks map[Element]appearance
}

// NewTab returns an empty layout. renderer may be nil.
func NewTab(dim Dim, renderer Renderer) *Tab {
	return &Tab{dim: dim, renderer: renderer}
}

func (t *Tab) Dim() Dim { return t.dim }

// Stats returns the counts of the last Update.
func (t *Tab) Stats() Stats { return t.stats }

// Update lays out track. The returned change set lists the elements created
// and evicted by this pass; the renderer, if any, has been told about them
// by the time Update returns.
func (t *Tab) Update(track *tabula.Track) ChangeSet {
	cs := ChangeSet{}
	t.changes = &cs
	defer func() { t.changes = nil }()
	t.track = track
	t.beats = make(map[tabula.ID]*BeatElement, len(t.beats))
	t.notes = make(map[tabula.ID]*NoteElement, len(t.notes))

	var st Stats
	t.bars, t.Bars, st = Reconcile(pointers(track.Bars), t.bars,
		func(b *tabula.Bar) tabula.ID { return b.ID },
		t.newBar,
		t.updateBar,
		evictInto[*BarElement](t.changes))
	cs.Stats.Add(st)

	t.order = nil
	widths := make([]float64, len(t.Bars))
	var prev *tabula.Bar
	for i, b := range t.Bars {
		b.Index = i
		b.ShowHeader = needsHeader(prev, b.Bar)
		widths[i] = b.naturalWidth(t.dim)
		t.order = append(t.order, b.Beats...)
		prev = b.Bar
	}

	flowed := wrap(t.Bars, widths, t.dim.LineWidth)
	indexes := make([]int, len(flowed))
	for i := range indexes {
		indexes[i] = i
	}
	t.lines, t.Lines, st = Reconcile(indexes, t.lines, lineKey,
		func(int) *Line {
			l := &Line{}
			cs.created(l)
			return l
		},
		func(l *Line, i int) {
			l.Index = i
			l.Bars = flowed[i]
		},
		evictInto[*Line](t.changes))
	cs.Stats.Add(st)

	y := 0.0
	for i, l := range t.Lines {
		l.place(t.dim, y, track.Guitar.StringsCount, i == len(t.Lines)-1)
		y = l.Rect.Bottom() + t.dim.LineGap
	}
	t.connect()
	t.compareLooks(&cs)

	cs.Stats.Created = len(cs.Created)
	cs.Stats.Evicted = len(cs.Evicted)
	t.stats = cs.Stats
	if t.renderer != nil {
		for _, e := range cs.Evicted {
			t.renderer.Unrender(e)
		}
		for _, e := range cs.Updated {
			t.renderer.Update(e)
		}
		for _, e := range cs.Created {
			t.renderer.Render(e)
		}
	}
	tabula.Logger().Debug("layout pass",
		"created", cs.Stats.Created, "reused", cs.Stats.Reused, "updated", len(cs.Updated), "evicted", cs.Stats.Evicted,
		"lines", len(t.Lines))
	return cs
}

// compareLooks lists in cs the elements kept from the previous pass that
// now appear differently, and records the looks for the next pass.
func (t *Tab) compareLooks(cs *ChangeSet) {
	created := make(map[Element]bool, len(cs.Created))
	for _, e := range cs.Created {
		created[e] = true
	}
	looks := make(map[Element]appearance, len(t.looks))
	record := func(e Element) {
		a := appearance{bounds: e.Bounds(), look: e.look()}
		looks[e] = a
		if prev, ok := t.looks[e]; ok && !created[e] && prev != a {
			cs.Updated = append(cs.Updated, e)
		}
	}
	for _, l := range t.Lines {
		record(l)
	}
	for _, b := range t.Bars {
		walk(b, record)
	}
	t.looks = looks
}

// connect lays out slides and legato between notes on the same string of
// adjacent beats on one line.
func (t *Tab) connect() {
	for k, be := range t.order {
		var prev, next *BeatElement
		if k > 0 && t.order[k-1].Bar.Line == be.Bar.Line {
			prev = t.order[k-1]
		}
		if k+1 < len(t.order) && t.order[k+1].Bar.Line == be.Bar.Line {
			next = t.order[k+1]
		}
		for s, n := range be.Notes {
			n.connect(noteAt(prev, s), noteAt(next, s))
		}
	}
}

func noteAt(b *BeatElement, i int) *NoteElement {
	if b == nil || i >= len(b.Notes) {
		return nil
	}
	return b.Notes[i]
}

// Beat returns the element of the beat with the given id.
func (t *Tab) Beat(id tabula.ID) (*BeatElement, bool) {
	b, ok := t.beats[id]
	return b, ok
}

// Note returns the element of the note with the given id.
func (t *Tab) Note(id tabula.ID) (*NoteElement, bool) {
	n, ok := t.notes[id]
	return n, ok
}

// BeatRect returns the rectangle of a beat in document coordinates, e.g. to
// place a playback cursor.
func (t *Tab) BeatRect(id tabula.ID) (Rect, bool) {
	b, ok := t.beats[id]
	if !ok {
		return Rect{}, false
	}
	return b.Rect, true
}

// Beats returns the beat elements in document order.
func (t *Tab) Beats() []*BeatElement { return t.order }

// Height returns the height of the laid out track.
func (t *Tab) Height() float64 {
	if len(t.Lines) == 0 {
		return 0
	}
	return t.Lines[len(t.Lines)-1].Rect.Bottom()
}
