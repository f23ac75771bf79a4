package editor_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/editor"
	"github.com/tabula-go/tabula/layout"
)

func newModel(t *testing.T) *editor.Model {
	t.Helper()
	ids := tabula.NewSeededIDSource(1)
	track, err := tabula.NewTrack(ids, "lead", tabula.StandardGuitar())
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	bar, err := tabula.NewBar(ids, 6, 4, tabula.Quarter, 120)
	if err != nil {
		t.Fatalf("NewBar failed: %v", err)
	}
	track.Bars = append(track.Bars, bar)
	return editor.NewModel(track, ids, layout.DefaultDim(), nil)
}

func beatID(m *editor.Model, bar, beat int) tabula.ID {
	return m.Track().Bars[bar].Beats[beat].ID
}

func note(m *editor.Model, bar, beat, s int) *tabula.Note {
	return m.Track().Beat(bar, beat).Note(s)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := newModel(t)
	before := m.Track().Copy()
	ref := editor.NoteRef{Beat: beatID(m, 0, 1), String: 3}
	if err := m.SetFret(ref, 7); err != nil {
		t.Fatalf("SetFret failed: %v", err)
	}
	if _, err := m.ApplyEffect([]editor.NoteRef{ref}, tabula.PalmMute, nil); err != nil {
		t.Fatalf("ApplyEffect failed: %v", err)
	}
	if err := m.SetDuration([]tabula.ID{beatID(m, 1, 0)}, tabula.Eighth); err != nil {
		t.Fatalf("SetDuration failed: %v", err)
	}
	after := m.Track().Copy()
	if m.Track().Bars[1].DurationsFit {
		t.Errorf("bar with an eighth and three quarters should not fit")
	}
	for range 3 {
		if err := m.History().Undo().Do(); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual(before, *m.Track()) {
		t.Errorf("undo did not restore the track")
	}
	if m.History().Undo().Enabled() {
		t.Errorf("undo stack should be empty")
	}
	for range 3 {
		m.History().Redo().Do()
	}
	if !reflect.DeepEqual(after, *m.Track()) {
		t.Errorf("redo did not restore the edited track")
	}
}

func TestRejectedCommandLeavesModelUnchanged(t *testing.T) {
	m := newModel(t)
	before := m.Track().Copy()
	ref := editor.NoteRef{Beat: beatID(m, 0, 0), String: 1}
	_, err := m.ApplyEffect([]editor.NoteRef{ref}, tabula.Vibrato, nil)
	if !errors.Is(err, tabula.ErrNoFret) {
		t.Errorf("vibrato on an empty slot: error %v, expected ErrNoFret", err)
	}
	if err := m.SetFret(ref, 25); !tabula.IsValidation(err) {
		t.Errorf("fret 25: error %v, expected a validation error", err)
	}
	_, err = m.ApplyEffect([]editor.NoteRef{ref}, tabula.Bend, nil)
	if !errors.Is(err, tabula.ErrInvalidEffectOptions) {
		t.Errorf("bend without options: error %v", err)
	}
	if !reflect.DeepEqual(before, *m.Track()) {
		t.Errorf("rejected commands changed the track")
	}
	if undo, _ := m.History().Depth(); undo != 0 {
		t.Errorf("rejected commands left %d undo entries", undo)
	}
}

func TestVibratoSharedIdentity(t *testing.T) {
	m := newModel(t)
	b := beatID(m, 0, 0)
	m.SetFret(editor.NoteRef{Beat: b, String: 1}, 3)
	m.SetFret(editor.NoteRef{Beat: b, String: 2}, 5)
	res, err := m.ApplyEffect([]editor.NoteRef{{Beat: b, String: 1}}, tabula.Vibrato, nil)
	if err != nil {
		t.Fatalf("ApplyEffect failed: %v", err)
	}
	if res.Succeeded() != 2 {
		t.Errorf("vibrato should reach both fretted notes, results %+v", res)
	}
	n1, n2 := note(m, 0, 0, 1), note(m, 0, 0, 2)
	if len(n1.Effects) != 1 || len(n2.Effects) != 1 || n1.Effects[0].ID != n2.Effects[0].ID {
		t.Fatalf("notes do not share one vibrato: %v %v", n1.Effects, n2.Effects)
	}
	be, _ := m.Tab().Beat(b)
	if len(be.Labels) != 1 {
		t.Errorf("shared vibrato should have one label, got %d", len(be.Labels))
	}
	if _, err := m.RemoveEffect([]editor.NoteRef{{Beat: b, String: 2}}, tabula.Vibrato, nil); err != nil {
		t.Fatalf("RemoveEffect failed: %v", err)
	}
	if len(note(m, 0, 0, 1).Effects) != 0 || len(note(m, 0, 0, 2).Effects) != 0 {
		t.Errorf("removing the vibrato from one note should remove it from both")
	}
}

func TestApplyEffectPartialSuccess(t *testing.T) {
	m := newModel(t)
	fretted := editor.NoteRef{Beat: beatID(m, 0, 0), String: 2}
	empty := editor.NoteRef{Beat: beatID(m, 0, 1), String: 2}
	m.SetFret(fretted, 9)
	undoBefore, _ := m.History().Depth()
	res, err := m.ApplyEffect([]editor.NoteRef{fretted, empty}, tabula.Bend, tabula.BendOptions{BendPitch: 0.5})
	if err != nil {
		t.Fatalf("partial success should not reject the command: %v", err)
	}
	if len(res) != 2 || res[0].Err != nil || !errors.Is(res[1].Err, tabula.ErrNoFret) {
		t.Errorf("unexpected results %+v", res)
	}
	if res.Err() == nil {
		t.Errorf("Results.Err should report the failed note")
	}
	if undo, _ := m.History().Depth(); undo != undoBefore+1 {
		t.Errorf("partial success should add one undo entry")
	}
	if !note(m, 0, 0, 2).HasEffect(tabula.Bend) {
		t.Errorf("bend missing on the fretted note")
	}
}

func TestCopyPasteFreshIdentities(t *testing.T) {
	m := newModel(t)
	src := beatID(m, 0, 0)
	m.SetFret(editor.NoteRef{Beat: src, String: 1}, 3)
	m.SetFret(editor.NoteRef{Beat: src, String: 2}, 5)
	m.ApplyEffect([]editor.NoteRef{{Beat: src, String: 1}}, tabula.Vibrato, nil)
	if _, err := m.Copy([]tabula.ID{src}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	at := beatID(m, 1, 2)
	if err := m.Paste(at); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	bar := m.Track().Bars[1]
	if len(bar.Beats) != 5 {
		t.Fatalf("bar has %d beats after paste", len(bar.Beats))
	}
	pasted := bar.Beats[2]
	orig := m.Track().Bars[0].Beats[0]
	if pasted.ID == orig.ID || pasted.Notes[0].ID == orig.Notes[0].ID {
		t.Errorf("pasted beat reuses identities")
	}
	if pasted.Notes[0].Fret != 3 || pasted.Notes[1].Fret != 5 {
		t.Errorf("pasted frets %d %d", pasted.Notes[0].Fret, pasted.Notes[1].Fret)
	}
	e1, e2 := pasted.Notes[0].Effects[0].ID, pasted.Notes[1].Effects[0].ID
	if e1 != e2 || e1 == orig.Notes[0].Effects[0].ID {
		t.Errorf("pasted vibrato should be shared and fresh: %s %s", e1, e2)
	}
	if m.Cursor().Beat != pasted.ID {
		t.Errorf("cursor should be on the pasted beat")
	}
	if bar.DurationsFit {
		t.Errorf("five quarters should not fit 4/4")
	}
	if _, ok := m.Tab().BeatRect(pasted.ID); !ok {
		t.Errorf("pasted beat was not laid out")
	}
}

func TestTwoDigitFret(t *testing.T) {
	m := newModel(t)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.KeyEvent(editor.KeyEvent{Name: "1", Time: t0})
	m.KeyEvent(editor.KeyEvent{Name: "2", Time: t0.Add(100 * time.Millisecond)})
	if f := note(m, 0, 0, 1).Fret; f != 12 {
		t.Fatalf("fret %d, expected 12", f)
	}
	m.History().Undo().Do()
	if note(m, 0, 0, 1).HasFret() {
		t.Errorf("one undo should remove the whole fret entry")
	}
	m.KeyEvent(editor.KeyEvent{Name: "1", Time: t0})
	m.KeyEvent(editor.KeyEvent{Name: "2", Time: t0.Add(time.Second)})
	if f := note(m, 0, 0, 1).Fret; f != 2 {
		t.Errorf("slow second digit: fret %d, expected 2", f)
	}
	m.KeyEvent(editor.KeyEvent{Name: "5", Time: t0.Add(1100 * time.Millisecond)})
	if f := note(m, 0, 0, 1).Fret; f != 5 {
		t.Errorf("25 is above the last fret: fret %d, expected 5", f)
	}
}

func TestKeyBindings(t *testing.T) {
	m := newModel(t)
	t0 := time.Now()
	m.KeyEvent(editor.KeyEvent{Name: "5", Time: t0})
	handled, err := m.KeyEvent(editor.KeyEvent{Name: "V", Shift: true})
	if !handled || err != nil {
		t.Fatalf("shift+V: handled %v, error %v", handled, err)
	}
	if !note(m, 0, 0, 1).HasEffect(tabula.Vibrato) {
		t.Errorf("shift+V should add vibrato")
	}
	m.KeyEvent(editor.KeyEvent{Name: "V", Shift: true})
	if note(m, 0, 0, 1).HasEffect(tabula.Vibrato) {
		t.Errorf("second shift+V should remove vibrato")
	}
	m.KeyEvent(editor.KeyEvent{Name: "B", Shift: true})
	n := note(m, 0, 0, 1)
	if len(n.Effects) != 1 || n.Effects[0].Options != (tabula.BendOptions{BendPitch: 1}) {
		t.Errorf("shift+B effects %+v", n.Effects)
	}
	m.KeyEvent(editor.KeyEvent{Name: "Z", Ctrl: true})
	if note(m, 0, 0, 1).HasEffect(tabula.Bend) {
		t.Errorf("ctrl+Z should undo the bend")
	}
	m.KeyEvent(editor.KeyEvent{Name: "Right"})
	if m.Cursor().Beat != beatID(m, 0, 1) {
		t.Errorf("Right should move the cursor to the next beat")
	}
	if handled, _ := m.KeyEvent(editor.KeyEvent{Name: "Q", Ctrl: true}); handled {
		t.Errorf("ctrl+Q is not bound")
	}
}

func TestMoveSharesUndoEntry(t *testing.T) {
	m := newModel(t)
	start := m.Cursor()
	m.Move(layout.Right)
	m.Move(layout.Right)
	m.Move(layout.Down)
	if c := m.Cursor(); c.Beat != beatID(m, 0, 2) || c.String != 2 {
		t.Fatalf("cursor at %+v", c)
	}
	if undo, _ := m.History().Depth(); undo != 1 {
		t.Errorf("moves made %d undo entries, expected 1", undo)
	}
	m.History().Undo().Do()
	if m.Cursor() != start {
		t.Errorf("undo should move the cursor back")
	}
	if err := m.Move(layout.Left); err != nil {
		t.Errorf("a refused move is not an error: %v", err)
	}
	if undo, _ := m.History().Depth(); undo != 0 {
		t.Errorf("a refused move should not make an undo entry")
	}
}

func TestDeleteBeats(t *testing.T) {
	m := newModel(t)
	m.SetCursor(editor.NoteRef{Beat: beatID(m, 0, 3), String: 1})
	next := beatID(m, 1, 0)
	var all []tabula.ID
	for i := range m.Track().Bars {
		for _, b := range m.Track().Bars[i].Beats {
			all = append(all, b.ID)
		}
	}
	if err := m.DeleteBeats(all); !errors.Is(err, tabula.ErrInvalidPosition) {
		t.Errorf("deleting every beat: error %v", err)
	}
	if err := m.DeleteBeats(all[:4]); err != nil {
		t.Fatalf("DeleteBeats failed: %v", err)
	}
	if len(m.Track().Bars) != 1 {
		t.Errorf("the emptied bar should be removed, %d bars left", len(m.Track().Bars))
	}
	if m.Cursor().Beat != next {
		t.Errorf("cursor should move to the beat after the deleted ones")
	}
	if len(m.Tab().Bars) != 1 {
		t.Errorf("layout still has %d bars", len(m.Tab().Bars))
	}
}

func TestDragSelection(t *testing.T) {
	m := newModel(t)
	m.StartDrag(beatID(m, 1, 1))
	m.DragTo(beatID(m, 0, 2))
	m.EndDrag()
	got := m.SelectedBeats()
	want := []tabula.ID{beatID(m, 0, 2), beatID(m, 0, 3), beatID(m, 1, 0), beatID(m, 1, 1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selected %v, expected %v", got, want)
	}
	m.DragTo(beatID(m, 1, 3))
	if len(m.SelectedBeats()) != 4 {
		t.Errorf("DragTo after EndDrag changed the selection")
	}
	if err := m.SetDuration(got, tabula.Eighth); err != nil {
		t.Fatal(err)
	}
	if m.Track().Bars[0].DurationsFit || m.Track().Bars[1].DurationsFit {
		t.Errorf("both bars lost two eighths worth of time")
	}
}

func TestMakeTuplet(t *testing.T) {
	m := newModel(t)
	first, _ := m.InsertBeat(beatID(m, 0, 0))
	beats := []tabula.ID{beatID(m, 0, 0), first, beatID(m, 0, 2)}
	if err := m.SetDuration(beats, tabula.Eighth); err != nil {
		t.Fatal(err)
	}
	// one triplet of eighths and two quarters leaves a quarter missing
	if err := m.MakeTuplet(beats, 3, 2); err != nil {
		t.Fatalf("MakeTuplet failed: %v", err)
	}
	if err := m.MakeTuplet(beats[:1], 3, 2); !errors.Is(err, tabula.ErrInvalidTuplet) {
		t.Errorf("beat already in a tuplet: error %v", err)
	}
	if len(m.Tab().Bars[0].Tuplets) != 1 {
		t.Errorf("tuplet was not laid out")
	}
}

type fakePlayer struct {
	playing bool
	beat    tabula.ID
}

func (p *fakePlayer) IsPlaying() bool                { return p.playing }
func (p *fakePlayer) CurrentBeat() (tabula.ID, bool) { return p.beat, p.beat != "" }
func (p *fakePlayer) TogglePlay()                    { p.playing = !p.playing }

func TestPlaybackCursor(t *testing.T) {
	m := newModel(t)
	if m.TogglePlay().Enabled() {
		t.Errorf("play should be disabled without a player")
	}
	p := &fakePlayer{beat: beatID(m, 1, 2)}
	m.SetPlayer(p)
	if _, ok := m.PlaybackCursor(); ok {
		t.Errorf("no cursor when not playing")
	}
	m.KeyEvent(editor.KeyEvent{Name: "Space"})
	r, ok := m.PlaybackCursor()
	want, _ := m.Tab().BeatRect(p.beat)
	if !ok || r != want {
		t.Errorf("playback cursor %+v, expected %+v", r, want)
	}
}

func TestTempoInt(t *testing.T) {
	m := newModel(t)
	tempo := m.Tempo().Int()
	tempo.Add(1)
	tempo.Add(1)
	if tempo.Value() != 122 {
		t.Errorf("tempo %d, expected 122", tempo.Value())
	}
	if undo, _ := m.History().Depth(); undo != 1 {
		t.Errorf("tempo steps made %d undo entries", undo)
	}
	if tempo.Set(5000) && tempo.Value() != tabula.MaxTempo {
		t.Errorf("tempo should clamp to %d", tabula.MaxTempo)
	}
}

func TestRejectedCommandKeepsLayoutInSync(t *testing.T) {
	m := newModel(t)
	b := beatID(m, 0, 0)
	err := m.SetDuration([]tabula.ID{b, "missing"}, tabula.Eighth)
	if !errors.Is(err, editor.ErrNotFound) {
		t.Fatalf("unknown beat: error %v, expected ErrNotFound", err)
	}
	if d := m.Track().Bars[0].Beats[0].Duration; d != tabula.Quarter {
		t.Fatalf("rejected command left duration %v", d)
	}
	for i := range m.Track().Bars {
		for j := range m.Track().Bars[i].Beats {
			beat := &m.Track().Bars[i].Beats[j]
			e, ok := m.Tab().Beat(beat.ID)
			if !ok {
				t.Fatalf("beat %s is not laid out", beat.ID)
			}
			if e.Beat != beat {
				t.Errorf("element of beat %d/%d does not point into the track", i, j)
			}
		}
	}
	if e, _ := m.Tab().Beat(b); e.Beat.Duration != tabula.Quarter {
		t.Errorf("layout sees duration %v after the rejected command", e.Beat.Duration)
	}
}

func TestTwoDigitFretAfterUnchangedFirstDigit(t *testing.T) {
	m := newModel(t)
	a := editor.NoteRef{Beat: beatID(m, 0, 0), String: 1}
	b := editor.NoteRef{Beat: beatID(m, 0, 1), String: 1}
	if err := m.SetFret(b, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFret(a, 5); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCursor(b); err != nil {
		t.Fatal(err)
	}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.KeyEvent(editor.KeyEvent{Name: "1", Time: t0})
	m.KeyEvent(editor.KeyEvent{Name: "2", Time: t0.Add(100 * time.Millisecond)})
	if f := note(m, 0, 1, 1).Fret; f != 12 {
		t.Fatalf("fret %d, expected 12", f)
	}
	if undo, _ := m.History().Depth(); undo != 3 {
		t.Errorf("undo depth %d, expected 3", undo)
	}
	m.History().Undo().Do()
	if fa, fb := note(m, 0, 0, 1).Fret, note(m, 0, 1, 1).Fret; fa != 5 || fb != 1 {
		t.Errorf("after one undo frets are %d and %d, expected 5 and 1", fa, fb)
	}
}

func TestInsertInsideTupletRejected(t *testing.T) {
	m := newModel(t)
	beats := []tabula.ID{beatID(m, 0, 0), beatID(m, 0, 1), beatID(m, 0, 2)}
	if err := m.SetDuration(beats, tabula.Eighth); err != nil {
		t.Fatal(err)
	}
	if err := m.MakeTuplet(beats, 3, 2); err != nil {
		t.Fatal(err)
	}
	before := m.Track().Copy()
	if _, err := m.InsertBeat(beats[0]); !errors.Is(err, tabula.ErrInvalidTuplet) {
		t.Errorf("insert inside the triplet: error %v", err)
	}
	if _, err := m.Copy(beats[:1]); err != nil {
		t.Fatal(err)
	}
	if err := m.Paste(beats[1]); !errors.Is(err, tabula.ErrInvalidTuplet) {
		t.Errorf("paste inside the triplet: error %v", err)
	}
	if !reflect.DeepEqual(before, *m.Track()) {
		t.Errorf("rejected inserts changed the track")
	}
	if _, err := m.InsertBeat(beats[2]); err != nil {
		t.Errorf("insert after the triplet failed: %v", err)
	}
	if err := m.Track().Validate(); err != nil {
		t.Errorf("track is not valid: %v", err)
	}
}
