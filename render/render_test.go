package render_test

import (
	"strings"
	"testing"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
	"github.com/tabula-go/tabula/render"
)

func TestTab(t *testing.T) {
	ids := tabula.NewSeededIDSource(1)
	track, err := tabula.NewTrack(ids, "lead guitar", tabula.StandardGuitar())
	if err != nil {
		t.Fatal(err)
	}
	n := track.Beat(0, 0).Note(1)
	n.Fret = 3
	vib, _ := tabula.NewEffect(ids.New(), tabula.Vibrato, nil)
	n.ApplyEffect(vib)
	track.Beat(0, 1).Note(6).Fret = 12
	tab := layout.NewTab(layout.DefaultDim(), nil)
	tab.Update(&track)
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := r.Tab(&track, tab)
	if err != nil {
		t.Fatalf("Tab failed: %v", err)
	}
	for _, want := range []string{"Lead Guitar\n", "~~~", "E4|3---", "E2|----12--"} {
		if !strings.Contains(out, want) {
			t.Errorf("tab does not contain %q:\n%s", want, out)
		}
	}
}

func TestReport(t *testing.T) {
	ids := tabula.NewSeededIDSource(2)
	s, err := tabula.NewScore(ids, "demo", "nobody", "the riff")
	if err != nil {
		t.Fatal(err)
	}
	s.Tracks[0].Bars[0].Beats[0].Duration = tabula.Eighth
	s.Refit()
	r, err := render.New()
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Report(&s)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	for _, want := range []string{"The Riff by nobody\n", "tuned E2 A2 D3 G3 B3 E4", "bar 1: 4/4 at 120 bpm, 4 beats (does not fit)"} {
		if !strings.Contains(out, want) {
			t.Errorf("report does not contain %q:\n%s", want, out)
		}
	}
}
