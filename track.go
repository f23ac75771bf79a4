package tabula

import "fmt"

// Track is the tablature of one guitar: its instrument and an ordered list of
// bars.
type Track struct {
	ID     ID
	Name   string
	Guitar Guitar
	Bars   []Bar
}

// Default time signature and tempo of new bars.
const (
	DefaultBeatsCount = 4
	DefaultTempo      = 120
)

// NewTrack returns a track with one empty 4/4 bar.
func NewTrack(ids *IDSource, name string, guitar Guitar) (Track, error) {
	if err := guitar.Validate(); err != nil {
		return Track{}, err
	}
	bar, err := NewBar(ids, guitar.StringsCount, DefaultBeatsCount, Quarter, DefaultTempo)
	if err != nil {
		return Track{}, err
	}
	return Track{ID: ids.New(), Name: name, Guitar: guitar, Bars: []Bar{bar}}, nil
}

// Beat returns a pointer to beat j of bar i, or nil when out of range.
func (t *Track) Beat(i, j int) *Beat {
	if i < 0 || i >= len(t.Bars) || j < 0 || j >= len(t.Bars[i].Beats) {
		return nil
	}
	return &t.Bars[i].Beats[j]
}

// FindBeat locates a beat by identity.
func (t *Track) FindBeat(id ID) (bar, beat int, ok bool) {
	for i := range t.Bars {
		if j := t.Bars[i].BeatIndex(id); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

// Refit re-derives DurationsFit of every bar.
func (t *Track) Refit() {
	for i := range t.Bars {
		t.Bars[i].Refit()
	}
}

// Validate checks the guitar and that every note addresses one of its
// strings.
func (t *Track) Validate() error {
	if err := t.Guitar.Validate(); err != nil {
		return fmt.Errorf("track %q: %w", t.Name, err)
	}
	for i := range t.Bars {
		if err := t.Bars[i].Validate(t.Guitar.StringsCount); err != nil {
			return fmt.Errorf("track %q bar %d: %w", t.Name, i+1, err)
		}
	}
	return nil
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	bars := make([]Bar, len(t.Bars))
	for i := range t.Bars {
		bars[i] = t.Bars[i].Copy()
	}
	return Track{ID: t.ID, Name: t.Name, Guitar: t.Guitar.Copy(), Bars: bars}
}
