package tabula

import (
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

// MaxFret is the highest fret a note can be placed on.
const MaxFret = 24

// Guitar describes the instrument of a track: the number of strings and the
// open pitch of each. Tuning[0] is string 1, the highest sounding string.
type Guitar struct {
	StringsCount int
	Tuning       []midi.Note `yaml:",flow"`
}

// StandardTuning is E4 B3 G3 D3 A2 E2, string 1 first.
var StandardTuning = []midi.Note{64, 59, 55, 50, 45, 40}

// NewGuitar validates and returns a guitar.
func NewGuitar(stringsCount int, tuning []midi.Note) (Guitar, error) {
	g := Guitar{StringsCount: stringsCount, Tuning: append([]midi.Note(nil), tuning...)}
	if err := g.Validate(); err != nil {
		return Guitar{}, err
	}
	return g, nil
}

// StandardGuitar returns a six string guitar in standard tuning.
func StandardGuitar() Guitar {
	return Guitar{StringsCount: len(StandardTuning), Tuning: append([]midi.Note(nil), StandardTuning...)}
}

// Validate checks that there is at least one string and one tuning pitch per
// string.
func (g Guitar) Validate() error {
	if g.StringsCount < 1 {
		return invalid(ErrInvalidGuitar, "guitar needs at least one string, got %d", g.StringsCount)
	}
	if len(g.Tuning) != g.StringsCount {
		return invalid(ErrInvalidGuitar, "guitar has %d strings but %d tuning pitches", g.StringsCount, len(g.Tuning))
	}
	return nil
}

// HasString reports whether s is a valid 1-based string number.
func (g Guitar) HasString(s int) bool {
	return s >= 1 && s <= g.StringsCount
}

// Pitch returns the sounding pitch of string s at the given fret.
func (g Guitar) Pitch(s, fret int) (midi.Note, bool) {
	if !g.HasString(s) || fret < 0 || fret > MaxFret {
		return 0, false
	}
	p := int(g.Tuning[s-1]) + fret
	if p > 127 {
		return 0, false
	}
	return midi.Note(p), true
}

// PitchName names a pitch in scientific notation, e.g. "E4".
func PitchName(n midi.Note) string {
	return n.Name() + strconv.Itoa(int(n)/12-1)
}

// TuningName lists the open strings from lowest to highest, e.g. "E2 A2 D3 G3
// B3 E4".
func (g Guitar) TuningName() string {
	names := make([]string, len(g.Tuning))
	for i, n := range g.Tuning {
		names[len(g.Tuning)-1-i] = PitchName(n)
	}
	return strings.Join(names, " ")
}

// Copy makes a deep copy of a Guitar.
func (g Guitar) Copy() Guitar {
	return Guitar{StringsCount: g.StringsCount, Tuning: append([]midi.Note(nil), g.Tuning...)}
}
