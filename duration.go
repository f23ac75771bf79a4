package tabula

import (
	"math"
	"strconv"
	"strings"

	"github.com/viterin/vek"
	"golang.org/x/text/cases"
)

// Duration is a note value expressed as a fraction of a whole note.
type Duration float64

const (
	Whole        Duration = 1
	Half         Duration = 0.5
	Quarter      Duration = 0.25
	Eighth       Duration = 0.125
	Sixteenth    Duration = 0.0625
	ThirtySecond Duration = 0.03125
)

// Durations lists every supported duration, longest first.
var Durations = []Duration{Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond}

// MaxDots is the largest number of dots a beat can carry.
const MaxDots = 2

// fitEpsilon is the relative tolerance used when comparing duration sums.
const fitEpsilon = 1e-9

var durationNames = map[Duration]string{
	Whole:        "whole",
	Half:         "half",
	Quarter:      "quarter",
	Eighth:       "eighth",
	Sixteenth:    "sixteenth",
	ThirtySecond: "thirtysecond",
}

// Valid reports whether d is one of the supported note values.
func (d Duration) Valid() bool {
	_, ok := durationNames[d]
	return ok
}

// Name returns the English name of the duration, e.g. "eighth".
func (d Duration) Name() string {
	if n, ok := durationNames[d]; ok {
		return n
	}
	return "?"
}

// String returns the duration as a fraction of a whole, e.g. "1/8".
func (d Duration) String() string {
	if d <= 0 {
		return "0"
	}
	return "1/" + strconv.Itoa(int(math.Round(1/float64(d))))
}

// ParseDuration accepts a fraction ("1/8"), a name ("eighth", any case) or a
// decimal ("0.125").
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	folded := cases.Fold().String(s)
	for d, n := range durationNames {
		if n == folded {
			return d, nil
		}
	}
	if rest, ok := strings.CutPrefix(s, "1/"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			if d := Duration(1 / float64(n)); d.Valid() {
				return d, nil
			}
		}
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		if d := Duration(f); d.Valid() {
			return d, nil
		}
	}
	return 0, invalid(ErrUnknownDuration, "unknown duration %q", s)
}

// DotScale returns the musical time multiplier for a dot count: 1, 1.5 or
// 1.75. Counts outside 0..MaxDots return 0.
func DotScale(dots int) float64 {
	switch dots {
	case 0:
		return 1
	case 1:
		return 1.5
	case 2:
		return 1.75
	}
	return 0
}

// sumDurations adds up durations; the slice is reused as float64 storage.
func sumDurations(ds []float64) float64 {
	if len(ds) == 0 {
		return 0
	}
	return vek.Sum(ds)
}

// durationsEqual compares two duration sums within the relative tolerance.
func durationsEqual(a, b float64) bool {
	return math.Abs(a-b) <= fitEpsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
