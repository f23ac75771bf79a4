package tabula

import (
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/cases"
)

// EffectType enumerates the guitar effects a note can carry.
type EffectType int

const (
	Bend EffectType = iota
	BendAndRelease
	Prebend
	PrebendAndRelease
	Vibrato
	SlideStart
	SlideEnd
	HammerOnStart // hammer-on or pull-off towards the next note
	HammerOnEnd   // hammer-on or pull-off from the previous note
	PinchHarmonic
	NaturalHarmonic
	PalmMute
	numEffectTypes
)

// Option keys used by the bend family of effects.
const (
	KeyBendPitch        = "bendPitch"
	KeyBendReleasePitch = "bendReleasePitch"
	KeyPrebendPitch     = "prebendPitch"
)

// optionTolerance is used when matching effects by their options.
const optionTolerance = 1e-6

var effectTypeNames = [numEffectTypes]string{
	"bend",
	"bendAndRelease",
	"prebend",
	"prebendAndRelease",
	"vibrato",
	"slideStart",
	"slideEnd",
	"hammerOnStart",
	"hammerOnEnd",
	"pinchHarmonic",
	"naturalHarmonic",
	"palmMute",
}

// optionKeys is the exact, sorted option key set each option-demanding type
// prescribes. Types not listed take no options.
var optionKeys = map[EffectType][]string{
	Bend:              {KeyBendPitch},
	BendAndRelease:    {KeyBendPitch, KeyBendReleasePitch},
	Prebend:           {KeyPrebendPitch},
	PrebendAndRelease: {KeyBendReleasePitch, KeyPrebendPitch},
}

var bends = []EffectType{Bend, BendAndRelease, Prebend, PrebendAndRelease}

// incompatible lists, per effect type, the types that cannot sit on the same
// note. Every type excludes itself.
var incompatible = map[EffectType][]EffectType{
	Bend:              append([]EffectType{SlideStart, SlideEnd, NaturalHarmonic}, bends...),
	BendAndRelease:    append([]EffectType{SlideStart, SlideEnd, NaturalHarmonic}, bends...),
	Prebend:           append([]EffectType{SlideStart, SlideEnd, NaturalHarmonic}, bends...),
	PrebendAndRelease: append([]EffectType{SlideStart, SlideEnd, NaturalHarmonic}, bends...),
	Vibrato:           {Vibrato, NaturalHarmonic},
	SlideStart:        append([]EffectType{SlideStart, HammerOnStart}, bends...),
	SlideEnd:          append([]EffectType{SlideEnd, HammerOnEnd}, bends...),
	HammerOnStart:     {HammerOnStart, SlideStart},
	HammerOnEnd:       {HammerOnEnd, SlideEnd},
	PinchHarmonic:     {PinchHarmonic, NaturalHarmonic},
	NaturalHarmonic:   append([]EffectType{NaturalHarmonic, PinchHarmonic, Vibrato}, bends...),
	PalmMute:          {PalmMute},
}

var multiNote = map[EffectType]bool{Vibrato: true, PalmMute: true}

var needsLabel = map[EffectType]bool{
	Bend:              true,
	BendAndRelease:    true,
	Prebend:           true,
	PrebendAndRelease: true,
	Vibrato:           true,
	PinchHarmonic:     true,
	NaturalHarmonic:   true,
	PalmMute:          true,
}

// Valid reports whether t is a known effect type.
func (t EffectType) Valid() bool { return t >= 0 && t < numEffectTypes }

func (t EffectType) String() string {
	if !t.Valid() {
		return "EffectType(" + strconv.Itoa(int(t)) + ")"
	}
	return effectTypeNames[t]
}

// ParseEffectType maps a name such as "palmMute" or "PALMMUTE" to its type.
func ParseEffectType(s string) (EffectType, error) {
	folded := cases.Fold().String(s)
	for i, n := range effectTypeNames {
		if cases.Fold().String(n) == folded {
			return EffectType(i), nil
		}
	}
	return 0, invalid(ErrUnknownEffect, "unknown effect type %q", s)
}

// OptionKeys returns the sorted option keys type t requires; nil when t takes
// no options.
func OptionKeys(t EffectType) []string {
	return slices.Clone(optionKeys[t])
}

// DemandsOptions reports whether t requires an options record.
func DemandsOptions(t EffectType) bool { return len(optionKeys[t]) > 0 }

// Incompatible reports whether a note may not carry both a and b. The check
// looks at the table entries of both types.
func Incompatible(a, b EffectType) bool {
	return slices.Contains(incompatible[a], b) || slices.Contains(incompatible[b], a)
}

// AppliesToMultipleNotes reports whether an effect of type t is shared, by
// identity, by every note of the beat it is applied to.
func AppliesToMultipleNotes(t EffectType) bool { return multiNote[t] }

// NeedsLabel reports whether t is drawn as a text row above the notes.
func NeedsLabel(t EffectType) bool { return needsLabel[t] }

// IsSlide reports whether t is drawn as a line to the neighbouring note.
func (t EffectType) IsSlide() bool { return t == SlideStart || t == SlideEnd }

// IsLegato reports whether t is drawn as an arc to the neighbouring note.
func (t EffectType) IsLegato() bool { return t == HammerOnStart || t == HammerOnEnd }

type (
	// EffectOptions is the options record of an option-demanding effect. Each
	// implementation corresponds to exactly one effect type.
	EffectOptions interface {
		// Values returns the options keyed by their option key.
		Values() map[string]float64
	}

	BendOptions struct {
		BendPitch float64
	}

	BendAndReleaseOptions struct {
		BendPitch        float64
		BendReleasePitch float64
	}

	PrebendOptions struct {
		PrebendPitch float64
	}

	PrebendAndReleaseOptions struct {
		PrebendPitch     float64
		BendReleasePitch float64
	}
)

func (o BendOptions) Values() map[string]float64 {
	return map[string]float64{KeyBendPitch: o.BendPitch}
}

func (o BendAndReleaseOptions) Values() map[string]float64 {
	return map[string]float64{KeyBendPitch: o.BendPitch, KeyBendReleasePitch: o.BendReleasePitch}
}

func (o PrebendOptions) Values() map[string]float64 {
	return map[string]float64{KeyPrebendPitch: o.PrebendPitch}
}

func (o PrebendAndReleaseOptions) Values() map[string]float64 {
	return map[string]float64{KeyPrebendPitch: o.PrebendPitch, KeyBendReleasePitch: o.BendReleasePitch}
}

// Effect is an articulation attached to a note. Multi-note effects share the
// same ID across all the notes of a beat.
type Effect struct {
	ID      ID
	Type    EffectType
	Options EffectOptions
}

// NewEffect validates the options against the type: they must be absent for
// types that take none, and carry exactly the prescribed keys otherwise.
func NewEffect(id ID, t EffectType, opts EffectOptions) (Effect, error) {
	if !t.Valid() {
		return Effect{}, invalid(ErrUnknownEffect, "unknown effect type %d", int(t))
	}
	var values map[string]float64
	if opts != nil {
		values = opts.Values()
	}
	if err := checkOptionValues(t, values, opts != nil); err != nil {
		return Effect{}, err
	}
	return Effect{ID: id, Type: t, Options: opts}, nil
}

// NewEffectFromValues builds the tagged options from a raw key/value record,
// rejecting extra or missing keys.
func NewEffectFromValues(id ID, t EffectType, values map[string]float64) (Effect, error) {
	if !t.Valid() {
		return Effect{}, invalid(ErrUnknownEffect, "unknown effect type %d", int(t))
	}
	if err := checkOptionValues(t, values, values != nil); err != nil {
		return Effect{}, err
	}
	var opts EffectOptions
	switch t {
	case Bend:
		opts = BendOptions{BendPitch: values[KeyBendPitch]}
	case BendAndRelease:
		opts = BendAndReleaseOptions{BendPitch: values[KeyBendPitch], BendReleasePitch: values[KeyBendReleasePitch]}
	case Prebend:
		opts = PrebendOptions{PrebendPitch: values[KeyPrebendPitch]}
	case PrebendAndRelease:
		opts = PrebendAndReleaseOptions{PrebendPitch: values[KeyPrebendPitch], BendReleasePitch: values[KeyBendReleasePitch]}
	}
	return Effect{ID: id, Type: t, Options: opts}, nil
}

func checkOptionValues(t EffectType, values map[string]float64, present bool) error {
	want := optionKeys[t]
	if len(want) == 0 {
		if present {
			return invalid(ErrInvalidEffectOptions, "effect %v takes no options, got keys %v", t, sortedKeys(values))
		}
		return nil
	}
	if !present {
		return invalid(ErrInvalidEffectOptions, "effect %v requires options %v, got none", t, want)
	}
	got := sortedKeys(values)
	if !slices.Equal(got, want) {
		return invalid(ErrInvalidEffectOptions, "effect %v requires options %v, got %v", t, want, got)
	}
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalid(ErrInvalidEffectOptions, "effect %v option %s must be a finite non-negative pitch, got %v", t, k, v)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Matches reports whether e is of type t and, when opts is given, carries
// approximately the same option values.
func (e Effect) Matches(t EffectType, opts EffectOptions) bool {
	if e.Type != t {
		return false
	}
	if opts == nil || e.Options == nil {
		return true
	}
	a, b := e.Options.Values(), opts.Values()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || math.Abs(v-w) > optionTolerance {
			return false
		}
	}
	return true
}

// Label is the text of the row the effect occupies above the notes; empty for
// effects that need no label.
func (e Effect) Label() string {
	p := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	switch o := e.Options.(type) {
	case BendOptions:
		return "B " + p(o.BendPitch)
	case BendAndReleaseOptions:
		return "BR " + p(o.BendPitch) + "-" + p(o.BendReleasePitch)
	case PrebendOptions:
		return "PB " + p(o.PrebendPitch)
	case PrebendAndReleaseOptions:
		return "PBR " + p(o.PrebendPitch) + "-" + p(o.BendReleasePitch)
	}
	switch e.Type {
	case Vibrato:
		return "~~~"
	case PinchHarmonic:
		return "P.H."
	case NaturalHarmonic:
		return "N.H."
	case PalmMute:
		return "P.M."
	}
	return ""
}

// Copy returns e with the same identity; option records are values so a
// shallow copy suffices.
func (e Effect) Copy() Effect { return e }
