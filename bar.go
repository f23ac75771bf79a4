package tabula

import (
	"slices"

	"golang.org/x/text/cases"
)

// RepeatStatus marks the start and/or end of a repeated section.
type RepeatStatus int

const (
	RepeatNone RepeatStatus = iota
	RepeatStart
	RepeatEnd
	RepeatStartEnd
)

var repeatNames = []string{"none", "start", "end", "startEnd"}

func (r RepeatStatus) String() string {
	if r < 0 || int(r) >= len(repeatNames) {
		return "?"
	}
	return repeatNames[r]
}

// ParseRepeatStatus maps "none", "start", "end" or "startEnd" (any case) to
// its value.
func ParseRepeatStatus(s string) (RepeatStatus, error) {
	folded := cases.Fold().String(s)
	for i, n := range repeatNames {
		if cases.Fold().String(n) == folded {
			return RepeatStatus(i), nil
		}
	}
	return 0, invalid(ErrInvalidField, "unknown repeat status %q", s)
}

// Tempo limits in beats per minute.
const (
	MinTempo = 1
	MaxTempo = 999
)

// Bar is a measure: BeatsCount beats of BeatDuration each, filled with
// beats of arbitrary durations. DurationsFit is derived by Refit and tells
// whether the beats add up to the time signature; a bar that does not fit is
// legal, just flagged.
type Bar struct {
	ID           ID
	BeatsCount   int
	BeatDuration Duration
	Tempo        int
	Repeat       RepeatStatus `yaml:",omitempty"`
	Beats        []Beat
	Tuplets      []TupletGroup `yaml:",omitempty"`
	DurationsFit bool          `yaml:"-"`
}

// NewBar returns a bar filled with BeatsCount empty beats of BeatDuration.
func NewBar(ids *IDSource, stringsCount, beatsCount int, beatDuration Duration, tempo int) (Bar, error) {
	bar := Bar{ID: ids.New(), BeatsCount: beatsCount, BeatDuration: beatDuration, Tempo: tempo}
	if err := bar.validateSignature(); err != nil {
		return Bar{}, err
	}
	for range beatsCount {
		b, err := NewBeat(ids, stringsCount, beatDuration)
		if err != nil {
			return Bar{}, err
		}
		bar.Beats = append(bar.Beats, b)
	}
	bar.Refit()
	return bar, nil
}

func (b *Bar) validateSignature() error {
	if b.BeatsCount < 1 {
		return invalid(ErrInvalidField, "bar needs at least one beat, got %d", b.BeatsCount)
	}
	if !b.BeatDuration.Valid() {
		return invalid(ErrUnknownDuration, "unknown beat duration %v", float64(b.BeatDuration))
	}
	if b.Tempo < MinTempo || b.Tempo > MaxTempo {
		return invalid(ErrInvalidField, "tempo must be within %d..%d, got %d", MinTempo, MaxTempo, b.Tempo)
	}
	return nil
}

// SetSignature changes the time signature. The beats are left as they are,
// so the bar may stop fitting.
func (b *Bar) SetSignature(beatsCount int, beatDuration Duration) error {
	old := *b
	b.BeatsCount, b.BeatDuration = beatsCount, beatDuration
	if err := b.validateSignature(); err != nil {
		b.BeatsCount, b.BeatDuration = old.BeatsCount, old.BeatDuration
		return err
	}
	return nil
}

// SetTempo changes the tempo, MinTempo..MaxTempo.
func (b *Bar) SetTempo(tempo int) error {
	if tempo < MinTempo || tempo > MaxTempo {
		return invalid(ErrInvalidField, "tempo must be within %d..%d, got %d", MinTempo, MaxTempo, tempo)
	}
	b.Tempo = tempo
	return nil
}

// BeatIndex returns the index of the beat with the given identity, or -1.
func (b *Bar) BeatIndex(id ID) int {
	return slices.IndexFunc(b.Beats, func(bt Beat) bool { return bt.ID == id })
}

// TupletOf returns the tuplet group the beat belongs to, or nil.
func (b *Bar) TupletOf(beat ID) *TupletGroup {
	for i := range b.Tuplets {
		if b.Tuplets[i].Contains(beat) {
			return &b.Tuplets[i]
		}
	}
	return nil
}

// EffectiveDuration returns the duration of beat i with dots and tuplet
// scaling applied.
func (b *Bar) EffectiveDuration(i int) float64 {
	if i < 0 || i >= len(b.Beats) {
		return 0
	}
	d := b.Beats[i].BaseDuration()
	if g := b.TupletOf(b.Beats[i].ID); g != nil {
		d *= g.Scale()
	}
	return d
}

// ActualDuration sums the effective durations of all beats.
func (b *Bar) ActualDuration() float64 {
	ds := make([]float64, len(b.Beats))
	for i := range b.Beats {
		ds[i] = b.EffectiveDuration(i)
	}
	return sumDurations(ds)
}

// ExpectedDuration is BeatsCount × BeatDuration.
func (b *Bar) ExpectedDuration() float64 {
	return float64(b.BeatsCount) * float64(b.BeatDuration)
}

// Fits computes, without storing, whether the beats fill the bar exactly.
func (b *Bar) Fits() bool {
	return durationsEqual(b.ActualDuration(), b.ExpectedDuration())
}

// Refit re-derives the tuplet groups and DurationsFit after a mutation and
// returns the new DurationsFit.
func (b *Bar) Refit() bool {
	tuplets := b.Tuplets[:0]
	for _, g := range b.Tuplets {
		g.refresh(b.Beats)
		if len(g.Beats) > 0 {
			tuplets = append(tuplets, g)
		}
	}
	b.Tuplets = tuplets
	if len(b.Tuplets) == 0 {
		b.Tuplets = nil
	}
	was := b.DurationsFit
	b.DurationsFit = b.Fits()
	if was && !b.DurationsFit {
		Logger().Warn("bar durations no longer fit", "bar", b.ID, "actual", b.ActualDuration(), "expected", b.ExpectedDuration())
	}
	return b.DurationsFit
}

// InsertBeat inserts beat before index i; i == len(Beats) appends. A beat
// cannot go between two members of a tuplet.
func (b *Bar) InsertBeat(i int, beat Beat) error {
	if i < 0 || i > len(b.Beats) {
		return invalid(ErrInvalidPosition, "beat index %d out of range 0..%d", i, len(b.Beats))
	}
	for k := range b.Tuplets {
		first, last := b.tupletSpan(&b.Tuplets[k])
		if first >= 0 && first < i && i <= last {
			return invalid(ErrInvalidTuplet, "cannot insert a beat inside tuplet %s", b.Tuplets[k].ID)
		}
	}
	b.Beats = slices.Insert(b.Beats, i, beat)
	return nil
}

// RemoveBeats removes the beats in [from, to).
func (b *Bar) RemoveBeats(from, to int) error {
	if from < 0 || to > len(b.Beats) || from > to {
		return invalid(ErrInvalidPosition, "beat range [%d,%d) out of range", from, to)
	}
	b.Beats = slices.Delete(b.Beats, from, to)
	return nil
}

// AddTuplet attaches a group whose members must be consecutive beats of this
// bar not already in another group.
func (b *Bar) AddTuplet(g TupletGroup) error {
	first := -1
	for k, tb := range g.Beats {
		i := b.BeatIndex(tb.Beat)
		if i < 0 {
			return invalid(ErrInvalidTuplet, "tuplet beat %s is not in bar %s", tb.Beat, b.ID)
		}
		if b.TupletOf(tb.Beat) != nil {
			return invalid(ErrInvalidTuplet, "beat %s already belongs to a tuplet", tb.Beat)
		}
		if k == 0 {
			first = i
		} else if i != first+k {
			return invalid(ErrInvalidTuplet, "tuplet beats must be consecutive")
		}
	}
	b.Tuplets = append(b.Tuplets, g)
	return nil
}

// tupletSpan returns the indexes of the first and last member of g, -1 when
// none of its beats is in the bar.
func (b *Bar) tupletSpan(g *TupletGroup) (first, last int) {
	first, last = -1, -1
	for _, tb := range g.Beats {
		i := b.BeatIndex(tb.Beat)
		if i < 0 {
			continue
		}
		if first < 0 || i < first {
			first = i
		}
		last = max(last, i)
	}
	return first, last
}

// RemoveTuplet dissolves the group containing the beat.
func (b *Bar) RemoveTuplet(beat ID) bool {
	i := slices.IndexFunc(b.Tuplets, func(g TupletGroup) bool { return g.Contains(beat) })
	if i < 0 {
		return false
	}
	b.Tuplets = slices.Delete(b.Tuplets, i, i+1)
	return true
}

// Validate checks the time signature, the beats and the tuplet references.
func (b *Bar) Validate(stringsCount int) error {
	if err := b.validateSignature(); err != nil {
		return err
	}
	for i := range b.Beats {
		if err := b.Beats[i].Validate(stringsCount); err != nil {
			return err
		}
	}
	seen := map[ID]bool{}
	for k, g := range b.Tuplets {
		if len(g.Beats) == 0 {
			return invalid(ErrInvalidTuplet, "tuplet %s has no beats", g.ID)
		}
		for _, tb := range g.Beats {
			if b.BeatIndex(tb.Beat) < 0 {
				return invalid(ErrInvalidTuplet, "tuplet %s references missing beat %s", g.ID, tb.Beat)
			}
			if seen[tb.Beat] {
				return invalid(ErrInvalidTuplet, "beat %s belongs to more than one tuplet", tb.Beat)
			}
			seen[tb.Beat] = true
		}
		if first, last := b.tupletSpan(&b.Tuplets[k]); last-first+1 != len(g.Beats) {
			return invalid(ErrInvalidTuplet, "beats of tuplet %s are not consecutive", g.ID)
		}
	}
	return nil
}

// Copy makes a deep copy of a Bar, keeping identities.
func (b *Bar) Copy() Bar {
	beats := make([]Beat, len(b.Beats))
	for i := range b.Beats {
		beats[i] = b.Beats[i].Copy()
	}
	var tuplets []TupletGroup
	for i := range b.Tuplets {
		tuplets = append(tuplets, b.Tuplets[i].Copy())
	}
	return Bar{
		ID:           b.ID,
		BeatsCount:   b.BeatsCount,
		BeatDuration: b.BeatDuration,
		Tempo:        b.Tempo,
		Repeat:       b.Repeat,
		Beats:        beats,
		Tuplets:      tuplets,
		DurationsFit: b.DurationsFit,
	}
}
