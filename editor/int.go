package editor

import "github.com/tabula-go/tabula"

type (
	// Int is a bounded integer property of the model that can be stepped,
	// e.g. by key bindings.
	Int struct {
		IntData
	}

	IntData interface {
		Value() int
		Range() intRange

		setValue(int) error
		change(kind string) func()
	}

	intRange struct {
		Min, Max int
	}

	Tempo      Model
	BeatsCount Model
)

// Add steps the value by delta, clamped to the range. It reports whether the
// value changed.
func (v Int) Add(delta int) (ok bool) {
	return v.Set(v.Value() + delta)
}

func (v Int) Set(value int) (ok bool) {
	r := v.Range()
	value = r.Clamp(value)
	if value == v.Value() || value < r.Min || value > r.Max {
		return false
	}
	defer v.change("Set")()
	return v.setValue(value) == nil
}

func (r intRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Model methods

func (m *Model) Tempo() *Tempo           { return (*Tempo)(m) }
func (m *Model) BeatsCount() *BeatsCount { return (*BeatsCount)(m) }

// Tempo of the cursor bar

func (v *Tempo) Int() Int        { return Int{v} }
func (v *Tempo) Range() intRange { return intRange{tabula.MinTempo, tabula.MaxTempo} }
func (v *Tempo) Value() int {
	if b, ok := (*Model)(v).CursorBar(); ok {
		return b.Tempo
	}
	return 0
}
func (v *Tempo) setValue(value int) error {
	b, ok := (*Model)(v).CursorBar()
	if !ok {
		return (*Model)(v).cancel("TempoInt", rejected(ErrNotFound, "cursor is not on a bar"))
	}
	if err := b.SetTempo(value); err != nil {
		return (*Model)(v).cancel("TempoInt", err)
	}
	return nil
}
func (v *Tempo) change(kind string) func() {
	return (*Model)(v).change("TempoInt."+kind, MinorChange)
}

// Beats per bar of the cursor bar

func (v *BeatsCount) Int() Int        { return Int{v} }
func (v *BeatsCount) Range() intRange { return intRange{1, 32} }
func (v *BeatsCount) Value() int {
	if b, ok := (*Model)(v).CursorBar(); ok {
		return b.BeatsCount
	}
	return 0
}
func (v *BeatsCount) setValue(value int) error {
	b, ok := (*Model)(v).CursorBar()
	if !ok {
		return (*Model)(v).cancel("BeatsCountInt", rejected(ErrNotFound, "cursor is not on a bar"))
	}
	if err := b.SetSignature(value, b.BeatDuration); err != nil {
		return (*Model)(v).cancel("BeatsCountInt", err)
	}
	return nil
}
func (v *BeatsCount) change(kind string) func() {
	return (*Model)(v).change("BeatsCountInt."+kind, MinorChange)
}
