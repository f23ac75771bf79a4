package tabula

import "slices"

// NoFret marks a note slot that holds no fretted note.
const NoFret = -1

// Note is the slot of one string in a beat. A slot without a fret is empty;
// it still has an identity so that the layout keeps its element.
type Note struct {
	ID      ID
	String  int // 1-based string number
	Fret    int
	Effects []Effect
}

// NewNote returns an empty slot for string s.
func NewNote(id ID, s int) Note {
	return Note{ID: id, String: s, Fret: NoFret}
}

// HasFret reports whether the slot holds a fretted note.
func (n *Note) HasFret() bool { return n.Fret >= 0 }

// HasEffect reports whether an effect of type t is attached.
func (n *Note) HasEffect(t EffectType) bool {
	return slices.ContainsFunc(n.Effects, func(e Effect) bool { return e.Type == t })
}

// Effect returns the effect with the given identity.
func (n *Note) Effect(id ID) (Effect, bool) {
	i := slices.IndexFunc(n.Effects, func(e Effect) bool { return e.ID == id })
	if i < 0 {
		return Effect{}, false
	}
	return n.Effects[i], true
}

// CanApply checks whether an effect of type t could be attached, returning a
// validation error naming the conflicting effect otherwise.
func (n *Note) CanApply(t EffectType) error {
	if !n.HasFret() {
		return invalid(ErrNoFret, "cannot apply %v to string %d: no fret", t, n.String)
	}
	for _, e := range n.Effects {
		if Incompatible(e.Type, t) {
			return invalid(ErrIncompatibleEffect, "cannot apply %v to string %d: incompatible with %v", t, n.String, e.Type)
		}
	}
	return nil
}

// ApplyEffect attaches e after checking compatibility with the effects
// already present.
func (n *Note) ApplyEffect(e Effect) error {
	if err := n.CanApply(e.Type); err != nil {
		return err
	}
	n.Effects = append(n.Effects, e)
	return nil
}

// RemoveEffect detaches the first effect matching t and opts. A nil opts
// matches any options.
func (n *Note) RemoveEffect(t EffectType, opts EffectOptions) (Effect, bool) {
	i := slices.IndexFunc(n.Effects, func(e Effect) bool { return e.Matches(t, opts) })
	if i < 0 {
		return Effect{}, false
	}
	e := n.Effects[i]
	n.Effects = slices.Delete(n.Effects, i, i+1)
	return e, true
}

// RemoveEffectID detaches the effect with the given identity.
func (n *Note) RemoveEffectID(id ID) bool {
	i := slices.IndexFunc(n.Effects, func(e Effect) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	n.Effects = slices.Delete(n.Effects, i, i+1)
	return true
}

// SetFret places the note on a fret; NoFret empties the slot and drops its
// effects, which all need a fretted note.
func (n *Note) SetFret(fret int) error {
	if fret != NoFret && (fret < 0 || fret > MaxFret) {
		return invalid(ErrInvalidPosition, "fret %d out of range 0..%d", fret, MaxFret)
	}
	n.Fret = fret
	if fret == NoFret {
		n.Effects = nil
	}
	return nil
}

// Copy makes a deep copy of a Note, keeping identities.
func (n *Note) Copy() Note {
	return Note{ID: n.ID, String: n.String, Fret: n.Fret, Effects: slices.Clone(n.Effects)}
}

// clone copies the note with fresh identities. remap keeps shared effect
// identities shared in the clone.
func (n *Note) clone(ids *IDSource, remap map[ID]ID) Note {
	c := n.Copy()
	c.ID = ids.New()
	for i := range c.Effects {
		c.Effects[i].ID = remapID(ids, remap, c.Effects[i].ID)
	}
	return c
}

func remapID(ids *IDSource, remap map[ID]ID, old ID) ID {
	if id, ok := remap[old]; ok {
		return id
	}
	id := ids.New()
	remap[old] = id
	return id
}
