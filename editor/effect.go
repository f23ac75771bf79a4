package editor

import (
	"errors"
	"slices"

	"github.com/tabula-go/tabula"
)

type (
	// Result is the outcome of a command on one note of a selection.
	// Effect is the identity of the effect attached or removed.
	Result struct {
		Note   NoteRef
		Effect tabula.ID
		Err    error
	}

	Results []Result
)

// Succeeded counts the notes the command was applied to.
func (r Results) Succeeded() int {
	n := 0
	for _, res := range r {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Err joins the errors of the notes the command failed on.
func (r Results) Err() error {
	var errs []error
	for _, res := range r {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// ApplyEffect attaches an effect of type t to every target note. Each note
// is validated on its own: notes that reject the effect are reported in the
// results and the others keep it. Effects that span several notes, such as
// vibrato, are attached to every fretted note of the beat with one shared
// identity. The command is rejected as a whole only when the options are
// invalid for t or no note accepted the effect.
func (m *Model) ApplyEffect(targets []NoteRef, t tabula.EffectType, opts tabula.EffectOptions) (Results, error) {
	defer m.change("ApplyEffect", MajorChange)()
	if len(targets) == 0 {
		return nil, m.cancel("ApplyEffect", rejected(ErrNothingSelected, "no notes to apply %v to", t))
	}
	if _, err := tabula.NewEffect("", t, opts); err != nil {
		return nil, m.cancel("ApplyEffect", err)
	}
	if tabula.AppliesToMultipleNotes(t) {
		targets = m.expandToBeats(targets, t)
	}
	shared := map[tabula.ID]tabula.ID{}
	var results Results
	for _, ref := range targets {
		res := Result{Note: ref}
		n, b, err := m.note(ref)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		id := m.ids.New()
		if tabula.AppliesToMultipleNotes(t) {
			if sid, ok := shared[b.ID]; ok {
				id = sid
			} else {
				shared[b.ID] = id
			}
		}
		e, _ := tabula.NewEffect(id, t, opts)
		if res.Err = n.ApplyEffect(e); res.Err == nil {
			res.Effect = id
		}
		results = append(results, res)
	}
	if results.Succeeded() == 0 {
		return results, m.cancel("ApplyEffect", results.Err())
	}
	return results, nil
}

// expandToBeats adds the other fretted notes of the target beats that do not
// carry an effect of type t yet.
func (m *Model) expandToBeats(targets []NoteRef, t tabula.EffectType) []NoteRef {
	ret := slices.Clone(targets)
	for _, ref := range targets {
		b, _, err := m.beat(ref.Beat)
		if err != nil {
			continue
		}
		for _, n := range b.Notes {
			r := NoteRef{Beat: ref.Beat, String: n.String}
			if n.HasFret() && !n.HasEffect(t) && !slices.Contains(ret, r) {
				ret = append(ret, r)
			}
		}
	}
	return ret
}

// RemoveEffect removes the effect of type t matching opts from every target
// note; nil opts matches any options. Removing an effect shared by several
// notes removes it from all of them.
func (m *Model) RemoveEffect(targets []NoteRef, t tabula.EffectType, opts tabula.EffectOptions) (Results, error) {
	defer m.change("RemoveEffect", MajorChange)()
	if len(targets) == 0 {
		return nil, m.cancel("RemoveEffect", rejected(ErrNothingSelected, "no notes to remove %v from", t))
	}
	var results Results
	removed := map[NoteRef]bool{}
	for _, ref := range targets {
		if removed[ref] {
			continue
		}
		res := Result{Note: ref}
		n, b, err := m.note(ref)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		e, ok := n.RemoveEffect(t, opts)
		if !ok {
			res.Err = rejected(ErrNotFound, "string %d of beat %s has no %v", ref.String, ref.Beat, t)
			results = append(results, res)
			continue
		}
		res.Effect = e.ID
		results = append(results, res)
		removed[ref] = true
		for i := range b.Notes {
			if b.Notes[i].RemoveEffectID(e.ID) {
				other := NoteRef{Beat: b.ID, String: b.Notes[i].String}
				removed[other] = true
				results = append(results, Result{Note: other, Effect: e.ID})
			}
		}
	}
	if results.Succeeded() == 0 {
		return results, m.cancel("RemoveEffect", results.Err())
	}
	return results, nil
}

// ToggleEffect removes t from the selected notes when the cursor note has
// it, and applies it otherwise.
func (m *Model) ToggleEffect(t tabula.EffectType, opts tabula.EffectOptions) (Results, error) {
	n, _, err := m.note(m.d.Cursor)
	if err == nil && n.HasEffect(t) {
		return m.RemoveEffect(m.SelectedNotes(), t, nil)
	}
	return m.ApplyEffect(m.SelectedNotes(), t, opts)
}
