package editor

import (
	"slices"

	"github.com/tabula-go/tabula"
)

// InsertBeat inserts an empty beat after the given one, with the same
// duration, and moves the cursor to it.
func (m *Model) InsertBeat(after tabula.ID) (tabula.ID, error) {
	defer m.change("InsertBeat", MajorChange)()
	b, bar, err := m.beat(after)
	if err != nil {
		return "", m.cancel("InsertBeat", err)
	}
	nb, err := tabula.NewBeat(m.ids, m.d.Track.Guitar.StringsCount, b.Duration)
	if err != nil {
		return "", m.cancel("InsertBeat", err)
	}
	if err := bar.InsertBeat(bar.BeatIndex(after)+1, nb); err != nil {
		return "", m.cancel("InsertBeat", err)
	}
	m.d.Cursor.Beat = nb.ID
	return nb.ID, nil
}

// DeleteBeats removes the given beats. A bar left without beats is removed
// with them; the last beat of the track cannot be deleted. When the cursor
// beat goes, the cursor moves to the beat that took its place.
func (m *Model) DeleteBeats(beats []tabula.ID) error {
	defer m.change("DeleteBeats", MajorChange)()
	if len(beats) == 0 {
		return m.cancel("DeleteBeats", rejected(ErrNothingSelected, "no beats to delete"))
	}
	beats = slices.Clone(beats)
	slices.Sort(beats)
	beats = slices.Compact(beats)
	order := m.beatOrder()
	if len(beats) >= len(order) {
		return m.cancel("DeleteBeats", rejected(tabula.ErrInvalidPosition, "a track needs at least one beat"))
	}
	first := len(order)
	for _, id := range beats {
		k := slices.Index(order, id)
		if k < 0 {
			return m.cancel("DeleteBeats", rejected(ErrNotFound, "no beat %s", id))
		}
		first = min(first, k)
	}
	for _, id := range beats {
		_, bar, _ := m.beat(id)
		i := bar.BeatIndex(id)
		bar.RemoveBeats(i, i+1)
	}
	m.d.Track.Bars = slices.DeleteFunc(m.d.Track.Bars, func(b tabula.Bar) bool { return len(b.Beats) == 0 })
	if _, _, ok := m.d.Track.FindBeat(m.d.Cursor.Beat); !ok {
		order = m.beatOrder()
		m.d.Cursor.Beat = order[min(first, len(order)-1)]
	}
	m.d.Selection = BeatRange{}
	return nil
}

// MakeTuplet groups consecutive beats of one bar into a tuplet of
// normalCount in the time of tupletCount.
func (m *Model) MakeTuplet(beats []tabula.ID, normalCount, tupletCount int) error {
	defer m.change("MakeTuplet", MajorChange)()
	if len(beats) == 0 {
		return m.cancel("MakeTuplet", rejected(ErrNothingSelected, "no beats for a tuplet"))
	}
	_, bar, err := m.beat(beats[0])
	if err != nil {
		return m.cancel("MakeTuplet", err)
	}
	members := make([]*tabula.Beat, 0, len(beats))
	for _, id := range beats {
		i := bar.BeatIndex(id)
		if i < 0 {
			return m.cancel("MakeTuplet", rejected(tabula.ErrInvalidTuplet, "beat %s is not in bar %s", id, bar.ID))
		}
		members = append(members, &bar.Beats[i])
	}
	g, err := tabula.BuildTupletGroup(m.ids.New(), members, normalCount, tupletCount)
	if err != nil {
		return m.cancel("MakeTuplet", err)
	}
	if err := bar.AddTuplet(g); err != nil {
		return m.cancel("MakeTuplet", err)
	}
	return nil
}

// RemoveTuplet dissolves the tuplet the beat belongs to.
func (m *Model) RemoveTuplet(beat tabula.ID) error {
	defer m.change("RemoveTuplet", MajorChange)()
	_, bar, err := m.beat(beat)
	if err != nil {
		return m.cancel("RemoveTuplet", err)
	}
	if !bar.RemoveTuplet(beat) {
		return m.cancel("RemoveTuplet", rejected(ErrNotFound, "beat %s is not in a tuplet", beat))
	}
	return nil
}

// BeamBeats joins the given beats into one beam group. A single beat is
// taken out of its group instead.
func (m *Model) BeamBeats(beats []tabula.ID) error {
	defer m.change("BeamBeats", MajorChange)()
	if len(beats) == 0 {
		return m.cancel("BeamBeats", rejected(ErrNothingSelected, "no beats to beam"))
	}
	var group tabula.ID
	if len(beats) > 1 {
		group = m.ids.New()
	}
	for _, id := range beats {
		b, _, err := m.beat(id)
		if err != nil {
			return m.cancel("BeamBeats", err)
		}
		b.BeamGroup = group
	}
	return nil
}

// beatOrder lists the beat identities in document order.
func (m *Model) beatOrder() []tabula.ID {
	var ret []tabula.ID
	for i := range m.d.Track.Bars {
		for _, b := range m.d.Track.Bars[i].Beats {
			ret = append(ret, b.ID)
		}
	}
	return ret
}
