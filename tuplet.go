package tabula

import "slices"

type (
	// TupletBeat pairs a member beat with its duration inside the group. The
	// beat's own stored duration is left untouched.
	TupletBeat struct {
		Beat               ID
		CalculatedDuration float64
	}

	// TupletGroup rescales the durations of its beats by TupletCount /
	// NormalCount, e.g. 3:2 for a triplet. The group references beats by
	// identity and does not own them.
	TupletGroup struct {
		ID          ID
		Beats       []TupletBeat `yaml:",flow"`
		NormalCount int
		TupletCount int
	}
)

// BuildTupletGroup groups beats under a normalCount:tupletCount ratio.
func BuildTupletGroup(id ID, beats []*Beat, normalCount, tupletCount int) (TupletGroup, error) {
	if normalCount < 2 || tupletCount < 1 || normalCount == tupletCount {
		return TupletGroup{}, invalid(ErrInvalidTuplet, "invalid tuplet ratio %d:%d", normalCount, tupletCount)
	}
	if len(beats) == 0 || len(beats) > normalCount {
		return TupletGroup{}, invalid(ErrInvalidTuplet, "tuplet %d:%d cannot hold %d beats", normalCount, tupletCount, len(beats))
	}
	g := TupletGroup{ID: id, NormalCount: normalCount, TupletCount: tupletCount, Beats: make([]TupletBeat, len(beats))}
	for i, b := range beats {
		g.Beats[i] = TupletBeat{Beat: b.ID, CalculatedDuration: b.BaseDuration() * g.Scale()}
	}
	return g, nil
}

// Scale is the time multiplier applied to member beats.
func (g *TupletGroup) Scale() float64 {
	if g.NormalCount == 0 {
		return 1
	}
	return float64(g.TupletCount) / float64(g.NormalCount)
}

// Complete reports whether the group holds NormalCount beats.
func (g *TupletGroup) Complete() bool { return len(g.Beats) == g.NormalCount }

// IsStandard reports whether the ratio is n:(n-1), e.g. 3:2 or 5:4.
func (g *TupletGroup) IsStandard() bool { return g.NormalCount == g.TupletCount+1 }

// Contains reports whether the beat with the given identity is a member.
func (g *TupletGroup) Contains(beat ID) bool {
	return slices.ContainsFunc(g.Beats, func(tb TupletBeat) bool { return tb.Beat == beat })
}

// Copy makes a copy of the group referencing the same beats.
func (g *TupletGroup) Copy() TupletGroup {
	return TupletGroup{ID: g.ID, Beats: slices.Clone(g.Beats), NormalCount: g.NormalCount, TupletCount: g.TupletCount}
}

// refresh drops members no longer present in beats and recomputes the
// calculated durations in bar order.
func (g *TupletGroup) refresh(beats []Beat) {
	var members []TupletBeat
	for i := range beats {
		if g.Contains(beats[i].ID) {
			members = append(members, TupletBeat{Beat: beats[i].ID, CalculatedDuration: beats[i].BaseDuration() * g.Scale()})
		}
	}
	g.Beats = members
}
