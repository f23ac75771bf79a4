package editor

import "github.com/tabula-go/tabula"

// SetDuration changes the note value of every given beat. All beats must
// exist; the durations of bars that stop fitting are flagged, not rejected.
func (m *Model) SetDuration(beats []tabula.ID, d tabula.Duration) error {
	defer m.change("SetDuration", MajorChange)()
	if len(beats) == 0 {
		return m.cancel("SetDuration", rejected(ErrNothingSelected, "no beats to change"))
	}
	for _, id := range beats {
		b, _, err := m.beat(id)
		if err != nil {
			return m.cancel("SetDuration", err)
		}
		if err := b.SetDuration(d); err != nil {
			return m.cancel("SetDuration", err)
		}
	}
	return nil
}

// SetDots changes the dot count of every given beat.
func (m *Model) SetDots(beats []tabula.ID, dots int) error {
	defer m.change("SetDots", MajorChange)()
	if len(beats) == 0 {
		return m.cancel("SetDots", rejected(ErrNothingSelected, "no beats to change"))
	}
	for _, id := range beats {
		b, _, err := m.beat(id)
		if err != nil {
			return m.cancel("SetDots", err)
		}
		if err := b.SetDots(dots); err != nil {
			return m.cancel("SetDots", err)
		}
	}
	return nil
}

// StepDuration halves (delta > 0) or doubles (delta < 0) the duration of the
// selected beats, stopping at the shortest and longest values.
func (m *Model) StepDuration(delta int) error {
	beats := m.SelectedBeats()
	if len(beats) == 0 {
		return rejected(ErrNothingSelected, "no beats to change")
	}
	b, _, err := m.beat(beats[0])
	if err != nil {
		return err
	}
	i := 0
	for k, d := range tabula.Durations {
		if d == b.Duration {
			i = k
		}
	}
	i = max(0, min(len(tabula.Durations)-1, i+delta))
	return m.SetDuration(beats, tabula.Durations[i])
}
