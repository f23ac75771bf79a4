package editor

import "github.com/tabula-go/tabula"

// SetBarBeats changes the number of beats of the bar's time signature.
func (m *Model) SetBarBeats(bar tabula.ID, count int) error {
	defer m.change("SetBarBeats", MajorChange)()
	b, err := m.bar(bar)
	if err != nil {
		return m.cancel("SetBarBeats", err)
	}
	if err := b.SetSignature(count, b.BeatDuration); err != nil {
		return m.cancel("SetBarBeats", err)
	}
	return nil
}

// SetBarDuration changes the beat unit of the bar's time signature.
func (m *Model) SetBarDuration(bar tabula.ID, d tabula.Duration) error {
	defer m.change("SetBarDuration", MajorChange)()
	b, err := m.bar(bar)
	if err != nil {
		return m.cancel("SetBarDuration", err)
	}
	if err := b.SetSignature(b.BeatsCount, d); err != nil {
		return m.cancel("SetBarDuration", err)
	}
	return nil
}

// SetTempo changes the tempo of a bar.
func (m *Model) SetTempo(bar tabula.ID, tempo int) error {
	defer m.change("SetTempo", MajorChange)()
	b, err := m.bar(bar)
	if err != nil {
		return m.cancel("SetTempo", err)
	}
	if err := b.SetTempo(tempo); err != nil {
		return m.cancel("SetTempo", err)
	}
	return nil
}

// SetRepeat changes the repeat marks of a bar.
func (m *Model) SetRepeat(bar tabula.ID, r tabula.RepeatStatus) error {
	defer m.change("SetRepeat", MajorChange)()
	b, err := m.bar(bar)
	if err != nil {
		return m.cancel("SetRepeat", err)
	}
	if r < tabula.RepeatNone || r > tabula.RepeatStartEnd {
		return m.cancel("SetRepeat", rejected(tabula.ErrInvalidField, "unknown repeat status %d", r))
	}
	b.Repeat = r
	return nil
}

// CursorBar returns the bar holding the cursor beat.
func (m *Model) CursorBar() (*tabula.Bar, bool) {
	_, b, err := m.beat(m.d.Cursor.Beat)
	return b, err == nil
}
