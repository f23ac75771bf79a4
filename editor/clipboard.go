package editor

import (
	"github.com/tabula-go/tabula"
)

// Copy serializes the given beats, in the order given, and keeps them as the
// clipboard of the model. The serialized form is returned too, e.g. for the
// system clipboard.
func (m *Model) Copy(beats []tabula.ID) ([]byte, error) {
	if len(beats) == 0 {
		return nil, rejected(ErrNothingSelected, "no beats to copy")
	}
	copied := make([]tabula.Beat, 0, len(beats))
	for _, id := range beats {
		b, _, err := m.beat(id)
		if err != nil {
			return nil, err
		}
		copied = append(copied, b.Copy())
	}
	data, err := tabula.MarshalBeats(copied)
	if err != nil {
		return nil, err
	}
	m.clipboard = data
	return data, nil
}

// Paste inserts the clipboard beats before the beat at, in its bar. The
// pasted beats, notes and effects get fresh identities; effects and beam
// groups shared within the clipboard stay shared among the copies. The
// cursor moves to the first pasted beat.
func (m *Model) Paste(at tabula.ID) error {
	if m.clipboard == nil {
		return rejected(ErrEmptyClipboard, "nothing to paste")
	}
	return m.PasteData(at, m.clipboard)
}

// PasteData is Paste with data from elsewhere, e.g. the system clipboard.
func (m *Model) PasteData(at tabula.ID, data []byte) error {
	defer m.change("Paste", MajorChange)()
	_, bar, err := m.beat(at)
	if err != nil {
		return m.cancel("Paste", err)
	}
	beats, err := tabula.UnmarshalBeats(data, m.d.Track.Guitar.StringsCount, m.ids)
	if err != nil {
		return m.cancel("Paste", err)
	}
	if len(beats) == 0 {
		return m.cancel("Paste", rejected(ErrEmptyClipboard, "no beats in pasted data"))
	}
	i := bar.BeatIndex(at)
	remap := map[tabula.ID]tabula.ID{}
	for k := range beats {
		c := beats[k].Clone(m.ids, remap)
		if err := bar.InsertBeat(i+k, c); err != nil {
			return m.cancel("Paste", err)
		}
		if k == 0 {
			m.d.Cursor.Beat = c.ID
		}
	}
	return nil
}
