package editor

import (
	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
)

// Player plays the track. The editor only starts and stops it and asks
// where it is.
type Player interface {
	IsPlaying() bool
	CurrentBeat() (tabula.ID, bool)
	TogglePlay()
}

func (m *Model) SetPlayer(p Player) { m.player = p }

// TogglePlay returns an Action to start or stop the player; it is disabled
// without one.
func (m *Model) TogglePlay() Action { return MakeAction((*togglePlay)(m)) }

type togglePlay Model

func (m *togglePlay) Enabled() bool { return m.player != nil }
func (m *togglePlay) Do() error {
	m.player.TogglePlay()
	return nil
}

// PlaybackCursor returns the rectangle of the beat being played.
func (m *Model) PlaybackCursor() (layout.Rect, bool) {
	if m.player == nil || !m.player.IsPlaying() {
		return layout.Rect{}, false
	}
	id, ok := m.player.CurrentBeat()
	if !ok {
		return layout.Rect{}, false
	}
	return m.tab.BeatRect(id)
}
