package editor

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
	"gopkg.in/yaml.v3"
)

type (
	// KeyEvent is a key press as classified by the input layer. Name is a
	// digit, an upper case letter, a symbol or one of Left, Right, Up, Down,
	// Delete, Backspace, Insert and Space. Time is when the key was pressed.
	KeyEvent struct {
		Name        string
		Ctrl, Shift bool
		Time        time.Time
	}

	KeyBinding struct {
		Key         string
		Ctrl, Shift bool `yaml:",omitempty"`
		Action      string
	}

	keyCombo struct {
		name        string
		ctrl, shift bool
	}

	// fretEntry remembers the last digit typed, so that a second digit typed
	// soon after on the same note makes a two digit fret. rev is the history
	// revision right after the digit was entered, pushed whether entering it
	// made an undo entry.
	fretEntry struct {
		ref    NoteRef
		digit  int
		at     time.Time
		rev    int
		pushed bool
	}
)

// FretEntryWindow is how soon a second digit must follow the first to be
// taken as part of the same fret.
const FretEntryWindow = 500 * time.Millisecond

// defaultBendPitch is the pitch, in tones, of a bend added with a shortcut.
const defaultBendPitch = 1

//go:embed keybindings.yml
var defaultKeyBindingsYaml []byte

func decodeKeyBindings(data []byte) ([]KeyBinding, error) {
	var ret []KeyBinding
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func loadDefaultKeyBindings() []KeyBinding {
	keyBindings, err := decodeKeyBindings(defaultKeyBindingsYaml)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal keybindings: %w", err))
	}
	return keyBindings
}

// loadCustomKeyBindings reads <UserConfigDir>/tabula/keybindings.yml. A
// missing or broken file gives no bindings.
func loadCustomKeyBindings() []KeyBinding {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(configDir, "tabula", "keybindings.yml"))
	if err != nil {
		return nil
	}
	keyBindings, err := decodeKeyBindings(data)
	if err != nil {
		tabula.Logger().Warn("ignoring custom key bindings", "err", err)
		return nil
	}
	return keyBindings
}

// loadKeyBindings merges the custom bindings over the defaults; a custom
// binding of a key replaces the default one.
func loadKeyBindings() map[keyCombo]string {
	ret := map[keyCombo]string{}
	for _, kb := range append(loadDefaultKeyBindings(), loadCustomKeyBindings()...) {
		ret[keyCombo{kb.Key, kb.Ctrl, kb.Shift}] = kb.Action
	}
	return ret
}

// KeyEvent handles a key press. Digits enter frets on the cursor note; other
// keys run the action they are bound to. It reports whether the key was
// handled and the error of a rejected command.
func (m *Model) KeyEvent(e KeyEvent) (bool, error) {
	if len(e.Name) == 1 && e.Name[0] >= '0' && e.Name[0] <= '9' && !e.Ctrl && !e.Shift {
		return true, m.enterDigit(int(e.Name[0]-'0'), e.Time)
	}
	m.fretEntry = fretEntry{}
	action, ok := m.bindings[keyCombo{e.Name, e.Ctrl, e.Shift}]
	if !ok {
		return false, nil
	}
	a, ok := m.keyAction(action)
	if !ok {
		return false, fmt.Errorf("key %q is bound to unknown action %q", e.Name, action)
	}
	return true, a.Do()
}

// enterDigit sets the fret of the cursor note. A digit following a 1 or 2
// on the same note within FretEntryWindow replaces the fret with the two
// digit number. The two digits share one undo entry when the first one made
// an entry and nothing was recorded since.
func (m *Model) enterDigit(d int, at time.Time) error {
	prev := m.fretEntry
	m.fretEntry = fretEntry{}
	if prev.ref == m.d.Cursor && prev.digit > 0 && at.Sub(prev.at) <= FretEntryWindow {
		if fret := prev.digit*10 + d; fret <= tabula.MaxFret {
			severity := MajorChange
			if prev.pushed && prev.rev == m.historyRev && m.prevUndoKind == "SetFret" {
				severity = MinorChange
			}
			return m.setFret(m.d.Cursor, fret, severity)
		}
	}
	rev := m.historyRev
	err := m.setFret(m.d.Cursor, d, MajorChange)
	m.fretEntry = fretEntry{ref: m.d.Cursor, digit: d, at: at, rev: m.historyRev, pushed: m.historyRev != rev}
	return err
}

func (m *Model) keyAction(name string) (Action, bool) {
	effect := func(t tabula.EffectType, opts tabula.EffectOptions) Action {
		return MakeAction(doerFunc(func() error {
			_, err := m.ToggleEffect(t, opts)
			return err
		}))
	}
	move := func(dir layout.Direction) Action {
		return MakeAction(doerFunc(func() error { return m.Move(dir) }))
	}
	switch name {
	case "Undo":
		return m.History().Undo(), true
	case "Redo":
		return m.History().Redo(), true
	case "Copy":
		return MakeAction(doerFunc(func() error {
			_, err := m.Copy(m.SelectedBeats())
			return err
		})), true
	case "Paste":
		return MakeAction(doerFunc(func() error { return m.Paste(m.d.Cursor.Beat) })), true
	case "Vibrato":
		return effect(tabula.Vibrato, nil), true
	case "PalmMute":
		return effect(tabula.PalmMute, nil), true
	case "Bend":
		return effect(tabula.Bend, tabula.BendOptions{BendPitch: defaultBendPitch}), true
	case "HammerOn":
		return effect(tabula.HammerOnStart, nil), true
	case "Slide":
		return effect(tabula.SlideStart, nil), true
	case "MoveLeft":
		return move(layout.Left), true
	case "MoveRight":
		return move(layout.Right), true
	case "MoveUp":
		return move(layout.Up), true
	case "MoveDown":
		return move(layout.Down), true
	case "ClearFret":
		return MakeAction(doerFunc(func() error { return m.ClearFret(m.d.Cursor) })), true
	case "DeleteBeats":
		return MakeAction(doerFunc(func() error { return m.DeleteBeats(m.SelectedBeats()) })), true
	case "InsertBeat":
		return MakeAction(doerFunc(func() error {
			_, err := m.InsertBeat(m.d.Cursor.Beat)
			return err
		})), true
	case "TogglePlay":
		return m.TogglePlay(), true
	case "ShorterDuration":
		return MakeAction(doerFunc(func() error { return m.StepDuration(1) })), true
	case "LongerDuration":
		return MakeAction(doerFunc(func() error { return m.StepDuration(-1) })), true
	case "ToggleDot":
		return MakeAction(doerFunc(func() error {
			b, _, err := m.beat(m.d.Cursor.Beat)
			if err != nil {
				return err
			}
			return m.SetDots(m.SelectedBeats(), (b.Dots+1)%(tabula.MaxDots+1))
		})), true
	case "TempoUp":
		return MakeAction(doerFunc(func() error { m.Tempo().Int().Add(1); return nil })), true
	case "TempoDown":
		return MakeAction(doerFunc(func() error { m.Tempo().Int().Add(-1); return nil })), true
	case "Triplet":
		return MakeAction(doerFunc(func() error { return m.MakeTuplet(m.SelectedBeats(), 3, 2) })), true
	}
	return Action{}, false
}
