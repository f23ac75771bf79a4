package editor

import (
	"reflect"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
)

type (
	// Model is the editable state of one track: the track itself, the
	// cursor and range selection, the undo history and the layout kept in
	// sync with every change. A Model is owned by a single goroutine.
	Model struct {
		d   modelData
		ids *tabula.IDSource
		tab *layout.Tab

		player    Player
		clipboard []byte
		fretEntry fretEntry
		bindings  map[keyCombo]string

		undoStack    []modelData
		redoStack    []modelData
		prevUndoKind string
		// historyRev changes whenever an entry is pushed or popped.
		historyRev int

		changeLevel    int
		changeCancel   bool
		changeSnapshot modelData
	}

	// modelData is the part of the model that undo and redo restore.
	modelData struct {
		Track     tabula.Track
		Cursor    NoteRef
		Selection BeatRange
	}

	ChangeSeverity int
)

const (
	// MajorChange always gets an undo entry of its own.
	MajorChange ChangeSeverity = iota
	// MinorChange is merged into the previous undo entry when the previous
	// change was of the same kind.
	MinorChange
)

const maxUndo = 256

// NewModel returns a model editing track. ids generates the identities of
// everything the editor creates. renderer may be nil.
func NewModel(track tabula.Track, ids *tabula.IDSource, dim layout.Dim, renderer layout.Renderer) *Model {
	m := &Model{ids: ids, tab: layout.NewTab(dim, renderer)}
	m.d.Track = track.Copy()
	m.d.Track.Refit()
	if len(m.d.Track.Bars) > 0 && len(m.d.Track.Bars[0].Beats) > 0 {
		m.d.Cursor = NoteRef{Beat: m.d.Track.Bars[0].Beats[0].ID, String: 1}
	}
	m.bindings = loadKeyBindings()
	m.tab.Update(&m.d.Track)
	return m
}

func (d *modelData) Copy() modelData {
	ret := *d
	ret.Track = d.Track.Copy()
	return ret
}

// Track returns the edited track. It must not be modified by the caller.
func (m *Model) Track() *tabula.Track { return &m.d.Track }

// Tab returns the layout of the track.
func (m *Model) Tab() *layout.Tab { return m.tab }

func (m *Model) IDs() *tabula.IDSource { return m.ids }

// change starts a change to the model and returns the function that ends
// it, to be deferred. Changes nest; only the outermost one takes effect. If
// the change was cancelled, or did not change anything, the model is left as
// it was and no undo entry is made; a cancelled change is laid out again, as
// the snapshot it restores is a different copy of the track. Otherwise the bars are refitted, the
// layout is updated and the previous state is pushed to the undo stack.
func (m *Model) change(kind string, severity ChangeSeverity) func() {
	if m.changeLevel == 0 {
		m.changeSnapshot = m.d.Copy()
		m.changeCancel = false
	}
	m.changeLevel++
	return func() {
		m.changeLevel--
		if m.changeLevel > 0 {
			return
		}
		if m.changeCancel {
			m.d = m.changeSnapshot
			m.tab.Update(&m.d.Track)
			return
		}
		m.d.Track.Refit()
		if reflect.DeepEqual(m.d, m.changeSnapshot) {
			return
		}
		if severity == MajorChange || kind != m.prevUndoKind {
			m.undoStack = append(m.undoStack, m.changeSnapshot)
			if len(m.undoStack) > maxUndo {
				m.undoStack = m.undoStack[len(m.undoStack)-maxUndo:]
			}
			m.redoStack = m.redoStack[:0]
			m.historyRev++
		}
		m.prevUndoKind = kind
		m.tab.Update(&m.d.Track)
	}
}

// cancel rejects the change in progress and passes err on.
func (m *Model) cancel(kind string, err error) error {
	m.changeCancel = true
	tabula.Logger().Info("command rejected", "command", kind, "err", err)
	return err
}
