// Package history keeps a bounded undo/redo stack of canvas snapshots. The
// first entry is the base: it is never evicted and never undone past.
package history

import "github.com/example/sketchpad/internal/raster"

// DefaultMaxHistory is the default number of retained entries, base included.
const DefaultMaxHistory = 30

// Manager is not safe for concurrent use; the editor serialises access.
type Manager struct {
	states []*raster.Snapshot
	redo   []*raster.Snapshot
	limit  int
}

// New returns an empty manager retaining at most limit entries. Limits below
// two are raised to two so that one step can always be undone.
func New(limit int) *Manager {
	if limit < 2 {
		limit = 2
	}
	return &Manager{limit: limit}
}

// Reset discards all entries and makes base the sole entry.
func (m *Manager) Reset(base *raster.Snapshot) {
	m.states = []*raster.Snapshot{base}
	m.redo = nil
}

// Commit appends s and clears the redo stack. When the limit is exceeded the
// oldest entry after the base is dropped.
func (m *Manager) Commit(s *raster.Snapshot) {
	if s == nil {
		return
	}
	m.states = append(m.states, s)
	if len(m.states) > m.limit {
		m.states = append(m.states[:1], m.states[2:]...)
	}
	m.redo = nil
}

// Undo moves the newest entry onto the redo stack and returns the entry that
// should now be shown. It reports false when only the base remains.
func (m *Manager) Undo() (*raster.Snapshot, bool) {
	if len(m.states) < 2 {
		return nil, false
	}
	last := len(m.states) - 1
	m.redo = append([]*raster.Snapshot{m.states[last]}, m.redo...)
	m.states[last] = nil
	m.states = m.states[:last]
	return m.states[last-1], true
}

// Redo reapplies the most recently undone entry.
func (m *Manager) Redo() (*raster.Snapshot, bool) {
	if len(m.redo) == 0 {
		return nil, false
	}
	next := m.redo[0]
	m.redo = m.redo[1:]
	m.states = append(m.states, next)
	return next, true
}

func (m *Manager) Len() int { return len(m.states) }
func (m *Manager) RedoLen() int { return len(m.redo) }
func (m *Manager) Limit() int { return m.limit }
func (m *Manager) CanUndo() bool { return len(m.states) > 1 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Base returns the oldest entry, or nil before Reset.
func (m *Manager) Base() *raster.Snapshot {
	if len(m.states) == 0 {
		return nil
	}
	return m.states[0]
}

// Current returns the newest entry, or nil before Reset.
func (m *Manager) Current() *raster.Snapshot {
	if len(m.states) == 0 {
		return nil
	}
	return m.states[len(m.states)-1]
}
