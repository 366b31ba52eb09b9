package history

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchpad/internal/raster"
)

// snaps returns n distinguishable snapshots of a tiny surface.
func snaps(t *testing.T, n int) []*raster.Snapshot {
	t.Helper()
	s, err := raster.New(2, 2)
	require.NoError(t, err)
	s.InitBlank()
	out := make([]*raster.Snapshot, n)
	for i := range out {
		s.FloodFill(image.Pt(0, 0), color.RGBA{uint8(i), uint8(i * 3), 7, 255})
		out[i] = s.Snapshot()
	}
	return out
}

func TestNewRaisesLimit(t *testing.T) {
	assert.Equal(t, 2, New(0).Limit())
	assert.Equal(t, 2, New(1).Limit())
	assert.Equal(t, DefaultMaxHistory, New(DefaultMaxHistory).Limit())
}

func TestEmptyManager(t *testing.T) {
	m := New(5)
	assert.Nil(t, m.Base())
	assert.Nil(t, m.Current())
	_, ok := m.Undo()
	assert.False(t, ok)
	_, ok = m.Redo()
	assert.False(t, ok)
}

func TestCommitWithinLimit(t *testing.T) {
	s := snaps(t, 4)
	m := New(10)
	m.Reset(s[0])
	m.Commit(s[1])
	m.Commit(s[2])
	m.Commit(s[3])
	assert.Equal(t, 4, m.Len())
	assert.Same(t, s[0], m.Base())
	assert.Same(t, s[3], m.Current())
	assert.Zero(t, m.RedoLen())
}

func TestOverflowKeepsBase(t *testing.T) {
	s := snaps(t, 40)
	m := New(DefaultMaxHistory)
	m.Reset(s[0])
	for _, snap := range s[1:] {
		m.Commit(snap)
		assert.LessOrEqual(t, m.Len(), DefaultMaxHistory)
		assert.Same(t, s[0], m.Base())
	}
	assert.Equal(t, DefaultMaxHistory, m.Len())
	assert.Same(t, s[39], m.Current())

	// The oldest non-base entries went first, so undoing everything lands on
	// the base with the most recent 29 commits on the redo stack.
	for m.CanUndo() {
		_, ok := m.Undo()
		require.True(t, ok)
	}
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, DefaultMaxHistory-1, m.RedoLen())
	next, ok := m.Redo()
	require.True(t, ok)
	assert.Same(t, s[11], next)
}

func TestUndoAtBaseIsNoop(t *testing.T) {
	s := snaps(t, 1)
	m := New(3)
	m.Reset(s[0])
	got, ok := m.Undo()
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 1, m.Len())
	assert.Zero(t, m.RedoLen())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := snaps(t, 3)
	m := New(5)
	m.Reset(s[0])
	m.Commit(s[1])
	m.Commit(s[2])

	got, ok := m.Undo()
	require.True(t, ok)
	assert.Same(t, s[1], got)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 1, m.RedoLen())

	got, ok = m.Redo()
	require.True(t, ok)
	assert.True(t, got.Equal(s[2]))
	assert.Same(t, s[2], m.Current())
	assert.Equal(t, 3, m.Len())
	assert.Zero(t, m.RedoLen())

	_, ok = m.Redo()
	assert.False(t, ok)
}

func TestRedoOrder(t *testing.T) {
	s := snaps(t, 4)
	m := New(5)
	m.Reset(s[0])
	for _, snap := range s[1:] {
		m.Commit(snap)
	}
	m.Undo()
	m.Undo()
	m.Undo()
	for _, want := range s[1:] {
		got, ok := m.Redo()
		require.True(t, ok)
		assert.Same(t, want, got)
	}
}

func TestCommitAfterUndoClearsRedo(t *testing.T) {
	s := snaps(t, 4)
	m := New(5)
	m.Reset(s[0])
	m.Commit(s[1])
	m.Commit(s[2])
	m.Undo()
	require.True(t, m.CanRedo())

	m.Commit(s[3])
	assert.False(t, m.CanRedo())
	assert.Equal(t, 3, m.Len())
	assert.Same(t, s[3], m.Current())
}

func TestResetDropsEverything(t *testing.T) {
	s := snaps(t, 4)
	m := New(5)
	m.Reset(s[0])
	m.Commit(s[1])
	m.Commit(s[2])
	m.Undo()

	m.Reset(s[3])
	assert.Equal(t, 1, m.Len())
	assert.Zero(t, m.RedoLen())
	assert.Same(t, s[3], m.Base())
	assert.Same(t, s[3], m.Current())
}

func TestCommitNilIgnored(t *testing.T) {
	s := snaps(t, 1)
	m := New(5)
	m.Reset(s[0])
	m.Commit(nil)
	assert.Equal(t, 1, m.Len())
}
