package xsdedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEmptyStacks(t *testing.T) {
	h := NewHistory()
	assert.ErrorIs(t, h.Undo(nil), ErrNothingToUndo)
	assert.ErrorIs(t, h.Redo(nil), ErrNothingToRedo)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Empty(t, h.UndoDescription())
}

func TestHistoryUndoRedoSymmetry(t *testing.T) {
	h := NewHistory()
	seq := NewCompositor(KindSequence)
	a := NewElement("a")
	b := NewElement("b")

	require.NoError(t, h.Execute(nil, AddChild(seq, a, -1)))
	require.NoError(t, h.Execute(nil, AddChild(seq, b, -1)))
	require.Equal(t, 2, seq.ChildCount())

	require.NoError(t, h.Undo(nil))
	require.NoError(t, h.Undo(nil))
	assert.Equal(t, 0, seq.ChildCount())
	assert.False(t, h.CanUndo())

	require.NoError(t, h.Redo(nil))
	require.NoError(t, h.Redo(nil))
	assert.Equal(t, 2, seq.ChildCount())
	assert.Same(t, a, seq.ChildAt(0))
	assert.Same(t, b, seq.ChildAt(1))
	assert.False(t, h.CanRedo())
}

func TestHistoryExecuteClearsRedo(t *testing.T) {
	h := NewHistory()
	el := NewElement("a")

	require.NoError(t, h.Execute(nil, Rename(el, "b")))
	require.NoError(t, h.Undo(nil))
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Execute(nil, Rename(el, "c")))
	assert.False(t, h.CanRedo())
	assert.ErrorIs(t, h.Redo(nil), ErrNothingToRedo)
}

// Merging never reaches across an undo boundary: after an undo, a new
// command starts a fresh entry even if the previous top would merge.
func TestHistoryNoMergeWithPendingRedo(t *testing.T) {
	h := NewHistory()
	el := NewElement("a")

	require.NoError(t, h.Execute(nil, Rename(el, "b")))
	require.NoError(t, h.Undo(nil))
	require.NoError(t, h.Execute(nil, Rename(el, "c")))

	require.NoError(t, h.Undo(nil))
	assert.Equal(t, "a", el.Name())
}

func TestHistoryFailedCommandNotRecorded(t *testing.T) {
	h := NewHistory()
	el := NewElement("a")

	require.Error(t, h.Execute(nil, Rename(el, "")))
	assert.False(t, h.CanUndo())
}

func TestHistoryLimitEvictsOldest(t *testing.T) {
	h := NewHistoryWithLimit(3)
	seq := NewCompositor(KindSequence)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Execute(nil, AddChild(seq, NewElement("e"), -1)))
	}

	undos := 0
	for h.CanUndo() {
		require.NoError(t, h.Undo(nil))
		undos++
	}
	assert.Equal(t, 3, undos)
}

func TestHistoryDescriptions(t *testing.T) {
	h := NewHistory()
	el := NewElement("a")

	require.NoError(t, h.Execute(nil, Rename(el, "b")))
	assert.Equal(t, `rename to "b"`, h.UndoDescription())
	assert.Empty(t, h.RedoDescription())

	require.NoError(t, h.Undo(nil))
	assert.Equal(t, `rename to "b"`, h.RedoDescription())
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	el := NewElement("a")
	require.NoError(t, h.Execute(nil, Rename(el, "b")))
	require.NoError(t, h.Undo(nil))

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
