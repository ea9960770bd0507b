package xsdedit

import "sync"

// DefaultHistoryLimit caps the undo stack; the oldest entry is evicted
// once the limit is reached.
const DefaultHistoryLimit = 1000

// History executes commands and records them for undo and redo. All
// methods are safe for concurrent use, but commands themselves run
// under the history lock, so a command must never call back into its
// own History.
type History struct {
	mu        sync.Mutex
	undoStack []Command
	redoStack []Command
	limit     int
	executing bool
}

// NewHistory returns a history with the default entry limit.
func NewHistory() *History {
	return &History{limit: DefaultHistoryLimit}
}

// NewHistoryWithLimit returns a history holding at most limit undo
// entries. A non-positive limit falls back to the default.
func NewHistoryWithLimit(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Execute applies cmd and pushes it onto the undo stack, clearing any
// pending redo entries. When the redo stack is empty, the newest undo
// entry is offered the command for merging, so bursts of small edits
// collapse into one entry.
func (h *History) Execute(bus *Bus, cmd Command) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.executing {
		return ErrReentrant
	}

	h.executing = true
	err := cmd.Apply(bus)
	h.executing = false
	if err != nil {
		return err
	}

	if len(h.redoStack) == 0 && len(h.undoStack) > 0 {
		if m, ok := h.undoStack[len(h.undoStack)-1].(mergeable); ok && m.merge(cmd) {
			return nil
		}
	}

	h.redoStack = h.redoStack[:0]
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.limit {
		h.undoStack = h.undoStack[1:]
	}
	return nil
}

// Undo reverts the most recent command and moves it to the redo stack.
func (h *History) Undo(bus *Bus) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.executing {
		return ErrReentrant
	}
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}

	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]

	h.executing = true
	err := cmd.Revert(bus)
	h.executing = false
	if err != nil {
		// Put the entry back so the history still reflects the tree.
		h.undoStack = append(h.undoStack, cmd)
		return err
	}

	h.redoStack = append(h.redoStack, cmd)
	return nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(bus *Bus) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.executing {
		return ErrReentrant
	}
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}

	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]

	h.executing = true
	err := cmd.Apply(bus)
	h.executing = false
	if err != nil {
		h.redoStack = append(h.redoStack, cmd)
		return err
	}

	h.undoStack = append(h.undoStack, cmd)
	return nil
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoDescription returns the description of the entry Undo would
// revert, or "" when the undo stack is empty.
func (h *History) UndoDescription() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Description()
}

// RedoDescription returns the description of the entry Redo would
// re-apply, or "" when the redo stack is empty.
func (h *History) RedoDescription() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Description()
}

// Clear drops both stacks, typically after loading a new document.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
}
