// Package history keeps the committed strokes and the redo buffer.
package history

import "github.com/example/inkwell/internal/stroke"

// History is a linear undo/redo stack. The zero value is empty.
type History struct {
	committed []stroke.Stroke
	redo      []stroke.Stroke
}

// Commit appends s and invalidates any redo history. Empty strokes are
// dropped.
func (h *History) Commit(s stroke.Stroke) bool {
	if len(s.Points) == 0 {
		return false
	}
	h.committed = append(h.committed, s.Clone())
	h.redo = nil
	return true
}

// Undo moves the newest committed stroke onto the redo buffer.
func (h *History) Undo() bool {
	n := len(h.committed)
	if n == 0 {
		return false
	}
	s := h.committed[n-1]
	h.committed = h.committed[:n-1]
	h.redo = append(h.redo, s)
	return true
}

// Redo moves the most recently undone stroke back onto the committed list.
func (h *History) Redo() bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	s := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.committed = append(h.committed, s)
	return true
}

// Clear empties both lists.
func (h *History) Clear() {
	h.committed = nil
	h.redo = nil
}

// Committed returns the committed strokes in drawing order. The slice is
// owned by the History; callers must not modify it.
func (h *History) Committed() []stroke.Stroke { return h.committed }

// Len reports the number of committed strokes.
func (h *History) Len() int { return len(h.committed) }

// RedoLen reports the number of strokes that can be redone.
func (h *History) RedoLen() int { return len(h.redo) }
