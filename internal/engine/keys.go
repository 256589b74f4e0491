package engine

import "strings"

// KeyEvent is a key press with its modifiers. Key follows the DOM
// KeyboardEvent.key naming ("z", "Delete", "Escape").
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
}

var toolKeys = map[string]Tool{
	"v": ToolSelect, "1": ToolSelect,
	"h": ToolHand, "2": ToolHand,
	"p": ToolPen, "3": ToolPen,
	"l": ToolLine, "4": ToolLine,
	"r": ToolRectangle, "5": ToolRectangle,
	"c": ToolCircle, "6": ToolCircle,
	"a": ToolArrow, "7": ToolArrow,
	"t": ToolText, "8": ToolText,
}

// KeyDown runs the shortcut bound to ev and reports whether one matched.
func (e *Engine) KeyDown(ev KeyEvent) bool {
	if _, editing := e.TextEdit(); editing {
		return false
	}

	key := strings.ToLower(ev.Key)
	if ev.Ctrl || ev.Meta {
		switch key {
		case "z":
			if ev.Shift {
				e.Redo()
			} else {
				e.Undo()
			}
		case "y":
			e.Redo()
		case "=", "+":
			e.ZoomIn()
		case "-":
			e.ZoomOut()
		case "0", "1":
			e.ResetZoom()
		default:
			return false
		}
		return true
	}

	switch key {
	case "escape":
		e.ClearSelection()
		return true
	case "delete", "backspace":
		return e.confirmDelete()
	}

	if t, ok := toolKeys[key]; ok {
		// SetTool only fails for unknown tools
		_ = e.SetTool(t)
		return true
	}
	return false
}

// confirmDelete asks the host before deleting the selection. The callback
// runs without the lock so it may block on a dialog.
func (e *Engine) confirmDelete() bool {
	e.mu.Lock()
	n := len(e.store.Selection())
	confirm := e.confirm
	e.mu.Unlock()

	if n == 0 {
		return false
	}
	if confirm != nil && !confirm(n) {
		return true
	}
	e.DeleteSelected()
	return true
}
