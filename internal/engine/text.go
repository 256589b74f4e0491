package engine

import (
	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/typeid"
)

// TextEdit is an open text editor. ShapeID is empty for a new caption.
type TextEdit struct {
	ShapeID  string  `json:"shapeId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
}

func (e *Engine) openTextEditLocked(s document.Shape) {
	e.textEdit = &TextEdit{
		ShapeID:  s.ID,
		X:        s.X,
		Y:        s.Y,
		Text:     s.Text,
		FontSize: s.EffectiveFontSize(),
	}
}

// TextEdit returns the open editor, if any.
func (e *Engine) TextEdit() (TextEdit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.textEdit == nil {
		return TextEdit{}, false
	}
	return *e.textEdit, true
}

// CommitText closes the editor with its final text. Blank text discards a
// new caption and leaves an existing one untouched.
func (e *Engine) CommitText(s string) error {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()

	edit := e.textEdit
	e.textEdit = nil
	if edit == nil || s == "" {
		return nil
	}

	if edit.ShapeID != "" {
		patch := document.ShapePatch{Text: document.String(s)}
		if err := e.store.UpdateShape(edit.ShapeID, patch); err != nil {
			return err
		}
		e.recordLocked(shapeUpdateChange(edit.ShapeID, patch))
		e.commitLocked()
		return nil
	}

	sh := document.Shape{
		ID:       e.newID(typeid.PrefixShape),
		Type:     document.ShapeText,
		X:        edit.X,
		Y:        edit.Y,
		Text:     s,
		FontSize: edit.FontSize,
		Stroke:   e.settings.StrokeColor,
		Fill:     e.settings.StrokeColor,
		Opacity:  e.settings.Opacity,
	}
	sh.SyncTextBounds()
	if err := e.store.AddShape(sh); err != nil {
		return err
	}
	e.recordLocked(shapeAddChange(sh))
	e.commitLocked()
	return nil
}

func (e *Engine) CancelText() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.textEdit = nil
}
