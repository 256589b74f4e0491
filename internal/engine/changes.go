package engine

import "github.com/inkboard/inkboard/internal/document"

// ChangeKind names a committed edit. The values match the relay's operation
// types so a change can be submitted as-is.
type ChangeKind string

const (
	ChangePathAdd        ChangeKind = "path.add"
	ChangeShapeAdd       ChangeKind = "shape.add"
	ChangeShapeUpdate    ChangeKind = "shape.update"
	ChangeElementsDelete ChangeKind = "elements.delete"
	ChangeSceneClear     ChangeKind = "scene.clear"
	ChangeSceneReplace   ChangeKind = "scene.replace"
)

// Change is one committed local edit in primitive form.
type Change struct {
	Type     ChangeKind           `json:"type"`
	Path     *document.Path       `json:"path,omitempty"`
	Shape    *document.Shape      `json:"shape,omitempty"`
	ObjectID string               `json:"objectId,omitempty"`
	Patch    *document.ShapePatch `json:"patch,omitempty"`
	IDs      []string             `json:"ids,omitempty"`
	Scene    *document.Scene      `json:"scene,omitempty"`
}

// CommitFunc receives the changes behind one local undo step, in order. It
// is called without the engine lock held, so it may call back into the
// engine.
type CommitFunc func(changes []Change)

// WithOnCommit reports local edits, for forwarding to a collaboration relay.
// Replay calls (AddPath, AddShape, UpdateShape, DeleteElements) apply edits
// that came from elsewhere and are not reported.
func WithOnCommit(fn CommitFunc) Option {
	return func(e *Engine) { e.onCommit = fn }
}

func (e *Engine) recordLocked(c Change) {
	if e.onCommit != nil {
		e.pending = append(e.pending, c)
	}
}

// unlock releases the engine and then delivers the changes recorded while
// it was held.
func (e *Engine) unlock() {
	changes := e.pending
	e.pending = nil
	fn := e.onCommit
	e.mu.Unlock()
	if fn != nil && len(changes) > 0 {
		fn(changes)
	}
}

func pathChange(p document.Path) Change {
	cp := p.Clone()
	return Change{Type: ChangePathAdd, Path: &cp}
}

func shapeAddChange(s document.Shape) Change {
	cp := s.Clone()
	return Change{Type: ChangeShapeAdd, Shape: &cp}
}

func shapeUpdateChange(id string, patch document.ShapePatch) Change {
	return Change{Type: ChangeShapeUpdate, ObjectID: id, Patch: &patch}
}

func sceneReplaceChange(sc document.Scene) Change {
	cp := sc.Clone()
	return Change{Type: ChangeSceneReplace, Scene: &cp}
}
