package engine

import (
	"log/slog"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
	"github.com/inkboard/inkboard/internal/render"
	"github.com/inkboard/inkboard/internal/typeid"
)

type gestureKind int

const (
	gestureIdle gestureKind = iota
	gesturePanning
	gestureDrawingPath
	gestureDrawingShape
	gestureDragging
	gestureResizing
)

func (k gestureKind) String() string {
	switch k {
	case gesturePanning:
		return "panning"
	case gestureDrawingPath:
		return "drawingPath"
	case gestureDrawingShape:
		return "drawingShape"
	case gestureDragging:
		return "dragging"
	case gestureResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// PointerEvent is a pointer position in screen pixels.
type PointerEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift"`
}

func (ev PointerEvent) screen() geometry.Point { return geometry.Point{X: ev.X, Y: ev.Y} }

// WheelEvent is one wheel notch at a screen position.
type WheelEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
}

// gesture is one pointer interaction from down to up.
type gesture struct {
	kind gestureKind

	// last is the previous pointer position: screen space while panning,
	// scene space otherwise.
	last   geometry.Point
	anchor geometry.Point

	handle   geometry.HandleName
	targetID string

	path  *document.Path
	shape *document.Shape

	// originals are the dragged or resized shapes as they were at gesture
	// start, restored on cancel.
	originals []document.Shape
	changed   bool
}

// targets returns the ids of the shapes a drag or resize moves.
func (g *gesture) targets() []string {
	ids := make([]string, len(g.originals))
	for i, s := range g.originals {
		ids[i] = s.ID
	}
	return ids
}

func (g *gesture) preview() render.Preview {
	var p render.Preview
	if g.path != nil {
		cp := g.path.Clone()
		p.Path = &cp
	}
	if g.shape != nil {
		cp := g.shape.Clone()
		p.Shape = &cp
	}
	return p
}

// PointerDown starts a gesture according to the current tool. A gesture
// still open from a lost pointer-up is cancelled first.
func (e *Engine) PointerDown(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.textEdit = nil

	screen := ev.screen()
	p := geometry.ToScene(screen, e.viewport)
	tool := e.settings.Tool

	switch tool {
	case ToolHand:
		e.gesture = gesture{kind: gesturePanning, last: screen}

	case ToolSelect:
		e.beginSelectLocked(p, ev.Shift)

	case ToolPen:
		e.gesture = gesture{
			kind: gestureDrawingPath,
			path: &document.Path{
				ID:          e.newID(typeid.PrefixPath),
				Points:      []float64{p.X, p.Y},
				Stroke:      e.settings.StrokeColor,
				StrokeWidth: e.settings.StrokeWidth,
				Opacity:     e.settings.Opacity,
			},
		}

	case ToolText:
		if hit, ok := geometry.HitTestShapes(p, e.store.Shapes()); ok && hit.Type == document.ShapeText {
			e.openTextEditLocked(hit)
			return
		}
		e.textEdit = &TextEdit{X: p.X, Y: p.Y, FontSize: document.DefaultFontSize}

	default:
		typ, ok := tool.shapeType()
		if !ok {
			return
		}
		seed := document.Shape{
			ID:          e.newID(typeid.PrefixShape),
			Type:        typ,
			X:           p.X,
			Y:           p.Y,
			Stroke:      e.settings.StrokeColor,
			StrokeWidth: e.settings.StrokeWidth,
			Opacity:     e.settings.Opacity,
		}
		if typ == document.ShapeRectangle || typ == document.ShapeCircle {
			seed.Fill = e.settings.FillColor
		}
		if typ.IsSegment() {
			seed.Points = []float64{p.X, p.Y, p.X, p.Y}
		}
		e.gesture = gesture{kind: gestureDrawingShape, anchor: p, shape: &seed}
	}
}

// beginSelectLocked picks between resizing, dragging and clearing.
func (e *Engine) beginSelectLocked(p geometry.Point, shift bool) {
	if selected := e.store.SelectedShapes(); len(selected) == 1 {
		handles := geometry.ResizeHandles(selected[0], e.viewport)
		if name, ok := geometry.HitTestHandle(p, handles); ok {
			e.gesture = gesture{
				kind:      gestureResizing,
				last:      p,
				handle:    name,
				targetID:  selected[0].ID,
				originals: selected,
			}
			return
		}
	}

	hit, ok := geometry.HitTestShapes(p, e.store.Shapes())
	if !ok {
		if !shift {
			e.store.ClearSelection()
		}
		return
	}

	if !e.store.IsSelected(hit.ID) {
		if shift {
			e.store.AddToSelection(hit.ID)
		} else {
			e.store.SetSelection([]string{hit.ID})
		}
	}
	e.gesture = gesture{
		kind:      gestureDragging,
		last:      p,
		targetID:  hit.ID,
		originals: e.store.SelectedShapes(),
	}
}

// PointerMove advances the active gesture. Drag and resize write straight
// into the store without committing history.
func (e *Engine) PointerMove(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := &e.gesture
	screen := ev.screen()
	p := geometry.ToScene(screen, e.viewport)

	switch g.kind {
	case gesturePanning:
		e.viewport = e.viewport.Pan(screen.Sub(g.last))
		g.last = screen

	case gestureResizing:
		s, ok := e.store.Shape(g.targetID)
		if !ok {
			e.gesture = gesture{}
			return
		}
		resized := geometry.ApplyResize(s, g.handle, p.Sub(g.last))
		if err := e.store.UpdateShape(g.targetID, document.Geometry(resized)); err != nil {
			e.gesture = gesture{}
			return
		}
		g.last = p
		g.changed = true

	case gestureDragging:
		d := p.Sub(g.last)
		if d.X == 0 && d.Y == 0 {
			return
		}
		e.store.TranslateShapes(g.targets(), d.X, d.Y)
		g.last = p
		g.changed = true

	case gestureDrawingPath:
		g.path.Points = append(g.path.Points, p.X, p.Y)

	case gestureDrawingShape:
		s := g.shape
		if s.Type.IsSegment() {
			s.Points = []float64{g.anchor.X, g.anchor.Y, p.X, p.Y}
			s.Normalize()
		} else {
			s.Width = p.X - g.anchor.X
			s.Height = p.Y - g.anchor.Y
		}
	}
}

// PointerUp finishes the gesture. Drawn elements are committed if they are
// not degenerate; drags and resizes become a single undo step.
func (e *Engine) PointerUp(PointerEvent) {
	e.mu.Lock()
	defer e.unlock()

	g := e.gesture
	e.gesture = gesture{}

	switch g.kind {
	case gestureDrawingPath:
		// too-short strokes are discarded without a report
		if err := e.store.AddPath(*g.path); err == nil {
			e.recordLocked(pathChange(*g.path))
			e.commitLocked()
		}

	case gestureDrawingShape:
		if !g.shape.HasExtent() {
			return
		}
		if err := e.store.AddShape(*g.shape); err == nil {
			if s, ok := e.store.Shape(g.shape.ID); ok {
				e.recordLocked(shapeAddChange(s))
			}
			e.commitLocked()
		}

	case gestureDragging, gestureResizing:
		e.finishTransformLocked(g)
	}
}

// finishTransformLocked commits a drag or resize as one undo step.
func (e *Engine) finishTransformLocked(g gesture) {
	if !g.changed {
		return
	}
	for _, id := range g.targets() {
		if s, ok := e.store.Shape(id); ok {
			e.recordLocked(shapeUpdateChange(id, document.Geometry(s)))
		}
	}
	e.commitLocked()
}

// settleLocked ends an open drag or resize before another edit touches the
// scene, keeping what was moved so far. Drawing previews live outside the
// store and are left alone.
func (e *Engine) settleLocked() {
	g := e.gesture
	if g.kind != gestureDragging && g.kind != gestureResizing {
		return
	}
	e.gesture = gesture{}
	e.finishTransformLocked(g)
}

// Cancel abandons the active gesture, as on focus loss. In-flight drags
// and resizes are rolled back; nothing is committed.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *Engine) cancelLocked() {
	g := e.gesture
	e.gesture = gesture{}
	if (g.kind != gestureDragging && g.kind != gestureResizing) || !g.changed {
		return
	}
	for _, s := range g.originals {
		// a shape deleted since the gesture began stays deleted
		if err := e.store.ReplaceShape(s); err != nil {
			slog.Debug("revert shape", "id", s.ID, "error", err)
		}
	}
}

// Wheel zooms by one step around the pointer.
func (e *Engine) Wheel(ev WheelEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = e.viewport.Wheel(geometry.Point{X: ev.X, Y: ev.Y}, ev.DeltaY)
}

// DoubleClick opens the text editor on a text shape under the pointer.
func (e *Engine) DoubleClick(ev PointerEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings.Tool == ToolHand {
		return false
	}
	p := geometry.ToScene(ev.screen(), e.viewport)
	hit, ok := geometry.HitTestShapes(p, e.store.Shapes())
	if !ok || hit.Type != document.ShapeText {
		return false
	}
	e.cancelLocked()
	e.openTextEditLocked(hit)
	return true
}
