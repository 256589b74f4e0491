// Package render turns a scene into an ordered list of draw commands. Frame
// is a pure function of its input and never touches engine state.
package render

import (
	"math"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
)

const (
	GridSize         = 20.0
	GridLineWidth    = 0.5
	SelectionColor   = "#007acc"
	HandleStroke     = "#ffffff"
	SelectionPadding = 5.0
	DefaultFont      = "Arial"

	ArrowHeadLength = 10.0
	ArrowHeadAngle  = math.Pi / 6
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// GridStyle returns the grid colour and opacity for a theme.
func GridStyle(t Theme) (string, float64) {
	if t == ThemeDark {
		return "#374151", 0.4
	}
	return "#d1d5db", 0.6
}

// Preview is the element being drawn by an active gesture.
type Preview struct {
	Path  *document.Path
	Shape *document.Shape
}

// Input is everything a frame depends on.
type Input struct {
	Scene     document.Scene
	Selection []string
	Viewport  geometry.Viewport
	Width     float64 // screen size in pixels
	Height    float64
	ShowGrid  bool
	Theme     Theme
	Preview   Preview
}

// Frame builds the draw commands for one frame in painter's order.
func Frame(in Input) []DrawCommand {
	vp := in.Viewport.Normalize()

	cmds := []DrawCommand{
		{Op: OpSave},
		{Op: OpTransform, Transform: vp.Matrix().ToSlice()},
	}

	if in.ShowGrid && in.Width > 0 && in.Height > 0 {
		if grid, ok := gridCommand(vp, in.Width, in.Height, in.Theme); ok {
			cmds = append(cmds, grid)
		}
	}

	for _, p := range in.Scene.Paths {
		if cmd, ok := pathCommand(p, LayerElement); ok {
			cmds = append(cmds, cmd)
		}
	}
	for _, s := range in.Scene.Shapes {
		cmds = append(cmds, shapeCommands(s, LayerElement)...)
	}

	if len(in.Selection) > 0 {
		selected := make(map[string]struct{}, len(in.Selection))
		for _, id := range in.Selection {
			selected[id] = struct{}{}
		}
		for _, s := range in.Scene.Shapes {
			if _, ok := selected[s.ID]; ok {
				cmds = append(cmds, selectionCommands(s, vp)...)
			}
		}
	}

	if p := in.Preview.Path; p != nil {
		if cmd, ok := pathCommand(*p, LayerPreview); ok {
			cmds = append(cmds, cmd)
		}
	}
	if s := in.Preview.Shape; s != nil {
		cmds = append(cmds, shapeCommands(*s, LayerPreview)...)
	}

	return append(cmds, DrawCommand{Op: OpRestore})
}

// gridCommand covers the visible scene area with grid lines, snapped to
// multiples of GridSize and overscanning by one cell.
func gridCommand(vp geometry.Viewport, width, height float64, theme Theme) (DrawCommand, bool) {
	area := vp.VisibleArea(width, height)
	startX := math.Floor(area.X/GridSize) * GridSize
	startY := math.Floor(area.Y/GridSize) * GridSize
	endX := startX + area.Width + GridSize
	endY := startY + area.Height + GridSize

	var path []PathCommand
	for x := startX; x <= endX; x += GridSize {
		path = append(path, PathCommand{"M", x, startY}, PathCommand{"L", x, endY})
	}
	for y := startY; y <= endY; y += GridSize {
		path = append(path, PathCommand{"M", startX, y}, PathCommand{"L", endX, y})
	}
	if len(path) == 0 {
		return DrawCommand{}, false
	}

	color, alpha := GridStyle(theme)
	return DrawCommand{
		Op:          OpPath,
		Layer:       LayerGrid,
		Path:        path,
		Stroke:      color,
		StrokeWidth: GridLineWidth,
		Opacity:     alpha,
	}, true
}

// pathCommand fills the tapered outline of a freehand stroke.
func pathCommand(p document.Path, layer Layer) (DrawCommand, bool) {
	if len(p.Points) < 4 {
		return DrawCommand{}, false
	}
	outline := geometry.StrokeOutline(
		geometry.FlatToPoints(p.Points),
		p.StrokeWidth*geometry.StrokeSizeFactor,
		geometry.StrokeThinning,
	)
	if len(outline) == 0 {
		return DrawCommand{}, false
	}
	return DrawCommand{
		Op:       OpPath,
		Layer:    layer,
		ObjectID: p.ID,
		Path:     polygonPath(outline),
		Fill:     p.Stroke,
		Opacity:  document.EffectiveOpacity(p.Opacity),
	}, true
}

func shapeCommands(s document.Shape, layer Layer) []DrawCommand {
	base := DrawCommand{
		Op:          OpPath,
		Layer:       layer,
		ObjectID:    s.ID,
		Stroke:      s.Stroke,
		StrokeWidth: s.StrokeWidth,
		Opacity:     document.EffectiveOpacity(s.Opacity),
	}
	box := geometry.ShapeRect(s)
	if s.Rotation != 0 {
		base.Transform = geometry.RotateAround(s.Rotation, box.Center().X, box.Center().Y).ToSlice()
	}

	switch s.Type {
	case document.ShapeRectangle:
		base.Path = rectPath(box)
		if document.HasFill(s.Fill) {
			base.Fill = s.Fill
		}
	case document.ShapeCircle:
		radius := math.Abs(s.Width+s.Height) / 4
		base.Path = circlePath(box.Center(), radius)
		if document.HasFill(s.Fill) {
			base.Fill = s.Fill
		}
	case document.ShapeLine:
		base.Path = []PathCommand{
			{"M", box.X, box.Y},
			{"L", box.X + box.Width, box.Y + box.Height},
		}
	case document.ShapeArrow:
		from := geometry.Point{X: box.X, Y: box.Y}
		tip := geometry.Point{X: box.X + box.Width, Y: box.Y + box.Height}
		left, right := ArrowHead(from, tip)
		base.Path = []PathCommand{
			moveTo(from), lineTo(tip),
			moveTo(left), lineTo(tip), lineTo(right),
		}
	case document.ShapeText:
		fill := s.Fill
		if !document.HasFill(fill) {
			fill = s.Stroke
		}
		return []DrawCommand{{
			Op:        OpText,
			Layer:     layer,
			ObjectID:  s.ID,
			Transform: base.Transform,
			Text:      s.Text,
			X:         s.X,
			Y:         s.Y + s.EffectiveFontSize(),
			FontSize:  s.EffectiveFontSize(),
			Font:      DefaultFont,
			Fill:      fill,
			Opacity:   base.Opacity,
		}}
	default:
		return nil
	}
	return []DrawCommand{base}
}

// selectionCommands draws the dashed selection box and the resize handles.
// Sizes are divided by the scale so they stay constant on screen.
func selectionCommands(s document.Shape, vp geometry.Viewport) []DrawCommand {
	inv := 1 / vp.Scale
	box := geometry.ShapeRect(s).Inset(SelectionPadding * inv)

	cmds := []DrawCommand{{
		Op:          OpPath,
		Layer:       LayerSelection,
		ObjectID:    s.ID,
		Path:        rectPath(box),
		Stroke:      SelectionColor,
		StrokeWidth: 2 * inv,
		Dash:        []float64{5 * inv, 5 * inv},
		Opacity:     1,
	}}
	for _, h := range geometry.ResizeHandles(s, vp) {
		cmds = append(cmds, DrawCommand{
			Op:          OpPath,
			Layer:       LayerHandle,
			ObjectID:    s.ID,
			Path:        rectPath(h.Rect),
			Fill:        SelectionColor,
			Stroke:      HandleStroke,
			StrokeWidth: inv,
			Opacity:     1,
		})
	}
	return cmds
}
