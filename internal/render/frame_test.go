package render

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
	"github.com/google/go-cmp/cmp"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
)

func byLayer(cmds []DrawCommand, layer Layer) []DrawCommand {
	var out []DrawCommand
	for _, c := range cmds {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

func pt(pc PathCommand, i int) geometry.Point {
	return geometry.Point{X: toFloat64(pc[i]), Y: toFloat64(pc[i+1])}
}

func TestFrameEnvelope(t *testing.T) {
	vp := geometry.Viewport{Position: geometry.Point{X: 10, Y: 20}, Scale: 2}
	cmds := Frame(Input{Scene: document.NewEmptyScene(), Viewport: vp})

	if len(cmds) != 3 {
		t.Fatalf("empty frame has %d commands, want 3", len(cmds))
	}
	if cmds[0].Op != OpSave || cmds[1].Op != OpTransform || cmds[2].Op != OpRestore {
		t.Errorf("ops = %v %v %v", cmds[0].Op, cmds[1].Op, cmds[2].Op)
	}
	if diff := cmp.Diff([]float64{2, 0, 0, 2, 10, 20}, cmds[1].Transform); diff != "" {
		t.Errorf("viewport transform (-want +got):\n%s", diff)
	}
}

func TestFrameGrid(t *testing.T) {
	tests := []struct {
		name  string
		theme Theme
		color string
		alpha float64
	}{
		{"light", ThemeLight, "#d1d5db", 0.6},
		{"dark", ThemeDark, "#374151", 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := Frame(Input{
				Viewport: geometry.DefaultViewport(),
				Width:    100, Height: 60,
				ShowGrid: true,
				Theme:    tt.theme,
			})
			grid := byLayer(cmds, LayerGrid)
			if len(grid) != 1 {
				t.Fatalf("grid commands = %d, want 1", len(grid))
			}
			g := grid[0]
			if g.Stroke != tt.color || g.Opacity != tt.alpha || g.StrokeWidth != GridLineWidth {
				t.Errorf("grid style = %s/%v/%v", g.Stroke, g.Opacity, g.StrokeWidth)
			}
			// x: 0..120 step 20 (7 lines), y: 0..80 (5 lines), two segments each
			if len(g.Path) != 2*(7+5) {
				t.Errorf("grid path segments = %d, want %d", len(g.Path), 2*(7+5))
			}
		})
	}

	if grid := byLayer(Frame(Input{Viewport: geometry.DefaultViewport(), Width: 100, Height: 60}), LayerGrid); len(grid) != 0 {
		t.Error("grid drawn while hidden")
	}
}

func TestFramePaths(t *testing.T) {
	sc := document.Scene{Paths: []document.Path{
		{ID: "dot", Points: []float64{1, 1}, Stroke: "#000000", StrokeWidth: 2},
		{ID: "line", Points: []float64{0, 0, 10, 0, 20, 0}, Stroke: "#ff0000", StrokeWidth: 2},
	}}
	elems := byLayer(Frame(Input{Scene: sc, Viewport: geometry.DefaultViewport()}), LayerElement)
	if len(elems) != 1 {
		t.Fatalf("element commands = %d, want 1", len(elems))
	}
	got := elems[0]
	if got.ObjectID != "line" || got.Fill != "#ff0000" || got.Stroke != "" || got.Opacity != 1 {
		t.Errorf("path command = %+v", got)
	}
	// 7 outline points plus close
	if len(got.Path) != 8 || got.Path[0][0] != "M" || got.Path[7][0] != "Z" {
		t.Errorf("outline path = %v", got.Path)
	}
}

func TestFrameShapes(t *testing.T) {
	sc := document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, X: 0, Y: 0, Width: 10, Height: 10, Stroke: "#000000", StrokeWidth: 1, Fill: document.Transparent},
		{ID: "c", Type: document.ShapeCircle, X: 0, Y: 0, Width: 40, Height: 40, Stroke: "#000000", Fill: "#00ff00", Opacity: 0.5},
		{ID: "a", Type: document.ShapeArrow, Points: []float64{0, 0, 100, 0}, Stroke: "#000000"},
		{ID: "t", Type: document.ShapeText, X: 5, Y: 7, Text: "hey", FontSize: 20, Stroke: "#123456"},
	}}
	elems := byLayer(Frame(Input{Scene: sc, Viewport: geometry.DefaultViewport()}), LayerElement)
	if len(elems) != 4 {
		t.Fatalf("element commands = %d, want 4", len(elems))
	}

	if elems[0].Fill != "" {
		t.Errorf("transparent fill painted as %q", elems[0].Fill)
	}

	circle := elems[1]
	if circle.Fill != "#00ff00" || circle.Opacity != 0.5 {
		t.Errorf("circle style = %s/%v", circle.Fill, circle.Opacity)
	}
	// radius |w+h|/4 = 20, first point is the rightmost one
	if start := pt(circle.Path[0], 1); start != (geometry.Point{X: 40, Y: 20}) {
		t.Errorf("circle starts at %v, want (40,20)", start)
	}

	arrow := elems[2]
	if len(arrow.Path) != 5 {
		t.Fatalf("arrow path = %v", arrow.Path)
	}
	left, right := pt(arrow.Path[2], 1), pt(arrow.Path[4], 1)
	wantX := 100 - 10*math.Cos(math.Pi/6)
	if math.Abs(left.X-wantX) > 1e-9 || math.Abs(left.Y-5) > 1e-9 ||
		math.Abs(right.X-wantX) > 1e-9 || math.Abs(right.Y+5) > 1e-9 {
		t.Errorf("arrow barbs = %v %v", left, right)
	}

	text := elems[3]
	if text.Op != OpText || text.Y != 27 || text.X != 5 || text.Fill != "#123456" || text.Font != DefaultFont {
		t.Errorf("text command = %+v", text)
	}
}

func TestFrameRotation(t *testing.T) {
	sc := document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, Width: 10, Height: 10, Rotation: 90},
	}}
	elems := byLayer(Frame(Input{Scene: sc, Viewport: geometry.DefaultViewport()}), LayerElement)
	m := matrixFrom(elems[0].Transform)
	// the center is fixed, the corner rotates around it
	if c := m.Apply(geometry.Point{X: 5, Y: 5}); math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Errorf("center moved to %v", c)
	}
	if c := m.Apply(geometry.Point{}); math.Abs(c.X-10) > 1e-9 || math.Abs(c.Y) > 1e-9 {
		t.Errorf("corner rotated to %v, want (10,0)", c)
	}
}

func TestFrameSelection(t *testing.T) {
	sc := document.Scene{Shapes: []document.Shape{
		{ID: "a", Type: document.ShapeRectangle, X: 10, Y: 10, Width: 50, Height: 30},
		{ID: "b", Type: document.ShapeCircle, X: 100, Y: 100, Width: 20, Height: 20},
	}}
	vp := geometry.Viewport{Scale: 2}
	cmds := Frame(Input{Scene: sc, Selection: []string{"a"}, Viewport: vp})

	sel := byLayer(cmds, LayerSelection)
	if len(sel) != 1 || sel[0].ObjectID != "a" {
		t.Fatalf("selection commands = %+v", sel)
	}
	if diff := cmp.Diff([]float64{2.5, 2.5}, sel[0].Dash); diff != "" {
		t.Errorf("dash (-want +got):\n%s", diff)
	}
	if sel[0].StrokeWidth != 1 || sel[0].Stroke != SelectionColor {
		t.Errorf("selection stroke = %s/%v", sel[0].Stroke, sel[0].StrokeWidth)
	}
	if tl := pt(sel[0].Path[0], 1); tl != (geometry.Point{X: 7.5, Y: 7.5}) {
		t.Errorf("selection box starts at %v, want (7.5,7.5)", tl)
	}

	handles := byLayer(cmds, LayerHandle)
	if len(handles) != 8 {
		t.Fatalf("handles = %d, want 8", len(handles))
	}
	for _, h := range handles {
		if h.Fill != SelectionColor || h.Stroke != HandleStroke || h.StrokeWidth != 0.5 {
			t.Errorf("handle style = %+v", h)
		}
	}

	// decorations draw after every element
	lastElement, firstSel := -1, -1
	for i, c := range cmds {
		if c.Layer == LayerElement {
			lastElement = i
		}
		if c.Layer == LayerSelection && firstSel < 0 {
			firstSel = i
		}
	}
	if firstSel < lastElement {
		t.Error("selection drawn beneath elements")
	}
}

func TestFramePreviewAndPurity(t *testing.T) {
	sc := document.NewSampleScene()
	in := Input{
		Scene:     sc.Clone(),
		Selection: []string{sc.Shapes[0].ID},
		Viewport:  geometry.Viewport{Position: geometry.Point{X: 3, Y: 4}, Scale: 1.5},
		Width:     300, Height: 200,
		ShowGrid: true,
		Preview: Preview{
			Shape: &document.Shape{Type: document.ShapeRectangle, Width: 5, Height: 5, Stroke: "#000000"},
		},
	}
	first := Frame(in)
	second := Frame(in)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Frame() not idempotent:\n%s", diff)
	}
	if diff := cmp.Diff(sc, in.Scene); diff != "" {
		t.Errorf("Frame() mutated its input:\n%s", diff)
	}
	if len(byLayer(first, LayerPreview)) != 1 {
		t.Error("preview shape missing")
	}
	if first[len(first)-1].Op != OpRestore {
		t.Error("frame does not end with restore")
	}
}

func TestRasterPaintsFill(t *testing.T) {
	r, err := NewRaster()
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	dc := gg.NewContext(40, 40)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	sc := document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, X: 0, Y: 0, Width: 20, Height: 20, Fill: "#ff0000"},
	}}
	cmds := Frame(Input{Scene: sc, Viewport: geometry.DefaultViewport()})

	// 2x device ratio: the 20-unit square covers the whole 40px canvas
	if err := r.Draw(dc, geometry.Scale(2, 2), cmds); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	red, g, b, _ := dc.Image().At(30, 30).RGBA()
	if red < 0xe000 || g > 0x2000 || b > 0x2000 {
		t.Errorf("pixel (30,30) = %x/%x/%x, want red", red, g, b)
	}
}
