package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
)

func newTestEngine(opts ...Option) *Engine {
	n := 0
	ids := WithIDGenerator(func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	})
	return NewEngine(append([]Option{ids}, opts...)...)
}

func drag(e *Engine, pts ...geometry.Point) {
	e.PointerDown(PointerEvent{X: pts[0].X, Y: pts[0].Y})
	for _, p := range pts[1:] {
		e.PointerMove(PointerEvent{X: p.X, Y: p.Y})
	}
	last := pts[len(pts)-1]
	e.PointerUp(PointerEvent{X: last.X, Y: last.Y})
}

func mustTool(t *testing.T, e *Engine, tool Tool) {
	t.Helper()
	if err := e.SetTool(tool); err != nil {
		t.Fatalf("SetTool(%s) error = %v", tool, err)
	}
}

func TestPenStrokeUndoRedo(t *testing.T) {
	e := newTestEngine()

	drag(e, geometry.Point{}, geometry.Point{X: 10}, geometry.Point{X: 20})

	sc := e.Scene()
	if len(sc.Paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(sc.Paths))
	}
	if diff := cmp.Diff([]float64{0, 0, 10, 0, 20, 0}, sc.Paths[0].Points); diff != "" {
		t.Errorf("stroke points (-want +got):\n%s", diff)
	}

	if !e.KeyDown(KeyEvent{Key: "z", Ctrl: true}) {
		t.Fatal("Ctrl+Z not handled")
	}
	if n := len(e.Scene().Paths); n != 0 {
		t.Errorf("after undo paths = %d, want 0", n)
	}

	e.KeyDown(KeyEvent{Key: "y", Ctrl: true})
	if n := len(e.Scene().Paths); n != 1 {
		t.Errorf("after redo paths = %d, want 1", n)
	}
}

func TestShortStrokeDiscarded(t *testing.T) {
	e := newTestEngine()
	drag(e, geometry.Point{X: 3, Y: 3})

	if n := e.Scene().Len(); n != 0 {
		t.Errorf("single-point stroke kept, scene len = %d", n)
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
}

func TestResizeFromHandle(t *testing.T) {
	e := newTestEngine()
	mustTool(t, e, ToolRectangle)
	drag(e, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 60, Y: 40})

	shapes := e.Scene().Shapes
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	id := shapes[0].ID

	mustTool(t, e, ToolSelect)
	e.SetSelection([]string{id})
	before := e.HistoryLen()

	drag(e, geometry.Point{X: 60, Y: 40}, geometry.Point{X: 65, Y: 45})

	got := e.Scene().Shapes[0]
	want := [4]float64{10, 10, 55, 35}
	if box := [4]float64{got.X, got.Y, got.Width, got.Height}; box != want {
		t.Errorf("resized box = %v, want %v", box, want)
	}
	if e.HistoryLen() != before+1 {
		t.Errorf("resize committed %d snapshots, want 1", e.HistoryLen()-before)
	}
}

func TestImportRejectsMissingShapes(t *testing.T) {
	e := newTestEngine()
	drag(e, geometry.Point{}, geometry.Point{X: 5, Y: 5})
	e.SetSelection(nil)

	before := e.Scene()
	historyLen := e.HistoryLen()

	err := e.ImportJSON([]byte(`{"version":"1.0","paths":[]}`))
	if !errors.Is(err, document.ErrInvalidScene) {
		t.Fatalf("ImportJSON() error = %v, want ErrInvalidScene", err)
	}
	if diff := cmp.Diff(before, e.Scene()); diff != "" {
		t.Errorf("scene changed on failed import (-want +got):\n%s", diff)
	}
	if e.HistoryLen() != historyLen {
		t.Errorf("HistoryLen() = %d, want %d", e.HistoryLen(), historyLen)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	src := newTestEngine()
	src.LoadScene(document.NewSampleScene())
	data, err := src.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	dst := newTestEngine()
	if err := dst.ImportJSON(data); err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if diff := cmp.Diff(src.Scene(), dst.Scene()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	if !dst.CanUndo() {
		t.Error("import did not commit a snapshot")
	}
}

func TestDragCommitsOnce(t *testing.T) {
	e := newTestEngine()
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, X: 0, Y: 0, Width: 20, Height: 20},
	}})
	mustTool(t, e, ToolSelect)

	drag(e, geometry.Point{X: 5, Y: 5}, geometry.Point{X: 10, Y: 5}, geometry.Point{X: 15, Y: 10})

	got := e.Scene().Shapes[0]
	if got.X != 10 || got.Y != 5 {
		t.Errorf("dragged to (%v,%v), want (10,5)", got.X, got.Y)
	}
	if e.HistoryLen() != 2 {
		t.Errorf("HistoryLen() = %d, want 2", e.HistoryLen())
	}
	if diff := cmp.Diff([]string{"r"}, e.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}

	e.Undo()
	if got := e.Scene().Shapes[0]; got.X != 0 || got.Y != 0 {
		t.Errorf("undo left shape at (%v,%v)", got.X, got.Y)
	}
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	e := newTestEngine()
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, Width: 20, Height: 20},
	}})
	mustTool(t, e, ToolSelect)

	drag(e, geometry.Point{X: 5, Y: 5})
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}

	// empty space clears, shift keeps
	e.PointerDown(PointerEvent{X: 100, Y: 100, Shift: true})
	e.PointerUp(PointerEvent{})
	if len(e.Selection()) != 1 {
		t.Error("shift click on empty space cleared the selection")
	}
	e.PointerDown(PointerEvent{X: 100, Y: 100})
	e.PointerUp(PointerEvent{})
	if len(e.Selection()) != 0 {
		t.Error("click on empty space kept the selection")
	}
}

func TestShiftClickExtendsSelection(t *testing.T) {
	e := newTestEngine()
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "a", Type: document.ShapeRectangle, Width: 10, Height: 10},
		{ID: "b", Type: document.ShapeRectangle, X: 50, Width: 10, Height: 10},
	}})
	mustTool(t, e, ToolSelect)

	drag(e, geometry.Point{X: 5, Y: 5})
	e.PointerDown(PointerEvent{X: 55, Y: 5, Shift: true})
	e.PointerUp(PointerEvent{})

	if diff := cmp.Diff([]string{"a", "b"}, e.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

func TestCancelRevertsDrag(t *testing.T) {
	e := newTestEngine()
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, Width: 20, Height: 20},
	}})
	mustTool(t, e, ToolSelect)

	e.PointerDown(PointerEvent{X: 5, Y: 5})
	e.PointerMove(PointerEvent{X: 25, Y: 25})
	if e.State().Gesture != "dragging" {
		t.Fatalf("gesture = %s, want dragging", e.State().Gesture)
	}
	e.Cancel()

	if got := e.Scene().Shapes[0]; got.X != 0 || got.Y != 0 {
		t.Errorf("cancel left shape at (%v,%v)", got.X, got.Y)
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
	if e.State().Gesture != "idle" {
		t.Errorf("gesture = %s, want idle", e.State().Gesture)
	}
	if len(e.Selection()) != 1 {
		t.Error("cancel dropped the selection")
	}
}

func TestShapeTools(t *testing.T) {
	tests := []struct {
		tool     Tool
		to       geometry.Point
		want     document.ShapeType
		wantFill bool
	}{
		{ToolRectangle, geometry.Point{X: 30, Y: 20}, document.ShapeRectangle, true},
		{ToolCircle, geometry.Point{X: 30, Y: 30}, document.ShapeCircle, true},
		{ToolArrow, geometry.Point{X: 30, Y: 0}, document.ShapeArrow, false},
		{ToolLine, geometry.Point{X: 0, Y: 30}, document.ShapeLine, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			e := newTestEngine()
			e.SetFillColor("#ff0000")
			mustTool(t, e, tt.tool)

			e.PointerDown(PointerEvent{})
			e.PointerMove(PointerEvent{X: tt.to.X, Y: tt.to.Y})
			if e.Frame() == nil || e.State().Gesture != "drawingShape" {
				t.Fatalf("gesture = %s, want drawingShape", e.State().Gesture)
			}
			if e.Scene().Len() != 0 {
				t.Fatal("shape committed before pointer up")
			}
			e.PointerUp(PointerEvent{X: tt.to.X, Y: tt.to.Y})

			shapes := e.Scene().Shapes
			if len(shapes) != 1 {
				t.Fatalf("shapes = %d, want 1", len(shapes))
			}
			s := shapes[0]
			if s.Type != tt.want {
				t.Errorf("type = %s, want %s", s.Type, tt.want)
			}
			if (s.Fill == "#ff0000") != tt.wantFill {
				t.Errorf("fill = %q", s.Fill)
			}
			if s.Type.IsSegment() {
				if diff := cmp.Diff([]float64{0, 0, tt.to.X, tt.to.Y}, s.Points); diff != "" {
					t.Errorf("endpoints (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestZeroSizeShapeDiscarded(t *testing.T) {
	e := newTestEngine()
	mustTool(t, e, ToolRectangle)
	drag(e, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 10, Y: 10})

	if e.Scene().Len() != 0 || e.HistoryLen() != 1 {
		t.Errorf("zero-size shape kept: len=%d history=%d", e.Scene().Len(), e.HistoryLen())
	}
}

func TestHandPans(t *testing.T) {
	e := newTestEngine()
	mustTool(t, e, ToolHand)
	drag(e, geometry.Point{X: 100, Y: 100}, geometry.Point{X: 110, Y: 95}, geometry.Point{X: 130, Y: 90})

	want := geometry.Point{X: 30, Y: -10}
	if got := e.Viewport().Position; got != want {
		t.Errorf("position = %v, want %v", got, want)
	}
	if e.HistoryLen() != 1 {
		t.Error("panning committed history")
	}
}

func TestZoomBounds(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 30; i++ {
		e.ZoomIn()
	}
	if s := e.Viewport().Scale; s != geometry.MaxScale {
		t.Errorf("scale after zooming in = %v, want %v", s, geometry.MaxScale)
	}
	for i := 0; i < 60; i++ {
		e.Wheel(WheelEvent{X: 50, Y: 50, DeltaY: 1})
	}
	if s := e.Viewport().Scale; s != geometry.MinScale {
		t.Errorf("scale after wheeling out = %v, want %v", s, geometry.MinScale)
	}

	e.KeyDown(KeyEvent{Key: "0", Meta: true})
	if diff := cmp.Diff(geometry.DefaultViewport(), e.Viewport()); diff != "" {
		t.Errorf("reset (-want +got):\n%s", diff)
	}
}

func TestFitToScreen(t *testing.T) {
	e := newTestEngine()
	e.SetViewport(geometry.Viewport{Position: geometry.Point{X: 5, Y: 5}, Scale: 3})
	e.FitToScreen()
	if diff := cmp.Diff(geometry.DefaultViewport(), e.Viewport()); diff != "" {
		t.Errorf("empty scene fit (-want +got):\n%s", diff)
	}

	e.SetScreenSize(240, 240)
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "r", Type: document.ShapeRectangle, X: 100, Y: 100, Width: 100, Height: 100},
	}})
	e.FitToScreen()

	vp := e.Viewport()
	tl := geometry.ToScreen(geometry.Point{X: 100, Y: 100}, vp)
	br := geometry.ToScreen(geometry.Point{X: 200, Y: 200}, vp)
	if tl.X < 0 || tl.Y < 0 || br.X > 240 || br.Y > 240 {
		t.Errorf("fit viewport %+v puts box at %v..%v", vp, tl, br)
	}
}

func TestToolKeys(t *testing.T) {
	tests := []struct {
		key  string
		want Tool
	}{
		{"v", ToolSelect}, {"1", ToolSelect},
		{"h", ToolHand}, {"2", ToolHand},
		{"p", ToolPen}, {"3", ToolPen},
		{"l", ToolLine}, {"4", ToolLine},
		{"R", ToolRectangle}, {"5", ToolRectangle},
		{"c", ToolCircle}, {"6", ToolCircle},
		{"a", ToolArrow}, {"7", ToolArrow},
		{"t", ToolText}, {"8", ToolText},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e := newTestEngine()
			mustTool(t, e, ToolHand)
			if tt.want == ToolHand {
				mustTool(t, e, ToolPen)
			}
			if !e.KeyDown(KeyEvent{Key: tt.key}) {
				t.Fatal("key not handled")
			}
			if got := e.Settings().Tool; got != tt.want {
				t.Errorf("tool = %s, want %s", got, tt.want)
			}
		})
	}

	if e := newTestEngine(); e.KeyDown(KeyEvent{Key: "q"}) {
		t.Error("unbound key reported as handled")
	}
}

func TestDeleteAsksConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		confirm bool
		want    int
	}{
		{"confirmed", true, 0},
		{"declined", false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked := 0
			e := newTestEngine(WithConfirm(func(n int) bool {
				asked = n
				return tt.confirm
			}))
			e.LoadScene(document.Scene{
				Paths: []document.Path{{ID: "p", Points: []float64{0, 0, 1, 1}}},
				Shapes: []document.Shape{
					{ID: "a", Type: document.ShapeRectangle, Width: 10, Height: 10},
				},
			})
			e.SetSelection([]string{"p", "a"})

			if !e.KeyDown(KeyEvent{Key: "Delete"}) {
				t.Fatal("Delete not handled")
			}
			if asked != 2 {
				t.Errorf("confirm asked for %d elements, want 2", asked)
			}
			if got := e.Scene().Len(); got != tt.want {
				t.Errorf("scene len = %d, want %d", got, tt.want)
			}
		})
	}

	e := newTestEngine(WithConfirm(func(int) bool {
		t.Error("confirm called with empty selection")
		return true
	}))
	if e.KeyDown(KeyEvent{Key: "Backspace"}) {
		t.Error("Backspace with no selection reported as handled")
	}
}

func TestEscapeClearsSelection(t *testing.T) {
	e := newTestEngine()
	e.LoadScene(document.Scene{Shapes: []document.Shape{
		{ID: "a", Type: document.ShapeRectangle, Width: 10, Height: 10},
	}})
	e.SetSelection([]string{"a", "ghost"})
	if diff := cmp.Diff([]string{"a"}, e.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	e.KeyDown(KeyEvent{Key: "Escape"})
	if len(e.Selection()) != 0 {
		t.Error("Escape kept the selection")
	}
}

func TestTextTool(t *testing.T) {
	e := newTestEngine()
	mustTool(t, e, ToolText)

	e.PointerDown(PointerEvent{X: 5, Y: 7})
	e.PointerUp(PointerEvent{X: 5, Y: 7})
	if _, ok := e.TextEdit(); !ok {
		t.Fatal("text tool did not open an editor")
	}
	if e.KeyDown(KeyEvent{Key: "v"}) {
		t.Error("tool key handled while editing text")
	}
	if err := e.CommitText("hello"); err != nil {
		t.Fatalf("CommitText() error = %v", err)
	}

	shapes := e.Scene().Shapes
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	s := shapes[0]
	if s.Type != document.ShapeText || s.Text != "hello" || s.X != 5 || s.Y != 7 {
		t.Errorf("text shape = %+v", s)
	}
	if s.Width != 5*document.CharWidth || s.Height != document.DefaultFontSize {
		t.Errorf("text box = %vx%v", s.Width, s.Height)
	}

	// editing the existing caption updates it in place
	if !e.DoubleClick(PointerEvent{X: 8, Y: 10}) {
		t.Fatal("double click did not open the caption")
	}
	if err := e.CommitText("hi"); err != nil {
		t.Fatalf("CommitText() error = %v", err)
	}
	s = e.Scene().Shapes[0]
	if s.Text != "hi" || s.Width != 2*document.CharWidth {
		t.Errorf("edited caption = %q width %v", s.Text, s.Width)
	}
	if e.HistoryLen() != 3 {
		t.Errorf("HistoryLen() = %d, want 3", e.HistoryLen())
	}

	e.PointerDown(PointerEvent{X: 200, Y: 200})
	if err := e.CommitText(""); err != nil {
		t.Fatalf("CommitText(\"\") error = %v", err)
	}
	if e.Scene().Len() != 1 {
		t.Error("empty text created a shape")
	}
}

func TestThemeSwapsDefaultStroke(t *testing.T) {
	e := newTestEngine()
	e.SetTheme("dark")
	if got := e.Settings().StrokeColor; got != DarkStrokeColor {
		t.Errorf("dark stroke = %s, want %s", got, DarkStrokeColor)
	}
	e.SetStrokeColor("#ff0000")
	e.SetTheme("light")
	if got := e.Settings().StrokeColor; got != "#ff0000" {
		t.Errorf("custom stroke replaced by %s", got)
	}
}

func TestSettingsValidation(t *testing.T) {
	e := newTestEngine()
	if err := e.SetTool("lasso"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("SetTool(lasso) error = %v, want ErrUnknownTool", err)
	}
	e.SetOpacity(3)
	if got := e.Settings().Opacity; got != 1 {
		t.Errorf("opacity = %v, want 1", got)
	}
	e.SetStrokeWidth(-1)
	if got := e.Settings().StrokeWidth; got != DefaultStrokeWidth {
		t.Errorf("stroke width = %v, want %v", got, DefaultStrokeWidth)
	}
}

func TestClearCanvas(t *testing.T) {
	e := newTestEngine()
	e.ClearCanvas()
	if e.HistoryLen() != 1 {
		t.Error("clearing an empty canvas committed history")
	}

	drag(e, geometry.Point{}, geometry.Point{X: 4, Y: 4})
	e.ClearCanvas()
	if e.Scene().Len() != 0 || e.HistoryLen() != 3 {
		t.Errorf("clear: len=%d history=%d", e.Scene().Len(), e.HistoryLen())
	}
	e.Undo()
	if e.Scene().Len() != 1 {
		t.Error("undo did not restore the cleared stroke")
	}
}

func TestFrameShowsPreview(t *testing.T) {
	e := newTestEngine()
	e.PointerDown(PointerEvent{})
	e.PointerMove(PointerEvent{X: 10, Y: 10})

	preview := 0
	for _, c := range e.Frame() {
		if c.Layer == "preview" {
			preview++
		}
	}
	if preview != 1 {
		t.Errorf("preview commands = %d, want 1", preview)
	}
	e.PointerUp(PointerEvent{})
	for _, c := range e.Frame() {
		if c.Layer == "preview" {
			t.Fatal("preview drawn after pointer up")
		}
	}
}

func TestEditDuringDragSettlesGesture(t *testing.T) {
	rect := document.Shape{ID: "r", Type: document.ShapeRectangle, X: 10, Y: 10, Width: 50, Height: 30}
	remote := document.Shape{ID: "remote", Type: document.ShapeRectangle, X: 200, Y: 200, Width: 10, Height: 10}

	tests := []struct {
		name    string
		edit    func(t *testing.T, e *Engine)
		wantIDs []string
	}{
		{
			name: "delete then press elsewhere",
			edit: func(t *testing.T, e *Engine) {
				e.DeleteSelected()
				e.PointerDown(PointerEvent{X: 500, Y: 500})
			},
		},
		{
			name: "remote add then cancel",
			edit: func(t *testing.T, e *Engine) {
				if err := e.AddShape(remote); err != nil {
					t.Fatalf("AddShape() error = %v", err)
				}
				e.Cancel()
			},
			wantIDs: []string{"r", "remote"},
		},
		{
			name: "remote update then cancel",
			edit: func(t *testing.T, e *Engine) {
				if err := e.UpdateShape("r", document.ShapePatch{Stroke: document.String("#ff0000")}); err != nil {
					t.Fatalf("UpdateShape() error = %v", err)
				}
				e.Cancel()
			},
			wantIDs: []string{"r"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			e.LoadScene(document.Scene{Shapes: []document.Shape{rect}})
			mustTool(t, e, ToolSelect)
			e.SetSelection([]string{"r"})

			e.PointerDown(PointerEvent{X: 20, Y: 20})
			e.PointerMove(PointerEvent{X: 30, Y: 30})
			tt.edit(t, e)

			var ids []string
			for _, s := range e.Scene().Shapes {
				ids = append(ids, s.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("shapes (-want +got):\n%s", diff)
			}
			if e.HistoryLen() != 3 {
				t.Errorf("HistoryLen() = %d, want 3", e.HistoryLen())
			}
			if s, ok := findShape(e.Scene(), "r"); ok && (s.X != 20 || s.Y != 20) {
				t.Errorf("dragged shape at (%v,%v), want (20,20)", s.X, s.Y)
			}

			// the drag is its own undo step beneath the edit
			e.Undo()
			s, ok := findShape(e.Scene(), "r")
			if !ok || s.X != 20 || s.Y != 20 {
				t.Errorf("after undo shape = %+v, %v", s, ok)
			}
		})
	}
}

func findShape(sc document.Scene, id string) (document.Shape, bool) {
	for _, s := range sc.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return document.Shape{}, false
}

func TestResizedTextSurvivesRoundTrip(t *testing.T) {
	e := newTestEngine()
	mustTool(t, e, ToolText)
	e.PointerDown(PointerEvent{X: 10, Y: 20})
	if err := e.CommitText("hello"); err != nil {
		t.Fatalf("CommitText() error = %v", err)
	}

	mustTool(t, e, ToolSelect)
	drag(e, geometry.Point{X: 20, Y: 25})
	if diff := cmp.Diff([]string{"shape_1"}, e.Selection()); diff != "" {
		t.Fatalf("selection (-want +got):\n%s", diff)
	}
	// south-east handle sits on the bottom-right corner
	drag(e, geometry.Point{X: 50, Y: 36}, geometry.Point{X: 70, Y: 50})

	before := e.Scene()
	s := before.Shapes[0]
	if s.FontSize != 30 || s.Width != 5*document.CharWidth || s.Height != 30 {
		t.Errorf("resized text = fs %v box %vx%v, want fs 30 box 40x30", s.FontSize, s.Width, s.Height)
	}

	data, err := e.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if err := e.ImportJSON(data); err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if diff := cmp.Diff(before, e.Scene()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestOnCommitReportsLocalEdits(t *testing.T) {
	var kinds []ChangeKind
	var last []Change
	var e *Engine
	e = newTestEngine(WithOnCommit(func(changes []Change) {
		// the lock is released before the callback runs
		_ = e.Scene()
		last = changes
		for _, c := range changes {
			kinds = append(kinds, c.Type)
		}
	}))

	drag(e, geometry.Point{}, geometry.Point{X: 10}, geometry.Point{X: 20})
	if len(last) != 1 || last[0].Path == nil || last[0].Path.ID != "path_1" {
		t.Fatalf("stroke reported %+v", last)
	}

	mustTool(t, e, ToolRectangle)
	drag(e, geometry.Point{X: 100, Y: 100}, geometry.Point{X: 140, Y: 130})
	if len(last) != 1 || last[0].Shape == nil || last[0].Shape.ID != "shape_2" {
		t.Fatalf("rectangle reported %+v", last)
	}

	mustTool(t, e, ToolSelect)
	drag(e, geometry.Point{X: 110, Y: 110}, geometry.Point{X: 120, Y: 115})
	if len(last) != 1 || last[0].ObjectID != "shape_2" || last[0].Patch == nil {
		t.Fatalf("drag reported %+v", last)
	}
	if p := last[0].Patch; p.X == nil || *p.X != 110 || p.Y == nil || *p.Y != 105 {
		t.Errorf("drag patch = %+v", p)
	}

	e.DeleteSelected()
	if diff := cmp.Diff([]string{"shape_2"}, last[0].IDs); diff != "" {
		t.Errorf("deleted ids (-want +got):\n%s", diff)
	}

	e.Undo()
	if last[0].Scene == nil || last[0].Scene.Len() != 2 {
		t.Errorf("undo reported %+v", last)
	}

	reported := len(kinds)
	if err := e.AddShape(document.Shape{ID: "remote", Type: document.ShapeRectangle, Width: 5, Height: 5}); err != nil {
		t.Fatalf("AddShape() error = %v", err)
	}
	e.DeleteElements([]string{"remote"})
	if len(kinds) != reported {
		t.Errorf("replay reported %v", kinds[reported:])
	}

	want := []ChangeKind{
		ChangePathAdd, ChangeShapeAdd, ChangeShapeUpdate,
		ChangeElementsDelete, ChangeSceneReplace,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
}
