package scene

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inkboard/inkboard/internal/document"
)

func rect(id string, x, y, w, h float64) document.Shape {
	return document.Shape{ID: id, Type: document.ShapeRectangle, X: x, Y: y, Width: w, Height: h, Stroke: "#000000", StrokeWidth: 2}
}

func stroke(id string, coords ...float64) document.Path {
	return document.Path{ID: id, Points: coords, Stroke: "#000000", StrokeWidth: 2}
}

func TestAddCountsAndUniqueness(t *testing.T) {
	s := NewStore()
	calls := []struct {
		add     func() error
		wantErr error
	}{
		{func() error { return s.AddPath(stroke("p1", 0, 0, 1, 1)) }, nil},
		{func() error { return s.AddShape(rect("s1", 0, 0, 5, 5)) }, nil},
		{func() error { return s.AddShape(rect("p1", 0, 0, 5, 5)) }, ErrDuplicateID},
		{func() error { return s.AddPath(stroke("s1", 0, 0, 1, 1)) }, ErrDuplicateID},
		{func() error { return s.AddPath(stroke("p2", 0, 0)) }, ErrDegenerate},
		{func() error { return s.AddPath(stroke("p3", 0, 0, 1)) }, ErrInvalid},
		{func() error { return s.AddShape(document.Shape{ID: "x", Type: "blob"}) }, ErrInvalid},
		{func() error { return s.AddShape(rect("s2", 1, 1, 1, 1)) }, nil},
	}

	accepted := 0
	for i, c := range calls {
		err := c.add()
		if !errors.Is(err, c.wantErr) {
			t.Fatalf("call %d error = %v, want %v", i, err, c.wantErr)
		}
		if err == nil {
			accepted++
		}
	}

	if s.Len() != accepted {
		t.Errorf("Len() = %d, want %d", s.Len(), accepted)
	}
	seen := map[string]bool{}
	snap := s.Snapshot()
	for _, p := range snap.Paths {
		seen[p.ID] = true
	}
	for _, sh := range snap.Shapes {
		if seen[sh.ID] {
			t.Errorf("id %q appears twice", sh.ID)
		}
		seen[sh.ID] = true
	}
}

func TestUpdateShape(t *testing.T) {
	s := NewStore()
	if err := s.AddShape(rect("a", 0, 0, 10, 10)); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	err := s.UpdateShape("missing", document.ShapePatch{X: document.Float(5)})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateShape(missing) error = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("unknown id changed the scene:\n%s", diff)
	}

	if err := s.UpdateShape("a", document.ShapePatch{X: document.Float(5), Fill: document.String("#ff0000")}); err != nil {
		t.Fatalf("UpdateShape() error = %v", err)
	}
	got, _ := s.Shape("a")
	if got.X != 5 || got.Fill != "#ff0000" || got.Width != 10 {
		t.Errorf("shape after update = %+v", got)
	}
}

func TestSelection(t *testing.T) {
	s := NewStore()
	_ = s.AddShape(rect("a", 0, 0, 10, 10))
	_ = s.AddShape(rect("b", 0, 0, 10, 10))
	_ = s.AddPath(stroke("p", 0, 0, 1, 1))

	s.SetSelection([]string{"a", "ghost", "p", "a"})
	if diff := cmp.Diff([]string{"a", "p"}, s.Selection()); diff != "" {
		t.Errorf("Selection() mismatch (-want +got):\n%s", diff)
	}

	s.AddToSelection("b")
	s.AddToSelection("nope")
	if got := len(s.Selection()); got != 3 {
		t.Errorf("len(Selection()) = %d, want 3", got)
	}

	s.DeleteElements([]string{"a"})
	if diff := cmp.Diff([]string{"p", "b"}, s.Selection()); diff != "" {
		t.Errorf("deleted ids not pruned (-want +got):\n%s", diff)
	}

	s.ClearSelection()
	if len(s.Selection()) != 0 {
		t.Errorf("ClearSelection() left %v", s.Selection())
	}
}

func TestDeleteSelected(t *testing.T) {
	s := NewStore()
	for i := 0; i < 4; i++ {
		_ = s.AddShape(rect(fmt.Sprintf("s%d", i), 0, 0, 1, 1))
	}
	_ = s.AddPath(stroke("p", 0, 0, 1, 1))

	s.SetSelection([]string{"s1", "p", "s3"})
	if n := s.DeleteSelected(); n != 3 {
		t.Errorf("DeleteSelected() = %d, want 3", n)
	}
	if len(s.Selection()) != 0 {
		t.Error("selection not cleared")
	}
	snap := s.Snapshot()
	if len(snap.Paths) != 0 || len(snap.Shapes) != 2 || snap.Shapes[0].ID != "s0" || snap.Shapes[1].ID != "s2" {
		t.Errorf("remaining scene = %+v", snap)
	}
}

func TestTranslateShapes(t *testing.T) {
	s := NewStore()
	_ = s.AddShape(rect("a", 0, 0, 10, 10))
	_ = s.AddShape(document.Shape{ID: "l", Type: document.ShapeLine, Points: []float64{0, 0, 10, 0}})

	if n := s.TranslateShapes([]string{"a", "l", "zzz"}, 3, 4); n != 2 {
		t.Errorf("TranslateShapes() = %d, want 2", n)
	}
	a, _ := s.Shape("a")
	l, _ := s.Shape("l")
	if a.X != 3 || a.Y != 4 {
		t.Errorf("rect at (%v,%v), want (3,4)", a.X, a.Y)
	}
	if diff := cmp.Diff([]float64{3, 4, 13, 4}, l.Points); diff != "" {
		t.Errorf("line points (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewStore()
	_ = s.AddPath(stroke("p", 0, 0, 1, 1))
	snap := s.Snapshot()
	snap.Paths[0].Points[0] = 99

	if s.Paths()[0].Points[0] != 0 {
		t.Error("Snapshot() shares point storage with the store")
	}

	s.SetSelection([]string{"p"})
	s.Restore(document.NewEmptyScene())
	if s.Len() != 0 || len(s.Selection()) != 0 {
		t.Errorf("Restore() left len=%d selection=%v", s.Len(), s.Selection())
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	_ = s.AddShape(rect("a", 0, 0, 1, 1))
	s.SetSelection([]string{"a"})
	s.Clear()
	if s.Len() != 0 || len(s.Selection()) != 0 {
		t.Errorf("Clear() left len=%d selection=%v", s.Len(), s.Selection())
	}
}
