package geometry

import "github.com/inkboard/inkboard/internal/document"

// ShapeRect returns the shape's box as stored, which may be flipped.
// Segment shapes span their two endpoints.
func ShapeRect(s document.Shape) Rect {
	if s.Type.IsSegment() && len(s.Points) >= 4 {
		return Rect{
			X:      s.Points[0],
			Y:      s.Points[1],
			Width:  s.Points[2] - s.Points[0],
			Height: s.Points[3] - s.Points[1],
		}
	}
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// HitTestShapes returns the topmost shape whose bounding box contains p.
// Circles are tested against their box, not their radius.
func HitTestShapes(p Point, shapes []document.Shape) (document.Shape, bool) {
	for i := len(shapes) - 1; i >= 0; i-- {
		if ShapeRect(shapes[i]).Contains(p) {
			return shapes[i], true
		}
	}
	return document.Shape{}, false
}

// BoundsOf unions path extrema and shape boxes. An empty scene returns
// EmptyBounds, so callers must check IsEmpty.
func BoundsOf(paths []document.Path, shapes []document.Shape) Bounds {
	b := EmptyBounds()
	for _, p := range paths {
		for i := 0; i+1 < len(p.Points); i += 2 {
			b = b.Extend(Point{p.Points[i], p.Points[i+1]})
		}
	}
	for _, s := range shapes {
		r := ShapeRect(s).Normalize()
		b = b.Extend(Point{r.X, r.Y}).Extend(Point{r.X + r.Width, r.Y + r.Height})
	}
	return b
}

// FlatToPoints pairs up interleaved coordinates. A trailing odd value is dropped.
func FlatToPoints(flat []float64) []Point {
	pts := make([]Point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, Point{flat[i], flat[i+1]})
	}
	return pts
}
