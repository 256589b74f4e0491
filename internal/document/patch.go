package document

// ShapePatch is a partial shape update. Nil fields are left untouched.
type ShapePatch struct {
	X           *float64  `json:"x,omitempty"`
	Y           *float64  `json:"y,omitempty"`
	Width       *float64  `json:"width,omitempty"`
	Height      *float64  `json:"height,omitempty"`
	Stroke      *string   `json:"stroke,omitempty"`
	StrokeWidth *float64  `json:"strokeWidth,omitempty"`
	Fill        *string   `json:"fill,omitempty"`
	Opacity     *float64  `json:"opacity,omitempty"`
	Rotation    *float64  `json:"rotation,omitempty"`
	Points      []float64 `json:"points,omitempty"`
	Text        *string   `json:"text,omitempty"`
	FontSize    *float64  `json:"fontSize,omitempty"`
}

// Geometry builds a patch that overwrites the box of a shape. Text shapes
// carry their font size, which their box is derived from.
func Geometry(s Shape) ShapePatch {
	p := ShapePatch{
		X:      Float(s.X),
		Y:      Float(s.Y),
		Width:  Float(s.Width),
		Height: Float(s.Height),
	}
	switch {
	case s.Type.IsSegment():
		p.Points = cloneFloats(s.Points)
	case s.Type == ShapeText:
		p.FontSize = Float(s.EffectiveFontSize())
	}
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p ShapePatch) IsEmpty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Stroke == nil && p.StrokeWidth == nil && p.Fill == nil &&
		p.Opacity == nil && p.Rotation == nil && p.Points == nil &&
		p.Text == nil && p.FontSize == nil
}

// Apply merges the patch into s and returns the result. Derived fields are
// recomputed afterwards: points win over the box for segments, and text
// boxes follow the text.
func (p ShapePatch) Apply(s Shape) Shape {
	out := s.Clone()
	boxChanged := false
	if p.X != nil {
		out.X = *p.X
		boxChanged = true
	}
	if p.Y != nil {
		out.Y = *p.Y
		boxChanged = true
	}
	if p.Width != nil {
		out.Width = *p.Width
		boxChanged = true
	}
	if p.Height != nil {
		out.Height = *p.Height
		boxChanged = true
	}
	if p.Stroke != nil {
		out.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		out.StrokeWidth = *p.StrokeWidth
	}
	if p.Fill != nil {
		out.Fill = *p.Fill
	}
	if p.Opacity != nil {
		out.Opacity = *p.Opacity
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.FontSize != nil {
		out.FontSize = *p.FontSize
	}

	switch {
	case out.Type.IsSegment() && p.Points != nil:
		out.Points = cloneFloats(p.Points)
		out.Normalize()
	case out.Type.IsSegment() && boxChanged:
		out.SyncEndpoints()
	case out.Type == ShapeText && (p.Text != nil || p.FontSize != nil):
		out.SyncTextBounds()
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
