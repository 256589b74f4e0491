package document

// FormatVersion is written into every exported scene blob.
const FormatVersion = "1.0"

const (
	// CharWidth is the advance used to size text boxes.
	CharWidth       = 8.0
	DefaultFontSize = 16.0
	// MinFontSize bounds how far a text shape can be resized down.
	MinFontSize = 4.0

	// Transparent is the fill value that disables filling.
	Transparent = "transparent"
)

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeArrow     ShapeType = "arrow"
	ShapeLine      ShapeType = "line"
	ShapeText      ShapeType = "text"
)

// Valid reports whether t is one of the known shape variants.
func (t ShapeType) Valid() bool {
	switch t {
	case ShapeRectangle, ShapeCircle, ShapeArrow, ShapeLine, ShapeText:
		return true
	}
	return false
}

// IsSegment reports whether the variant is defined by two endpoints.
func (t ShapeType) IsSegment() bool {
	return t == ShapeArrow || t == ShapeLine
}

// Path is a committed freehand stroke. Points are flattened x/y pairs.
type Path struct {
	ID          string    `json:"id"`
	Points      []float64 `json:"points"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	Opacity     float64   `json:"opacity,omitempty"`
}

// Shape is the tagged variant over rectangle, circle, arrow, line and text.
// Fields that a variant does not use stay at their zero value.
type Shape struct {
	ID          string    `json:"id"`
	Type        ShapeType `json:"type"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	Fill        string    `json:"fill,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Rotation    float64   `json:"rotation,omitempty"`

	// arrow, line
	Points []float64 `json:"points,omitempty"`

	// text
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
}

// Scene is the ordered set of committed elements. Later entries draw on top.
type Scene struct {
	Paths  []Path  `json:"paths"`
	Shapes []Shape `json:"shapes"`
}

// EffectiveOpacity maps an unset opacity to fully opaque.
func EffectiveOpacity(o float64) float64 {
	if o <= 0 {
		return 1
	}
	return min(o, 1)
}

// HasFill reports whether fill names a paintable colour.
func HasFill(fill string) bool {
	return fill != "" && fill != Transparent
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	p.Points = cloneFloats(p.Points)
	return p
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	s.Points = cloneFloats(s.Points)
	return s
}

// EffectiveFontSize returns the font size, falling back to DefaultFontSize.
func (s Shape) EffectiveFontSize() float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// Normalize restores the derived fields of a shape. Segment shapes take their
// box from the endpoints; text shapes take theirs from the glyph count.
func (s *Shape) Normalize() {
	switch {
	case s.Type.IsSegment():
		if len(s.Points) >= 4 {
			s.X, s.Y = s.Points[0], s.Points[1]
			s.Width = s.Points[2] - s.Points[0]
			s.Height = s.Points[3] - s.Points[1]
		} else {
			s.SyncEndpoints()
		}
	case s.Type == ShapeText:
		s.SyncTextBounds()
	}
}

// SyncEndpoints rewrites a segment's points from its box.
func (s *Shape) SyncEndpoints() {
	s.Points = []float64{s.X, s.Y, s.X + s.Width, s.Y + s.Height}
}

// SyncTextBounds derives the text box from the text and font size.
func (s *Shape) SyncTextBounds() {
	s.FontSize = s.EffectiveFontSize()
	s.Width = float64(len([]rune(s.Text))) * CharWidth
	s.Height = s.FontSize
}

// Translate moves the shape and, for segments, its endpoints.
func (s *Shape) Translate(dx, dy float64) {
	s.X += dx
	s.Y += dy
	for i := 0; i+1 < len(s.Points); i += 2 {
		s.Points[i] += dx
		s.Points[i+1] += dy
	}
}

// HasExtent reports whether a freshly drawn shape is large enough to keep.
func (s Shape) HasExtent() bool {
	if s.Type.IsSegment() && len(s.Points) >= 4 {
		return s.Points[0] != s.Points[2] || s.Points[1] != s.Points[3]
	}
	return s.Width != 0 || s.Height != 0
}

// Clone returns a deep copy of the scene. Nil collections become empty slices
// so serialized snapshots always carry both arrays.
func (sc Scene) Clone() Scene {
	out := Scene{
		Paths:  make([]Path, len(sc.Paths)),
		Shapes: make([]Shape, len(sc.Shapes)),
	}
	for i, p := range sc.Paths {
		out.Paths[i] = p.Clone()
	}
	for i, s := range sc.Shapes {
		out.Shapes[i] = s.Clone()
	}
	return out
}

// Len returns the number of elements in the scene.
func (sc Scene) Len() int {
	return len(sc.Paths) + len(sc.Shapes)
}

// IsEmpty reports whether the scene has no elements.
func (sc Scene) IsEmpty() bool {
	return sc.Len() == 0
}

// Has reports whether an element with the given id exists.
func (sc Scene) Has(id string) bool {
	for _, p := range sc.Paths {
		if p.ID == id {
			return true
		}
	}
	for _, s := range sc.Shapes {
		if s.ID == id {
			return true
		}
	}
	return false
}

// NewEmptyScene returns a scene with both collections allocated.
func NewEmptyScene() Scene {
	return Scene{Paths: []Path{}, Shapes: []Shape{}}
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
