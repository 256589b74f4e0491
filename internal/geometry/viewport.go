package geometry

import "math"

const (
	MinScale = 0.1
	MaxScale = 5.0

	// ZoomFactor is the multiplicative step for zoom in/out commands.
	ZoomFactor = 1.2
	// WheelStep is the additive scale change per wheel notch.
	WheelStep = 0.1
)

// Viewport maps scene space to screen space: screen = scene*Scale + Position.
type Viewport struct {
	Position Point   `json:"position"`
	Scale    float64 `json:"scale"`
}

func DefaultViewport() Viewport {
	return Viewport{Scale: 1}
}

// ClampScale bounds s to [MinScale, MaxScale]. Non-finite or non-positive
// values collapse to the nearest bound.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) || s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Normalize returns v with its scale clamped.
func (v Viewport) Normalize() Viewport {
	v.Scale = ClampScale(v.Scale)
	return v
}

func (v Viewport) Matrix() Matrix2D {
	return Translate(v.Position.X, v.Position.Y).Multiply(Scale(v.Scale, v.Scale))
}

// ToScene converts a screen point to scene coordinates.
func ToScene(screen Point, v Viewport) Point {
	return Point{
		X: (screen.X - v.Position.X) / v.Scale,
		Y: (screen.Y - v.Position.Y) / v.Scale,
	}
}

// ToScreen converts a scene point to screen coordinates.
func ToScreen(scene Point, v Viewport) Point {
	return Point{
		X: scene.X*v.Scale + v.Position.X,
		Y: scene.Y*v.Scale + v.Position.Y,
	}
}

// ZoomAt changes the scale while keeping the scene point under anchor fixed.
func (v Viewport) ZoomAt(anchor Point, scale float64) Viewport {
	under := ToScene(anchor, v)
	scale = ClampScale(scale)
	return Viewport{
		Position: Point{X: anchor.X - under.X*scale, Y: anchor.Y - under.Y*scale},
		Scale:    scale,
	}
}

// ZoomIn multiplies the scale by ZoomFactor, leaving the position unchanged.
func (v Viewport) ZoomIn() Viewport {
	v.Scale = ClampScale(v.Scale * ZoomFactor)
	return v
}

func (v Viewport) ZoomOut() Viewport {
	v.Scale = ClampScale(v.Scale / ZoomFactor)
	return v
}

// Wheel applies one wheel notch at the pointer. Negative deltaY zooms in.
func (v Viewport) Wheel(pointer Point, deltaY float64) Viewport {
	if deltaY == 0 {
		return v
	}
	step := WheelStep
	if deltaY > 0 {
		step = -WheelStep
	}
	return v.ZoomAt(pointer, v.Scale+step)
}

// Pan shifts the viewport by a screen-space delta.
func (v Viewport) Pan(delta Point) Viewport {
	v.Position = v.Position.Add(delta)
	return v
}

// Fit frames b inside a screen of the given size with padding in screen
// pixels. An empty bounds or screen yields the default viewport.
func Fit(b Bounds, screenW, screenH, padding float64) Viewport {
	if b.IsEmpty() || screenW <= 0 || screenH <= 0 {
		return DefaultViewport()
	}
	availW := math.Max(screenW-2*padding, 1)
	availH := math.Max(screenH-2*padding, 1)

	scale := MaxScale
	if b.Width() > 0 {
		scale = math.Min(scale, availW/b.Width())
	}
	if b.Height() > 0 {
		scale = math.Min(scale, availH/b.Height())
	}
	scale = ClampScale(scale)

	center := b.Rect().Center()
	return Viewport{
		Position: Point{X: screenW/2 - center.X*scale, Y: screenH/2 - center.Y*scale},
		Scale:    scale,
	}
}

// VisibleArea returns the scene rect covered by a screen of the given size.
func (v Viewport) VisibleArea(screenW, screenH float64) Rect {
	return v.Matrix().Invert().ApplyRect(Rect{Width: screenW, Height: screenH})
}
