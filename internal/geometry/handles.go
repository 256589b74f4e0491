package geometry

import "github.com/inkboard/inkboard/internal/document"

// HandleSize is the on-screen side of a resize handle in pixels.
const HandleSize = 8.0

type HandleName string

const (
	HandleNW HandleName = "nw"
	HandleNE HandleName = "ne"
	HandleSW HandleName = "sw"
	HandleSE HandleName = "se"
	HandleN  HandleName = "n"
	HandleS  HandleName = "s"
	HandleW  HandleName = "w"
	HandleE  HandleName = "e"
)

// Handle is one resize grip, positioned in scene coordinates.
type Handle struct {
	Name HandleName `json:"name"`
	Rect Rect       `json:"rect"`
}

// ResizeHandles lays out the eight grips of a shape. Each grip is a square of
// side HandleSize/scale centered on a corner or edge midpoint, so it keeps a
// constant size on screen.
func ResizeHandles(s document.Shape, v Viewport) [8]Handle {
	r := ShapeRect(s)
	size := HandleSize / v.Scale
	half := size / 2

	at := func(name HandleName, cx, cy float64) Handle {
		return Handle{Name: name, Rect: Rect{X: cx - half, Y: cy - half, Width: size, Height: size}}
	}

	midX := r.X + r.Width/2
	midY := r.Y + r.Height/2
	right := r.X + r.Width
	bottom := r.Y + r.Height

	return [8]Handle{
		at(HandleNW, r.X, r.Y),
		at(HandleNE, right, r.Y),
		at(HandleSW, r.X, bottom),
		at(HandleSE, right, bottom),
		at(HandleN, midX, r.Y),
		at(HandleS, midX, bottom),
		at(HandleW, r.X, midY),
		at(HandleE, right, midY),
	}
}

// HitTestHandle returns the first handle containing p.
func HitTestHandle(p Point, handles [8]Handle) (HandleName, bool) {
	for _, h := range handles {
		if h.Rect.Contains(p) {
			return h.Name, true
		}
	}
	return "", false
}

// ApplyResize moves the edges named by the handle by delta. Sizes are not
// clamped: dragging past the opposite edge flips the shape. Text is the
// exception: its height becomes the font size and its box stays derived
// from the text.
func ApplyResize(s document.Shape, name HandleName, delta Point) document.Shape {
	out := s.Clone()
	if out.Type.IsSegment() {
		r := ShapeRect(out)
		out.X, out.Y, out.Width, out.Height = r.X, r.Y, r.Width, r.Height
	}
	dx, dy := delta.X, delta.Y

	switch name {
	case HandleSE:
		out.Width += dx
		out.Height += dy
	case HandleSW:
		out.X += dx
		out.Width -= dx
		out.Height += dy
	case HandleNE:
		out.Y += dy
		out.Width += dx
		out.Height -= dy
	case HandleNW:
		out.X += dx
		out.Y += dy
		out.Width -= dx
		out.Height -= dy
	case HandleN:
		out.Y += dy
		out.Height -= dy
	case HandleS:
		out.Height += dy
	case HandleW:
		out.X += dx
		out.Width -= dx
	case HandleE:
		out.Width += dx
	default:
		return out
	}

	switch out.Type {
	case document.ShapeArrow, document.ShapeLine:
		out.SyncEndpoints()
	case document.ShapeText:
		return resizeText(s, out)
	}
	return out
}

// resizeText scales the font of orig to the height of box. Only a moved top
// edge shifts the shape; the bottom edge stays put in that case.
func resizeText(orig, box document.Shape) document.Shape {
	out := orig.Clone()
	out.FontSize = max(box.Height, document.MinFontSize)
	if box.Y != orig.Y {
		out.Y = orig.Y + orig.EffectiveFontSize() - out.FontSize
	}
	out.SyncTextBounds()
	return out
}
