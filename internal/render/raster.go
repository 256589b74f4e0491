package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inkboard/inkboard/internal/geometry"
)

// Raster executes draw commands on a gogpu/gg software context.
type Raster struct {
	font *text.FontSource
}

func NewRaster() (*Raster, error) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Raster{font: src}, nil
}

// Draw replays cmds onto dc, starting from base (typically the device pixel
// ratio). It stops at the first paint error.
func (r *Raster) Draw(dc *gg.Context, base geometry.Matrix2D, cmds []DrawCommand) error {
	current := base
	var stack []geometry.Matrix2D

	for i, cmd := range cmds {
		switch cmd.Op {
		case OpSave:
			stack = append(stack, current)
		case OpRestore:
			if n := len(stack); n > 0 {
				current = stack[n-1]
				stack = stack[:n-1]
			}
		case OpTransform:
			current = current.Multiply(matrixFrom(cmd.Transform))
		case OpPath:
			if err := r.drawPath(dc, local(current, cmd), cmd); err != nil {
				return fmt.Errorf("draw command %d: %w", i, err)
			}
		case OpText:
			r.drawText(dc, local(current, cmd), cmd)
		}
	}
	return nil
}

func (r *Raster) drawPath(dc *gg.Context, m geometry.Matrix2D, cmd DrawCommand) error {
	dc.SetTransform(toGG(m))
	defer dc.SetTransform(gg.Identity())

	buildPath(dc, cmd.Path)

	if cmd.Fill != "" {
		setColor(dc, cmd.Fill, cmd.Opacity)
		if cmd.Stroke != "" {
			if err := dc.FillPreserve(); err != nil {
				return err
			}
		} else if err := dc.Fill(); err != nil {
			return err
		}
	}
	if cmd.Stroke == "" {
		dc.ClearPath()
		return nil
	}

	setColor(dc, cmd.Stroke, cmd.Opacity)
	dc.SetLineWidth(math.Max(cmd.StrokeWidth, 0))
	if len(cmd.Dash) > 0 {
		dc.SetDash(cmd.Dash...)
		defer dc.ClearDash()
	}
	return dc.Stroke()
}

// drawText places glyphs in device space; gg draws text untransformed, so
// the baseline origin and font size are mapped here.
func (r *Raster) drawText(dc *gg.Context, m geometry.Matrix2D, cmd DrawCommand) {
	if cmd.Text == "" || cmd.Fill == "" {
		return
	}
	origin := m.Apply(geometry.Point{X: cmd.X, Y: cmd.Y})
	size := cmd.FontSize * math.Sqrt(math.Abs(m.Determinant()))
	if size <= 0 {
		return
	}
	dc.SetTransform(gg.Identity())
	dc.SetFont(r.font.Face(size))
	setColor(dc, cmd.Fill, cmd.Opacity)
	dc.DrawString(cmd.Text, origin.X, origin.Y)
}

func buildPath(dc *gg.Context, path []PathCommand) {
	for _, pc := range path {
		if len(pc) == 0 {
			continue
		}
		verb, _ := pc[0].(string)
		arg := func(i int) float64 {
			if i+1 < len(pc) {
				return toFloat64(pc[i+1])
			}
			return 0
		}
		switch verb {
		case "M":
			dc.MoveTo(arg(0), arg(1))
		case "L":
			dc.LineTo(arg(0), arg(1))
		case "C":
			dc.CubicTo(arg(0), arg(1), arg(2), arg(3), arg(4), arg(5))
		case "Z":
			dc.ClosePath()
		}
	}
}

func local(current geometry.Matrix2D, cmd DrawCommand) geometry.Matrix2D {
	if len(cmd.Transform) != 6 {
		return current
	}
	return current.Multiply(matrixFrom(cmd.Transform))
}

func matrixFrom(v []float64) geometry.Matrix2D {
	if len(v) != 6 {
		return geometry.Identity()
	}
	return geometry.Matrix2D{v[0], v[1], v[2], v[3], v[4], v[5]}
}

// toGG converts canvas order [a b c d e f] to gg's row-major layout.
func toGG(m geometry.Matrix2D) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	c := gg.Hex(hex)
	if opacity <= 0 {
		opacity = 1
	}
	dc.SetRGBA(c.R, c.G, c.B, c.A*opacity)
}
