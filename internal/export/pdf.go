package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
	"github.com/inkboard/inkboard/internal/render"
)

// PDF writes the scene as a single vector page sized to its padded bounds.
// One scene unit is one point.
func PDF(w io.Writer, sc document.Scene) error {
	l := NewLayout(sc)
	orientation := "P"
	if l.Width > l.Height {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: l.Width, Ht: l.Height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, path := range sc.Paths {
		if len(path.Points) < 4 {
			continue
		}
		setDraw(p, path.Stroke)
		p.SetAlpha(document.EffectiveOpacity(path.Opacity), "Normal")
		p.SetLineWidth(path.StrokeWidth)
		pts := geometry.FlatToPoints(path.Points)
		for i := 1; i < len(pts); i++ {
			x1, y1 := l.place(pts[i-1].X, pts[i-1].Y)
			x2, y2 := l.place(pts[i].X, pts[i].Y)
			p.Line(x1, y1, x2, y2)
		}
	}

	for _, s := range sc.Shapes {
		drawShape(p, l, s)
	}

	p.SetAlpha(1, "Normal")
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawShape(p *gofpdf.Fpdf, l Layout, s document.Shape) {
	p.SetAlpha(document.EffectiveOpacity(s.Opacity), "Normal")
	p.SetLineWidth(s.StrokeWidth)
	setDraw(p, s.Stroke)

	r := geometry.ShapeRect(s)
	if s.Rotation != 0 {
		cx, cy := l.place(r.Center().X, r.Center().Y)
		p.TransformBegin()
		// gofpdf rotates counter-clockwise
		p.TransformRotate(-s.Rotation, cx, cy)
		defer p.TransformEnd()
	}

	style := "D"
	if document.HasFill(s.Fill) && (s.Type == document.ShapeRectangle || s.Type == document.ShapeCircle) {
		setFill(p, s.Fill)
		style = "FD"
	}

	switch s.Type {
	case document.ShapeRectangle:
		n := r.Normalize()
		x, y := l.place(n.X, n.Y)
		p.Rect(x, y, n.Width, n.Height, style)
	case document.ShapeCircle:
		c := r.Center()
		x, y := l.place(c.X, c.Y)
		p.Circle(x, y, math.Abs(s.Width+s.Height)/4, style)
	case document.ShapeLine, document.ShapeArrow:
		x1, y1 := l.place(r.X, r.Y)
		x2, y2 := l.place(r.X+r.Width, r.Y+r.Height)
		p.Line(x1, y1, x2, y2)
		if s.Type == document.ShapeArrow {
			left, right := render.ArrowHead(geometry.Point{X: x1, Y: y1}, geometry.Point{X: x2, Y: y2})
			p.Line(left.X, left.Y, x2, y2)
			p.Line(right.X, right.Y, x2, y2)
		}
	case document.ShapeText:
		color := s.Fill
		if !document.HasFill(color) {
			color = s.Stroke
		}
		setText(p, color)
		p.SetFont("Helvetica", "", s.EffectiveFontSize())
		x, y := l.place(s.X, s.Y+s.EffectiveFontSize())
		p.Text(x, y, s.Text)
	}
}

func rgb(hex string) (int, int, int) {
	if hex == "" {
		return 0, 0, 0
	}
	c := gg.Hex(hex)
	return int(math.Round(c.R * 255)), int(math.Round(c.G * 255)), int(math.Round(c.B * 255))
}

func setDraw(p *gofpdf.Fpdf, hex string) { p.SetDrawColor(rgb(hex)) }
func setFill(p *gofpdf.Fpdf, hex string) { p.SetFillColor(rgb(hex)) }
func setText(p *gofpdf.Fpdf, hex string) { p.SetTextColor(rgb(hex)) }
