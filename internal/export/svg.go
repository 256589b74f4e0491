// Package export renders scenes to standalone SVG, PNG and PDF files.
package export

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
)

const (
	// Padding surrounds the scene bounds in every export, in scene units.
	Padding = 20.0

	// PixelRatio is the device pixel density of PNG exports.
	PixelRatio = 2.0
)

const arrowMarker = `<defs><marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="black"/></marker></defs>`

// Layout places a scene on a page: scene point p lands at p - Origin.
type Layout struct {
	Origin        geometry.Point
	Width, Height float64
}

// NewLayout fits the page to the scene bounds plus Padding. An empty scene
// gives a page of just the padding.
func NewLayout(sc document.Scene) Layout {
	b := geometry.BoundsOf(sc.Paths, sc.Shapes)
	if b.IsEmpty() {
		return Layout{
			Origin: geometry.Point{X: -Padding, Y: -Padding},
			Width:  2 * Padding,
			Height: 2 * Padding,
		}
	}
	return Layout{
		Origin: geometry.Point{X: b.MinX - Padding, Y: b.MinY - Padding},
		Width:  b.Width() + 2*Padding,
		Height: b.Height() + 2*Padding,
	}
}

func (l Layout) place(x, y float64) (float64, float64) {
	return x - l.Origin.X, y - l.Origin.Y
}

// Viewport maps scene space onto the page.
func (l Layout) Viewport() geometry.Viewport {
	return geometry.Viewport{Position: geometry.Point{X: -l.Origin.X, Y: -l.Origin.Y}, Scale: 1}
}

// SVG writes the scene as an SVG document. Paths become polylines; shapes
// keep their variant.
func SVG(sc document.Scene) []byte {
	l := NewLayout(sc)
	var b strings.Builder

	fmt.Fprintf(&b, `<svg width="%s" height="%s" xmlns="http://www.w3.org/2000/svg">`, num(l.Width), num(l.Height))
	b.WriteString(`<rect width="100%" height="100%" fill="white"/>`)

	for _, p := range sc.Paths {
		coords := make([]string, 0, len(p.Points))
		for i := 0; i+1 < len(p.Points); i += 2 {
			x, y := l.place(p.Points[i], p.Points[i+1])
			coords = append(coords, num(x), num(y))
		}
		fmt.Fprintf(&b, `<polyline points="%s" stroke="%s" stroke-width="%s" fill="none" opacity="%s"/>`,
			strings.Join(coords, " "), attr(p.Stroke), num(p.StrokeWidth), num(document.EffectiveOpacity(p.Opacity)))
	}

	for _, s := range sc.Shapes {
		writeShape(&b, l, s)
	}

	b.WriteString(arrowMarker)
	b.WriteString("</svg>")
	return []byte(b.String())
}

func writeShape(b *strings.Builder, l Layout, s document.Shape) {
	x, y := l.place(s.X, s.Y)
	opacity := num(document.EffectiveOpacity(s.Opacity))
	rotate := ""
	if s.Rotation != 0 {
		c := geometry.ShapeRect(s).Center()
		cx, cy := l.place(c.X, c.Y)
		rotate = fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(s.Rotation), num(cx), num(cy))
	}

	switch s.Type {
	case document.ShapeRectangle:
		r := geometry.ShapeRect(s).Normalize()
		x, y = l.place(r.X, r.Y)
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" stroke="%s" stroke-width="%s" fill="%s" opacity="%s"%s/>`,
			num(x), num(y), num(r.Width), num(r.Height), attr(s.Stroke), num(s.StrokeWidth), fill(s.Fill), opacity, rotate)
	case document.ShapeCircle:
		radius := math.Abs(s.Width+s.Height) / 4
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" stroke="%s" stroke-width="%s" fill="%s" opacity="%s"/>`,
			num(x+s.Width/2), num(y+s.Height/2), num(radius), attr(s.Stroke), num(s.StrokeWidth), fill(s.Fill), opacity)
	case document.ShapeText:
		color := s.Fill
		if !document.HasFill(color) {
			color = s.Stroke
		}
		fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%s" font-family="Arial" fill="%s" opacity="%s"%s>%s</text>`,
			num(x), num(y+s.EffectiveFontSize()), num(s.EffectiveFontSize()), attr(color), opacity, rotate, html.EscapeString(s.Text))
	case document.ShapeArrow, document.ShapeLine:
		r := geometry.ShapeRect(s)
		x1, y1 := l.place(r.X, r.Y)
		x2, y2 := l.place(r.X+r.Width, r.Y+r.Height)
		marker := ""
		if s.Type == document.ShapeArrow {
			marker = ` marker-end="url(#arrowhead)"`
		}
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" opacity="%s"%s%s/>`,
			num(x1), num(y1), num(x2), num(y2), attr(s.Stroke), num(s.StrokeWidth), opacity, marker, rotate)
	}
}

func fill(f string) string {
	if !document.HasFill(f) {
		return "none"
	}
	return attr(f)
}

func attr(s string) string {
	if s == "" {
		return "none"
	}
	return html.EscapeString(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
