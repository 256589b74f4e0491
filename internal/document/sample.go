package document

import (
	"math"

	"github.com/inkboard/inkboard/internal/typeid"
)

// NewSampleScene builds a small demo board: a wavy stroke, a filled
// rectangle, a circle, an arrow pointing at the circle and a caption.
func NewSampleScene() Scene {
	wave := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		x := 40 + float64(i)*12
		y := 80 + math.Sin(float64(i)/3)*18
		wave = append(wave, x, y)
	}

	arrow := Shape{
		ID:          typeid.NewShapeID(),
		Type:        ShapeArrow,
		Points:      []float64{200, 220, 330, 220},
		Stroke:      "#000000",
		StrokeWidth: 2,
	}
	arrow.Normalize()

	caption := Shape{
		ID:     typeid.NewShapeID(),
		Type:   ShapeText,
		X:      60,
		Y:      300,
		Text:   "Hello, board",
		Stroke: "#000000",
		Fill:   "#000000",
	}
	caption.Normalize()

	return Scene{
		Paths: []Path{
			{
				ID:          typeid.NewPathID(),
				Points:      wave,
				Stroke:      "#1e40af",
				StrokeWidth: 3,
				Opacity:     1,
			},
		},
		Shapes: []Shape{
			{
				ID:          typeid.NewShapeID(),
				Type:        ShapeRectangle,
				X:           60,
				Y:           170,
				Width:       120,
				Height:      90,
				Stroke:      "#000000",
				StrokeWidth: 2,
				Fill:        "#fde68a",
				Opacity:     1,
			},
			{
				ID:          typeid.NewShapeID(),
				Type:        ShapeCircle,
				X:           340,
				Y:           170,
				Width:       100,
				Height:      100,
				Stroke:      "#b91c1c",
				StrokeWidth: 2,
				Fill:        Transparent,
				Opacity:     1,
			},
			arrow,
			caption,
		},
	}
}
