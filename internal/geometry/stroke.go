package geometry

import "math"

const (
	// StrokeThinning is how much low pressure narrows a freehand stroke.
	StrokeThinning = 0.6
	// StrokeSizeFactor converts a stroke width into an outline size.
	StrokeSizeFactor = 2.0
)

// Pressure simulates pen pressure as a triangle peaking at the middle of an
// n-point stroke, clamped to [0, 1].
func Pressure(i, n int) float64 {
	half := float64(n) / 2
	if half == 0 {
		return 1
	}
	p := 1 - math.Abs(float64(i)-half)/half
	return math.Max(0, math.Min(1, p))
}

// StrokeOutline turns a centerline into a closed polygon whose width tapers
// with the simulated pressure. The forward walk offsets one side, the
// backward walk the other. Fewer than two points yield nil.
func StrokeOutline(points []Point, size, thinning float64) []Point {
	n := len(points)
	if n < 2 {
		return nil
	}

	widths := make([]float64, n)
	for i := range points {
		widths[i] = size * (1 - thinning*(1-Pressure(i, n)))
	}

	outline := make([]Point, 0, 2*n+1)
	for i, p := range points {
		half := widths[i] / 2
		if i == 0 {
			outline = append(outline,
				Point{p.X - half, p.Y - half},
				Point{p.X + half, p.Y - half},
			)
			continue
		}
		perp := heading(points[i-1], p) + math.Pi/2
		outline = append(outline, Point{p.X + math.Cos(perp)*half, p.Y + math.Sin(perp)*half})
	}

	for i := n - 1; i >= 0; i-- {
		p := points[i]
		half := widths[i] / 2
		angle := 0.0
		if i > 0 {
			angle = heading(points[i-1], p)
		}
		perp := angle - math.Pi/2
		outline = append(outline, Point{p.X + math.Cos(perp)*half, p.Y + math.Sin(perp)*half})
	}
	return outline
}

func heading(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}
