package render

import (
	"encoding/json"
	"math"

	"github.com/inkboard/inkboard/internal/geometry"
)

type Op string

const (
	OpSave      Op = "save"
	OpRestore   Op = "restore"
	OpTransform Op = "transform"
	OpPath      Op = "path"
	OpText      Op = "text"
)

// Layer tags a command with the part of the frame that produced it.
type Layer string

const (
	LayerGrid      Layer = "grid"
	LayerElement   Layer = "element"
	LayerSelection Layer = "selection"
	LayerHandle    Layer = "handle"
	LayerPreview   Layer = "preview"
)

// DrawCommand is one drawing operation for a Canvas2D-style executor. The
// browser bridge receives these as JSON; Raster executes them natively.
type DrawCommand struct {
	Op          Op            `json:"op"`
	Layer       Layer         `json:"layer,omitempty"`
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f], multiplied onto the current transform
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Line dash pattern
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
	Text        string        `json:"text,omitempty"`
	X           float64       `json:"x,omitempty"` // Text origin, y is the baseline
	Y           float64       `json:"y,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	Font        string        `json:"font,omitempty"`
}

// PathCommand is a single path segment in Canvas2D form:
// ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y] or ["Z"].
type PathCommand []interface{}

func moveTo(p geometry.Point) PathCommand { return PathCommand{"M", p.X, p.Y} }
func lineTo(p geometry.Point) PathCommand { return PathCommand{"L", p.X, p.Y} }
func closePath() PathCommand              { return PathCommand{"Z"} }

// polygonPath closes a polyline through pts.
func polygonPath(pts []geometry.Point) []PathCommand {
	if len(pts) == 0 {
		return nil
	}
	out := make([]PathCommand, 0, len(pts)+1)
	out = append(out, moveTo(pts[0]))
	for _, p := range pts[1:] {
		out = append(out, lineTo(p))
	}
	return append(out, closePath())
}

func rectPath(r geometry.Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// circlePath approximates a circle with four cubic bezier curves.
func circlePath(c geometry.Point, r float64) []PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498 * r
	return []PathCommand{
		{"M", c.X + r, c.Y},
		{"C", c.X + r, c.Y + k, c.X + k, c.Y + r, c.X, c.Y + r},
		{"C", c.X - k, c.Y + r, c.X - r, c.Y + k, c.X - r, c.Y},
		{"C", c.X - r, c.Y - k, c.X - k, c.Y - r, c.X, c.Y - r},
		{"C", c.X + k, c.Y - r, c.X + r, c.Y - k, c.X + r, c.Y},
		{"Z"},
	}
}

// ArrowHead returns the two barb ends of an arrowhead at tip.
func ArrowHead(from, tip geometry.Point) (geometry.Point, geometry.Point) {
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	barb := func(a float64) geometry.Point {
		return geometry.Point{
			X: tip.X - ArrowHeadLength*math.Cos(a),
			Y: tip.Y - ArrowHeadLength*math.Sin(a),
		}
	}
	return barb(angle - ArrowHeadAngle), barb(angle + ArrowHeadAngle)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// toFloat64 converts a path argument to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
