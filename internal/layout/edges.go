package layout

import (
	"fmt"
	"math"
)

// Point is a location in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is a cubic Bezier from the bottom centre of a parent box to the top
// centre of a child box. Both control points sit on the vertical midpoint,
// giving an S-shaped edge.
type Curve struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

func EdgeCurve(parent, child Rect) Curve {
	start := Point{X: parent.X + parent.Width/2, Y: parent.Bottom()}
	end := Point{X: child.X + child.Width/2, Y: child.Y}
	midY := (start.Y + end.Y) / 2
	return Curve{
		Start: start,
		C1:    Point{X: start.X, Y: midY},
		C2:    Point{X: end.X, Y: midY},
		End:   end,
	}
}

// Path renders the curve as SVG path data.
func (c Curve) Path() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
}

// StrokeWidth grows with the log of the rows flowing into the child, clamped
// to [minWidth, maxWidth].
func StrokeWidth(rows int64, minWidth, maxWidth float64) float64 {
	if rows <= 0 {
		return minWidth
	}
	w := minWidth + math.Log10(float64(rows)+1)
	return math.Min(math.Max(w, minWidth), maxWidth)
}
