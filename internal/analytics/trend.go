package analytics

import (
	"strconv"
	"strings"
)

// Point is a coordinate in the trend chart's output space, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a cubic Bézier from the previous segment's end (or the path start).
type Segment struct {
	C1  Point `json:"c1"`
	C2  Point `json:"c2"`
	End Point `json:"end"`
}

// Path is a smooth curve through a ratio series.
type Path struct {
	Start    Point     `json:"start"`
	Segments []Segment `json:"segments"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
}

// Empty reports whether the path has no points.
func (p Path) Empty() bool {
	return len(p.Segments) == 0
}

// TrendPath fits a Catmull-Rom spline through ratios and returns it as cubic
// Bézier segments. Samples are spaced evenly over [0, width]; a ratio r maps to
// y = height*(1-r) so a full day sits at the top. The first and last points are
// exactly the first and last samples. Control points are clamped to
// [0, height]. A single sample becomes a flat line across the width; no samples
// yield an empty path.
func TrendPath(ratios []float64, width, height float64) Path {
	p := Path{Width: width, Height: height}
	n := len(ratios)
	if n == 0 {
		return p
	}

	y := func(r float64) float64 { return height * (1 - clampUnit(r)) }

	if n == 1 {
		v := y(ratios[0])
		p.Start = Point{0, v}
		p.Segments = []Segment{{
			C1:  Point{width / 3, v},
			C2:  Point{2 * width / 3, v},
			End: Point{width, v},
		}}
		return p
	}

	step := width / float64(n-1)
	pts := make([]Point, n)
	for i, r := range ratios {
		pts[i] = Point{X: float64(i) * step, Y: y(r)}
	}
	pts[n-1].X = width

	at := func(i int) Point {
		if i < 0 {
			return pts[0]
		}
		if i >= n {
			return pts[n-1]
		}
		return pts[i]
	}
	clampY := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > height {
			return height
		}
		return v
	}

	p.Start = pts[0]
	p.Segments = make([]Segment, 0, n-1)
	for i := 0; i < n-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		p.Segments = append(p.Segments, Segment{
			C1:  Point{p1.X + (p2.X-p0.X)/6, clampY(p1.Y + (p2.Y-p0.Y)/6)},
			C2:  Point{p2.X - (p3.X-p1.X)/6, clampY(p2.Y - (p3.Y-p1.Y)/6)},
			End: p2,
		})
	}
	return p
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SVG renders the path as an SVG path "d" attribute.
func (p Path) SVG() string {
	if p.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(fmtCoord(p.Start.X))
	b.WriteByte(' ')
	b.WriteString(fmtCoord(p.Start.Y))
	for _, s := range p.Segments {
		b.WriteString(" C ")
		for i, pt := range []Point{s.C1, s.C2, s.End} {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmtCoord(pt.X))
			b.WriteByte(' ')
			b.WriteString(fmtCoord(pt.Y))
		}
	}
	return b.String()
}
