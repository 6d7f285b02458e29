package geom

import (
	"fmt"
	"math"
	"strings"
)

// RenderType selects how an edge is routed between its anchors.
type RenderType string

const (
	Curve      RenderType = "curve"
	Straight   RenderType = "straight"
	Orthogonal RenderType = "orthogonal"
)

// Valid reports whether t is one of the known render types.
func (t RenderType) Valid() bool {
	return t == Curve || t == Straight || t == Orthogonal
}

const (
	// DefaultCurvature is the fraction of the anchor distance used to place
	// curve control points.
	DefaultCurvature = 0.25
	// OrthogonalStub is how far an orthogonal route leaves an anchor before
	// its first turn.
	OrthogonalStub = 20.0

	curveSamples = 16
)

// Segment is either a straight line From→To or, when Curved, a cubic Bézier
// with control points C1 and C2.
type Segment struct {
	From, C1, C2, To Point
	Curved           bool
}

// At evaluates the segment at t in [0,1].
func (s Segment) At(t float64) Point {
	if !s.Curved {
		return s.From.lerp(s.To, t)
	}
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*s.From.X + b*s.C1.X + c*s.C2.X + d*s.To.X,
		Y: a*s.From.Y + b*s.C1.Y + c*s.C2.Y + d*s.To.Y,
	}
}

// flatten returns the polyline approximating s, including both endpoints.
func (s Segment) flatten() []Point {
	if !s.Curved {
		return []Point{s.From, s.To}
	}
	pts := make([]Point, 0, curveSamples+1)
	for i := 0; i <= curveSamples; i++ {
		pts = append(pts, s.At(float64(i)/curveSamples))
	}
	return pts
}

// Path is a chain of segments, each starting where the previous one ended.
type Path struct {
	Segments []Segment
}

// Points flattens the path into a polyline.
func (p Path) Points() []Point {
	var out []Point
	for i, s := range p.Segments {
		pts := s.flatten()
		if i > 0 {
			pts = pts[1:]
		}
		out = append(out, pts...)
	}
	return out
}

// Length is the approximate arc length of the path.
func (p Path) Length() float64 {
	pts := p.Points()
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	return total
}

// Midpoint returns the point halfway along the path, used to place labels.
func (p Path) Midpoint() Point {
	pts := p.Points()
	if len(pts) == 0 {
		return Point{}
	}
	half := p.Length() / 2
	for i := 1; i < len(pts); i++ {
		d := pts[i-1].Dist(pts[i])
		if d >= half && d > 0 {
			return pts[i-1].lerp(pts[i], half/d)
		}
		half -= d
	}
	return pts[len(pts)-1]
}

// Bounds returns the bounding box of the flattened path.
func (p Path) Bounds() Rect {
	pts := p.Points()
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{X: pts[0].X, Y: pts[0].Y}
	for _, pt := range pts[1:] {
		r = r.Union(Rect{X: pt.X, Y: pt.Y})
	}
	return r
}

// Nearest returns the point on the path closest to q and its distance.
func (p Path) Nearest(q Point) (Point, float64) {
	pts := p.Points()
	if len(pts) == 0 {
		return Point{}, math.Inf(1)
	}
	best, bestDist := pts[0], pts[0].Dist(q)
	for i := 1; i < len(pts); i++ {
		c := closestOnSegment(pts[i-1], pts[i], q)
		if d := c.Dist(q); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func closestOnSegment(a, b, q Point) Point {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return a
	}
	t := ((q.X-a.X)*ab.X + (q.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return a.lerp(b, t)
}

// SVG renders the path as an SVG path "d" attribute.
func (p Path) SVG() string {
	if len(p.Segments) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %g %g", p.Segments[0].From.X, p.Segments[0].From.Y)
	for _, s := range p.Segments {
		if s.Curved {
			fmt.Fprintf(&b, " C %g %g, %g %g, %g %g", s.C1.X, s.C1.Y, s.C2.X, s.C2.Y, s.To.X, s.To.Y)
		} else {
			fmt.Fprintf(&b, " L %g %g", s.To.X, s.To.Y)
		}
	}
	return b.String()
}

func (p *Path) append(q Path) {
	p.Segments = append(p.Segments, q.Segments...)
}

// StraightPath connects a and b with one line segment.
func StraightPath(a, b Point) Path {
	return Path{Segments: []Segment{{From: a, To: b}}}
}

// CurvePath connects a and b with a cubic whose control points leave each
// anchor along its side by curvature times the anchor distance.
func CurvePath(a Point, sa Side, b Point, sb Side, curvature float64) Path {
	d := curvature * a.Dist(b)
	return Path{Segments: []Segment{{
		From:   a,
		C1:     a.Add(sa.Vector().Scale(d)),
		C2:     b.Add(sb.Vector().Scale(d)),
		To:     b,
		Curved: true,
	}}}
}

// OrthogonalPath connects a and b with axis-aligned segments. Routing
// depends on whether both sides are horizontal, both vertical, or mixed.
func OrthogonalPath(a Point, sa Side, b Point, sb Side) Path {
	s := a.Add(sa.Vector().Scale(OrthogonalStub))
	e := b.Add(sb.Vector().Scale(OrthogonalStub))

	pts := []Point{a, s}
	switch {
	case sa.Horizontal() && sb.Horizontal():
		midX := (s.X + e.X) / 2
		pts = append(pts, Point{midX, s.Y}, Point{midX, e.Y})
	case !sa.Horizontal() && !sb.Horizontal():
		midY := (s.Y + e.Y) / 2
		pts = append(pts, Point{s.X, midY}, Point{e.X, midY})
	case sa.Horizontal():
		pts = append(pts, Point{e.X, s.Y})
	default:
		pts = append(pts, Point{s.X, e.Y})
	}
	pts = append(pts, e, b)
	return polyline(simplify(pts))
}

func polyline(pts []Point) Path {
	var p Path
	for i := 1; i < len(pts); i++ {
		p.Segments = append(p.Segments, Segment{From: pts[i-1], To: pts[i]})
	}
	if len(p.Segments) == 0 && len(pts) == 1 {
		p.Segments = []Segment{{From: pts[0], To: pts[0]}}
	}
	return p
}

// simplify drops repeated points and the middle of collinear runs.
func simplify(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], p) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func collinear(a, b, c Point) bool {
	// only axis-aligned runs that keep going the same way
	if a.X == b.X && b.X == c.X {
		return (b.Y-a.Y)*(c.Y-b.Y) > 0
	}
	if a.Y == b.Y && b.Y == c.Y {
		return (b.X-a.X)*(c.X-b.X) > 0
	}
	return false
}

// Route builds the path for an edge of the given type from a (leaving
// through sa) to b (entering through sb), passing through waypoints in
// order. Sides at waypoints are inferred from the neighbouring points.
func Route(kind RenderType, a Point, sa Side, b Point, sb Side, waypoints []Point, curvature float64) Path {
	if len(waypoints) == 0 {
		return leg(kind, a, sa, b, sb, curvature)
	}
	pts := make([]Point, 0, len(waypoints)+2)
	pts = append(pts, a)
	pts = append(pts, waypoints...)
	pts = append(pts, b)

	var out Path
	for i := 1; i < len(pts); i++ {
		from, to := pts[i-1], pts[i]
		startSide, endSide := sa, sb
		if i > 1 {
			startSide = InferSide(to.Sub(from))
		}
		if i < len(pts)-1 {
			endSide = InferSide(from.Sub(to))
		}
		out.append(leg(kind, from, startSide, to, endSide, curvature))
	}
	return out
}

func leg(kind RenderType, a Point, sa Side, b Point, sb Side, curvature float64) Path {
	switch kind {
	case Straight:
		return StraightPath(a, b)
	case Orthogonal:
		return OrthogonalPath(a, sa, b, sb)
	default:
		return CurvePath(a, sa, b, sb, curvature)
	}
}
