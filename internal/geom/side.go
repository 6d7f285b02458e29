package geom

import (
	"fmt"
	"math"
)

// Side names the face of a node a handle protrudes from.
type Side int

const (
	Right Side = iota
	Bottom
	Left
	Top
)

var sideNames = [...]string{"right", "bottom", "left", "top"}

func (s Side) String() string {
	if s < Right || s > Top {
		return "unknown"
	}
	return sideNames[s]
}

// Vector returns the unit vector pointing out of the node through s.
func (s Side) Vector() Point {
	switch s {
	case Left:
		return Point{-1, 0}
	case Top:
		return Point{0, -1}
	case Bottom:
		return Point{0, 1}
	default:
		return Point{1, 0}
	}
}

func (s Side) Horizontal() bool { return s == Left || s == Right }

func (s Side) Opposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	default:
		return Top
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	for i, name := range sideNames {
		if name == string(b) {
			*s = Side(i)
			return nil
		}
	}
	return fmt.Errorf("geom: unknown side %q", b)
}

// InferSide picks the side whose direction best matches delta. The dominant
// axis wins; ties go to the horizontal axis.
func InferSide(delta Point) Side {
	if math.Abs(delta.X) >= math.Abs(delta.Y) {
		if delta.X < 0 {
			return Left
		}
		return Right
	}
	if delta.Y < 0 {
		return Top
	}
	return Bottom
}

// FacingSides returns the sides of two rectangles that face each other,
// choosing the axis along which their centers are farther apart.
func FacingSides(from, to Rect) (Side, Side) {
	s := InferSide(to.Center().Sub(from.Center()))
	return s, s.Opposite()
}

// Anchor returns the midpoint of side s on r.
func Anchor(r Rect, s Side) Point {
	c := r.Center()
	switch s {
	case Left:
		return Point{r.X, c.Y}
	case Right:
		return Point{r.X + r.W, c.Y}
	case Top:
		return Point{c.X, r.Y}
	default:
		return Point{c.X, r.Y + r.H}
	}
}
