package game

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by ground lookups outside the terrain's x span.
// Course generation keeps the tee, the ball and the hole inside the span, so
// seeing it means truncation went wrong.
var ErrOutOfRange = errors.New("x outside terrain")

// Segment is a straight piece of ground between two adjacent terrain points.
type Segment struct {
	A Vec2 `json:"a"`
	B Vec2 `json:"b"`
}

// Direction is the vector from A to B.
func (s Segment) Direction() Vec2 {
	return s.B.Minus(s.A)
}

// IsDegenerate reports a zero-length segment.
func (s Segment) IsDegenerate() bool {
	return s.A.IsEqualTo(s.B)
}

// GroundAt returns the point on the terrain directly above or below x, by
// linear interpolation on the first segment whose right end lies past x.
func GroundAt(x float64, terrain Terrain) (Vec2, error) {
	if len(terrain) < 2 || x < terrain[0].X {
		return Vec2{}, fmt.Errorf("ground at %.4f: %w", x, ErrOutOfRange)
	}
	i := 1
	for i < len(terrain) && terrain[i].X <= x {
		i++
	}
	if i == len(terrain) {
		return Vec2{}, fmt.Errorf("ground at %.4f: %w", x, ErrOutOfRange)
	}
	p, q := terrain[i-1], terrain[i]
	y := p.Y + (x-p.X)/(q.X-p.X)*(q.Y-p.Y)
	return Vec2{X: x, Y: y}, nil
}

// DistanceToGround is the vertical distance between pos and the terrain.
func DistanceToGround(pos Vec2, terrain Terrain) (float64, error) {
	g, err := GroundAt(pos.X, terrain)
	if err != nil {
		return 0, err
	}
	return pos.DistanceTo(g), nil
}

// orientation is the signed area of the triangle (a, b, c): positive when
// c lies left of a->b, negative when right, zero when collinear.
func orientation(a, b, c Vec2) float64 {
	return b.Minus(a).Cross(c.Minus(a))
}

// SegmentsIntersect reports whether two segments cross as open segments.
// Touching at an endpoint, collinear overlap and zero-length segments all
// count as no intersection.
func SegmentsIntersect(s1, s2 Segment) bool {
	if s1.IsDegenerate() || s2.IsDegenerate() {
		return false
	}
	o1 := orientation(s1.A, s1.B, s2.A)
	o2 := orientation(s1.A, s1.B, s2.B)
	o3 := orientation(s2.A, s2.B, s1.A)
	o4 := orientation(s2.A, s2.B, s1.B)
	return opposite(o1, o2) && opposite(o3, o4)
}

func opposite(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}
