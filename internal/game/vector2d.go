package game

import "math"

// Vec2 is a 2D vector used both as a position and as a displacement.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product (signed).
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

// Normalize returns the unit vector in the direction of v.
// The zero vector has no direction and normalizes to itself; callers that
// need a direction must check IsZero first.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rotate turns v counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec2{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
	}
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// AngleBetween returns the unsigned angle in radians, in [0, π].
func (v Vec2) AngleBetween(o Vec2) float64 {
	if v.IsZero() || o.IsZero() {
		return 0
	}
	return math.Acos(clampUnit(v.Normalize().Dot(o.Normalize())))
}

// SignedAngleBetween returns the counter-clockwise angle from v to o in
// radians. Only angles within [-π/2, π/2] are reported faithfully; wider
// angles fold back into that range.
func (v Vec2) SignedAngleBetween(o Vec2) float64 {
	if v.IsZero() || o.IsZero() {
		return 0
	}
	return math.Asin(clampUnit(v.Normalize().Cross(o.Normalize())))
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) IsEqualTo(o Vec2) bool {
	return v.X == o.X && v.Y == o.Y
}

// clampUnit keeps acos/asin arguments inside [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
