package game

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecApprox(a, b Vec2, tol float64) bool {
	return approx(a.X, b.X, tol) && approx(a.Y, b.Y, tol)
}

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(1, 2)
	b := NewVec2(3, -4)

	if got := a.Plus(b); got != NewVec2(4, -2) {
		t.Errorf("Plus = %+v", got)
	}
	if got := a.Minus(b); got != NewVec2(-2, 6) {
		t.Errorf("Minus = %+v", got)
	}
	if got := a.Times(2); got != NewVec2(2, 4) {
		t.Errorf("Times = %+v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Cross(b); got != -10 {
		t.Errorf("Cross = %v", got)
	}
	if got := b.Magnitude(); got != 5 {
		t.Errorf("Magnitude = %v", got)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := (Vec2{}).Normalize(); !got.IsZero() {
		t.Fatalf("zero vector normalized to %+v", got)
	}
	if got := NewVec2(3, 4).Normalize(); !vecApprox(got, NewVec2(0.6, 0.8), eps) {
		t.Fatalf("Normalize = %+v", got)
	}
}

func TestRotate(t *testing.T) {
	got := NewVec2(1, 0).Rotate(math.Pi / 2)
	if !vecApprox(got, NewVec2(0, 1), eps) {
		t.Fatalf("quarter turn of x axis = %+v", got)
	}
	if got := NewVec2(1, 0).LeftNormal(); got != NewVec2(0, 1) {
		t.Fatalf("LeftNormal = %+v", got)
	}
}

func TestAngles(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec2
		unsigned float64
		signed   float64
	}{
		{"same direction", NewVec2(1, 1), NewVec2(2, 2), 0, 0},
		{"counter-clockwise", NewVec2(1, 0), NewVec2(1, 1), math.Pi / 4, math.Pi / 4},
		{"clockwise", NewVec2(1, 0), NewVec2(1, -1), math.Pi / 4, -math.Pi / 4},
		{"perpendicular", NewVec2(0, 1), NewVec2(-1, 0), math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.AngleBetween(tt.b); !approx(got, tt.unsigned, 1e-7) {
				t.Errorf("AngleBetween = %v, want %v", got, tt.unsigned)
			}
			if got := tt.a.SignedAngleBetween(tt.b); !approx(got, tt.signed, 1e-7) {
				t.Errorf("SignedAngleBetween = %v, want %v", got, tt.signed)
			}
		})
	}
}

func TestAngleBetweenNeverNaN(t *testing.T) {
	// Normalized dot products of near-parallel vectors can land just past 1.
	a := NewVec2(0.1, 0.7)
	b := NewVec2(0.1*3, 0.7*3)
	if got := a.AngleBetween(b); math.IsNaN(got) {
		t.Fatal("AngleBetween returned NaN")
	}
	if got := a.AngleBetween(Vec2{}); got != 0 {
		t.Fatalf("angle to zero vector = %v", got)
	}
}
