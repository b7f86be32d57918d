package game

import (
	"testing"
)

func TestPlaceHoleClearsNeighbourhood(t *testing.T) {
	p := DefaultParams()
	for seed := int64(1); seed <= 200; seed++ {
		g := seededGenerator(seed)
		land := Truncate(g.Landscape())

		terrain, hole, err := g.PlaceHole(land)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		cx := hole.Position.X
		if cx < HoleMinX || cx >= HoleMaxX {
			t.Fatalf("seed %d: hole x %v outside range", seed, cx)
		}
		if !approx(hole.Bottom.Y, hole.Position.Y-HoleDepth, eps) || hole.Bottom.X != cx {
			t.Fatalf("seed %d: bottom %+v for hole at %+v", seed, hole.Bottom, hole.Position)
		}

		start := indexOf(terrain, hole.Points[0])
		if start < 0 {
			t.Fatalf("seed %d: hole points missing from terrain", seed)
		}
		for i, hp := range hole.Points {
			if terrain[start+i] != hp {
				t.Fatalf("seed %d: hole point %d not contiguous", seed, i)
			}
		}

		for i, pt := range terrain {
			if i >= start && i < start+len(hole.Points) {
				continue
			}
			if pt.X > cx-p.HoleWidth() && pt.X < cx+p.HoleWidth() {
				t.Fatalf("seed %d: terrain point %+v within hole width of %v", seed, pt, cx)
			}
		}

		for i := 1; i < len(terrain); i++ {
			if terrain[i].X < terrain[i-1].X {
				t.Fatalf("seed %d: x decreases at %d", seed, i)
			}
			inWall := i > start && i < start+len(hole.Points)
			if !inWall && terrain[i].X == terrain[i-1].X {
				t.Fatalf("seed %d: repeated x outside the notch at %d", seed, i)
			}
		}

		if _, err := GroundAt(StartX, terrain); err != nil {
			t.Fatalf("seed %d: tee lookup after splice: %v", seed, err)
		}
		if terrain[len(terrain)-1].X < 1 {
			t.Fatalf("seed %d: splice lost coverage", seed)
		}
	}
}

func TestSpliceHoleTrimsRepeatedly(t *testing.T) {
	p := DefaultParams()
	terrain := Terrain{
		{0, 0.3}, {0.7, 0.3},
		{0.78, 0.3}, {0.79, 0.3}, {0.8, 0.3}, // within width before the center
		{0.81, 0.3}, {0.825, 0.3}, // within width after the center
		{0.9, 0.3}, {1.05, 0.3},
	}
	hole := NewHole(NewVec2(0.8, 0.3), p)
	out := SpliceHole(terrain, hole, p.HoleWidth())

	want := []Vec2{{0, 0.3}, {0.7, 0.3}}
	want = append(want, hole.Points[:]...)
	want = append(want, Vec2{0.9, 0.3}, Vec2{1.05, 0.3})
	if len(out) != len(want) {
		t.Fatalf("got %d points, want %d: %+v", len(out), len(want), out)
	}
	for i := range want {
		if !vecApprox(out[i], want[i], eps) {
			t.Fatalf("point %d = %+v, want %+v", i, out[i], want[i])
		}
	}
	if len(terrain) != 9 {
		t.Fatal("splice modified its input")
	}
}

func TestHolePattern(t *testing.T) {
	h := NewHole(NewVec2(0.8, 0.3), DefaultParams())
	want := [6]Vec2{
		{0.77, 0.3}, {0.78, 0.3}, {0.78, 0.25}, {0.82, 0.25}, {0.82, 0.3}, {0.83, 0.3},
	}
	for i := range want {
		if !vecApprox(h.Points[i], want[i], eps) {
			t.Errorf("point %d = %+v, want %+v", i, h.Points[i], want[i])
		}
	}
}

func indexOf(t Terrain, p Vec2) int {
	for i, q := range t {
		if q == p {
			return i
		}
	}
	return -1
}
