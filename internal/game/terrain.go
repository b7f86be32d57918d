package game

import "math"

// Rand is the random source used for course generation. *math/rand.Rand
// satisfies it; seeding one makes course sequences reproducible.
type Rand interface {
	Float64() float64
}

// Terrain is the ground polyline, ordered by strictly increasing x.
// A Terrain value is never edited after it is handed to a Course; new holes
// build a new slice.
type Terrain []Vec2

// Segment returns the i-th segment, between points i and i+1.
func (t Terrain) Segment(i int) Segment {
	return Segment{A: t[i], B: t[i+1]}
}

// SegmentCount is the number of segments in the polyline.
func (t Terrain) SegmentCount() int {
	if len(t) < 2 {
		return 0
	}
	return len(t) - 1
}

// Clone returns an independent copy.
func (t Terrain) Clone() Terrain {
	out := make(Terrain, len(t))
	copy(out, t)
	return out
}

// TerrainGenerator produces random ground profiles.
type TerrainGenerator struct {
	rng    Rand
	params Params
}

func NewTerrainGenerator(rng Rand, params Params) *TerrainGenerator {
	return &TerrainGenerator{rng: rng, params: params}
}

// rand returns a uniform value in [min, max).
func (g *TerrainGenerator) rand(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func (g *TerrainGenerator) chance(p float64) bool {
	return g.rng.Float64() < p
}

// RandomPoint returns a relative step: X is an offset from the previous
// point, Y is an absolute height.
func (g *TerrainGenerator) RandomPoint() Vec2 {
	return Vec2{
		X: g.rand(g.params.MinSegLen, g.params.MaxSegLen),
		Y: g.rand(g.params.MinGroundHeight, g.params.MaxGroundHeight),
	}
}

// InsertFlatSegments follows each point, with probability flatChance, by an
// extra point at the same height and a fresh random x offset.
func (g *TerrainGenerator) InsertFlatSegments(flatChance float64, points []Vec2) []Vec2 {
	out := make([]Vec2, 0, 2*len(points))
	for _, p := range points {
		out = append(out, p)
		if g.chance(flatChance) {
			out = append(out, Vec2{X: g.rand(g.params.MinSegLen, g.params.MaxSegLen), Y: p.Y})
		}
	}
	return out
}

// Landscape builds a fresh untruncated course. The point count guarantees
// coverage past x=1 even if every step has the minimum length.
func (g *TerrainGenerator) Landscape() Terrain {
	n := int(math.Ceil(1/g.params.MinSegLen)) + 1
	raw := make([]Vec2, 0, n+1)
	raw = append(raw, Vec2{X: 0, Y: AnchorHeight})
	for i := 0; i < n; i++ {
		raw = append(raw, g.RandomPoint())
	}
	raw = g.InsertFlatSegments(g.params.FlatChance, raw)

	terrain := make(Terrain, len(raw))
	x := 0.0
	for i, p := range raw {
		x += p.X
		terrain[i] = Vec2{X: x, Y: p.Y}
	}
	return terrain
}

// Truncate keeps the points with x < 1 plus the first point past that, so
// the polyline spans the whole play area and no more.
func Truncate(t Terrain) Terrain {
	n := 0
	for n < len(t) && t[n].X < 1 {
		n++
	}
	if n < len(t) {
		n++
	}
	return t[:n].Clone()
}
