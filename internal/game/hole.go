package game

// Hole is the goal notch once it has been cut into a course.
type Hole struct {
	Position Vec2    `json:"position"` // ground point at the hole center
	Bottom   Vec2    `json:"bottom"`   // capture target
	Points   [6]Vec2 `json:"points"`
}

// HolePattern returns the notch relative to the hole center: outer lip,
// inner lip, bottom left, bottom right, inner lip, outer lip.
func HolePattern(p Params) [6]Vec2 {
	return [6]Vec2{
		{X: -p.HoleFlatWidth - p.HalfHoleWidth, Y: 0},
		{X: -p.HalfHoleWidth, Y: 0},
		{X: -p.HalfHoleWidth, Y: -p.HoleDepth},
		{X: p.HalfHoleWidth, Y: -p.HoleDepth},
		{X: p.HalfHoleWidth, Y: 0},
		{X: p.HoleFlatWidth + p.HalfHoleWidth, Y: 0},
	}
}

// NewHole builds the notch centered on the ground point pos.
func NewHole(pos Vec2, p Params) Hole {
	h := Hole{
		Position: pos,
		Bottom:   Vec2{X: pos.X, Y: pos.Y - p.HoleDepth},
	}
	for i, off := range HolePattern(p) {
		h.Points[i] = pos.Plus(off)
	}
	return h
}

// PlaceHole picks a hole x, finds the ground there and splices the notch
// into the (already truncated) terrain.
func (g *TerrainGenerator) PlaceHole(terrain Terrain) (Terrain, Hole, error) {
	x := g.rand(g.params.HoleMinX, g.params.HoleMaxX)
	pos, err := GroundAt(x, terrain)
	if err != nil {
		return nil, Hole{}, err
	}
	hole := NewHole(pos, g.params)
	return SpliceHole(terrain, hole, g.params.HoleWidth()), hole, nil
}

// SpliceHole returns a new terrain with the hole points inserted at the
// hole center and every original point within width of the center removed.
func SpliceHole(terrain Terrain, hole Hole, width float64) Terrain {
	cx := hole.Position.X

	split := 0
	for split < len(terrain) && terrain[split].X <= cx {
		split++
	}
	before := terrain[:split]
	after := terrain[split:]

	for len(before) > 0 && before[len(before)-1].X+width >= cx {
		before = before[:len(before)-1]
	}
	for len(after) > 0 && after[0].X-width <= cx {
		after = after[1:]
	}

	out := make(Terrain, 0, len(before)+len(hole.Points)+len(after))
	out = append(out, before...)
	out = append(out, hole.Points[:]...)
	out = append(out, after...)
	return out
}
