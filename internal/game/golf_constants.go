package game

// Course, hole and physics constants. Units are normalized play-area units:
// the visible course spans x in [0, 1] and y in [0, 1].
const (
	MinSegLen       = 0.025
	MaxSegLen       = 0.15
	MinGroundHeight = 0.1
	MaxGroundHeight = 0.45
	FlatChance      = 0.6

	AnchorHeight = 0.4   // height of the first terrain point at x=0
	StartX       = 0.1   // tee position
	StartLift    = 0.001 // tee is placed this far above the ground

	HoleMinX      = 0.7
	HoleMaxX      = 0.9
	HoleFlatWidth = 0.01
	HalfHoleWidth = 0.02
	HoleWidth     = HoleFlatWidth + HalfHoleWidth
	HoleDepth     = 0.05

	GravityY     = -0.2
	BallRadius   = 0.01
	BounceLoss   = 0.3
	ShotStrength = 1.5
	GameSpeed    = 0.0022 // simulation units per elapsed millisecond

	RestSpeed     = 0.01
	RestClearance = 0.001

	MaxBounces = 20 // reflections resolved within a single tick
)

// Params carries every tunable constant so a course can be simulated with
// overrides loaded from a tuning file. Zero values are never valid; use
// DefaultParams and override individual fields.
type Params struct {
	MinSegLen       float64 `toml:"min_seg_len" json:"min_seg_len"`
	MaxSegLen       float64 `toml:"max_seg_len" json:"max_seg_len"`
	MinGroundHeight float64 `toml:"min_ground_height" json:"min_ground_height"`
	MaxGroundHeight float64 `toml:"max_ground_height" json:"max_ground_height"`
	FlatChance      float64 `toml:"flat_chance" json:"flat_chance"`

	HoleMinX      float64 `toml:"hole_min_x" json:"hole_min_x"`
	HoleMaxX      float64 `toml:"hole_max_x" json:"hole_max_x"`
	HoleFlatWidth float64 `toml:"hole_flat_width" json:"hole_flat_width"`
	HalfHoleWidth float64 `toml:"half_hole_width" json:"half_hole_width"`
	HoleDepth     float64 `toml:"hole_depth" json:"hole_depth"`

	GravityY     float64 `toml:"gravity_y" json:"gravity_y"`
	BallRadius   float64 `toml:"ball_radius" json:"ball_radius"`
	BounceLoss   float64 `toml:"bounce_loss" json:"bounce_loss"`
	ShotStrength float64 `toml:"shot_strength" json:"shot_strength"`
	GameSpeed    float64 `toml:"game_speed" json:"game_speed"`

	RestSpeed     float64 `toml:"rest_speed" json:"rest_speed"`
	RestClearance float64 `toml:"rest_clearance" json:"rest_clearance"`
	MaxBounces    int     `toml:"max_bounces" json:"max_bounces"`
}

// DefaultParams returns the standard course tuning.
func DefaultParams() Params {
	return Params{
		MinSegLen:       MinSegLen,
		MaxSegLen:       MaxSegLen,
		MinGroundHeight: MinGroundHeight,
		MaxGroundHeight: MaxGroundHeight,
		FlatChance:      FlatChance,

		HoleMinX:      HoleMinX,
		HoleMaxX:      HoleMaxX,
		HoleFlatWidth: HoleFlatWidth,
		HalfHoleWidth: HalfHoleWidth,
		HoleDepth:     HoleDepth,

		GravityY:     GravityY,
		BallRadius:   BallRadius,
		BounceLoss:   BounceLoss,
		ShotStrength: ShotStrength,
		GameSpeed:    GameSpeed,

		RestSpeed:     RestSpeed,
		RestClearance: RestClearance,
		MaxBounces:    MaxBounces,
	}
}

// HoleWidth is the half-span around the hole center kept free of terrain.
func (p Params) HoleWidth() float64 {
	return p.HoleFlatWidth + p.HalfHoleWidth
}

// Gravity is the constant downward acceleration.
func (p Params) Gravity() Vec2 {
	return Vec2{Y: p.GravityY}
}
