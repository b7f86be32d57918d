package game

import (
	"errors"
	"fmt"
	"math"
)

// Phase is the shot state of a course.
type Phase string

const (
	PhaseAtRest   Phase = "AT_REST"
	PhaseAiming   Phase = "AIMING"
	PhaseInFlight Phase = "IN_FLIGHT"
)

var (
	ErrNotAtRest = errors.New("ball is not at rest")
	ErrNotAiming = errors.New("no shot is being aimed")

	ErrPointerOutOfRange = errors.New("pointer out of range")
)

// ValidPointer reports whether p is a finite point inside the unit square
// pointer coordinates are normalized to.
func ValidPointer(p Vec2) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return false
	}
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Shot is the aim in progress: where the drag started and where it is now.
type Shot struct {
	Anchor Vec2 `json:"anchor"`
	End    Vec2 `json:"end"`
}

// Snapshot is the read-only view of a course handed to renderers.
type Snapshot struct {
	Phase        Phase   `json:"phase"`
	Terrain      Terrain `json:"terrain"`
	Ball         Vec2    `json:"ball"`
	BallVelocity Vec2    `json:"ball_velocity"`
	BallResting  bool    `json:"ball_resting"`
	BallRadius   float64 `json:"ball_radius"`
	Start        Vec2    `json:"start"`
	Aim          *Shot   `json:"aim,omitempty"`
	HoleBottom   Vec2    `json:"hole_bottom"`
	Shots        int     `json:"shots"`
	Completed    int     `json:"completed"`
	ShotsPerHole float64 `json:"shots_per_hole"`
	CourseNumber int     `json:"course_number"`
}

// Course owns the terrain, the ball and the score for one player, and is
// the only thing that mutates them.
type Course struct {
	params  Params
	gen     *TerrainGenerator
	engine  *PhysicsEngine
	terrain Terrain
	hole    Hole
	start   Vec2
	ball    Ball
	phase   Phase
	aim     *Shot

	shots         int
	completed     int
	shotsThisHole int
	courseNumber  int
}

// NewCourse generates the first hole with the given random source.
func NewCourse(rng Rand, params Params) (*Course, error) {
	c := &Course{
		params: params,
		gen:    NewTerrainGenerator(rng, params),
	}
	if err := c.newHole(); err != nil {
		return nil, err
	}
	return c, nil
}

// newHole replaces the terrain wholesale and puts the ball on the tee.
func (c *Course) newHole() error {
	land := Truncate(c.gen.Landscape())

	tee, err := GroundAt(StartX, land)
	if err != nil {
		return fmt.Errorf("tee placement: %w", err)
	}
	start := tee.Plus(Vec2{Y: StartLift})

	terrain, hole, err := c.gen.PlaceHole(land)
	if err != nil {
		return fmt.Errorf("hole placement: %w", err)
	}

	c.setCourse(terrain, hole, start)
	c.courseNumber++
	return nil
}

func (c *Course) setCourse(terrain Terrain, hole Hole, start Vec2) {
	c.terrain = terrain
	c.hole = hole
	c.start = start
	c.engine = NewPhysicsEngine(terrain, start, c.params)
	c.ball = Ball{Position: start, Resting: true}
	c.phase = PhaseAtRest
	c.aim = nil
	c.shotsThisHole = 0
}

// AimStart begins aiming from p. Only a resting ball can be aimed.
func (c *Course) AimStart(p Vec2) error {
	if c.phase != PhaseAtRest {
		return ErrNotAtRest
	}
	if !ValidPointer(p) {
		return ErrPointerOutOfRange
	}
	c.aim = &Shot{Anchor: p, End: p}
	c.phase = PhaseAiming
	return nil
}

// AimUpdate moves the live end of the aim.
func (c *Course) AimUpdate(p Vec2) error {
	if c.phase != PhaseAiming {
		return ErrNotAiming
	}
	if !ValidPointer(p) {
		return ErrPointerOutOfRange
	}
	c.aim.End = p
	return nil
}

// Release fires the ball with a velocity proportional to the drag from
// the anchor to p, and returns that velocity.
func (c *Course) Release(p Vec2) (Vec2, error) {
	if c.phase != PhaseAiming {
		return Vec2{}, ErrNotAiming
	}
	if !ValidPointer(p) {
		return Vec2{}, ErrPointerOutOfRange
	}
	v := p.Minus(c.aim.Anchor).Times(c.params.ShotStrength)
	c.ball.Velocity = v
	c.ball.Resting = false
	c.aim = nil
	c.shots++
	c.shotsThisHole++
	c.phase = PhaseInFlight
	return v, nil
}

// Tick advances the course by elapsedMs milliseconds of host time. A ball
// in flight is integrated; a resting ball in the hole completes the hole
// and a new course is generated.
func (c *Course) Tick(elapsedMs float64) ([]CollisionEvent, error) {
	var events []CollisionEvent
	if c.phase == PhaseInFlight {
		events = c.engine.Step(&c.ball, elapsedMs)
		if c.ball.Resting {
			c.phase = PhaseAtRest
		}
	}

	if c.ball.Resting && InHole(c.ball.Position, c.hole, c.params) {
		c.completed++
		events = append(events, CollisionEvent{
			Type:     EventHoleCompleted,
			Position: c.ball.Position,
			Hole:     c.completed,
			Shots:    c.shotsThisHole,
		})
		if err := c.newHole(); err != nil {
			return events, err
		}
	}
	return events, nil
}

// Snapshot copies out everything a renderer needs. The terrain slice is
// shared: it is replaced, never edited, when the hole changes.
func (c *Course) Snapshot() Snapshot {
	s := Snapshot{
		Phase:        c.phase,
		Terrain:      c.terrain,
		Ball:         c.ball.Position,
		BallVelocity: c.ball.Velocity,
		BallResting:  c.ball.Resting,
		BallRadius:   c.params.BallRadius,
		Start:        c.start,
		HoleBottom:   c.hole.Bottom,
		Shots:        c.shots,
		Completed:    c.completed,
		ShotsPerHole: float64(c.shots) / float64(c.completed+1),
		CourseNumber: c.courseNumber,
	}
	if c.aim != nil {
		aim := *c.aim
		s.Aim = &aim
	}
	return s
}

func (c *Course) Phase() Phase     { return c.phase }
func (c *Course) Ball() Ball       { return c.ball }
func (c *Course) Terrain() Terrain { return c.terrain }
func (c *Course) Hole() Hole       { return c.hole }
func (c *Course) Start() Vec2      { return c.start }
func (c *Course) Shots() int       { return c.shots }
func (c *Course) Completed() int   { return c.completed }
