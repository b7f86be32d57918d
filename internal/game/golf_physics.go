package game

import "math"

// Ball is the single ball on a course.
type Ball struct {
	Position Vec2 `json:"position"`
	Velocity Vec2 `json:"velocity"`
	Resting  bool `json:"resting"`
}

// Event types reported by the physics step and the course.
const (
	EventBounce        = "bounce"
	EventBounceLimit   = "bounce_limit"
	EventRest          = "rest"
	EventOutOfBounds   = "out_of_bounds"
	EventHoleCompleted = "hole_completed"
)

// CollisionEvent records something that happened during a tick, for
// transports and score keeping.
type CollisionEvent struct {
	Type     string  `json:"type"`
	Position Vec2    `json:"position"`
	Speed    float64 `json:"speed"`
	Segment  int     `json:"segment,omitempty"` // terrain segment index (bounce)
	Hole     int     `json:"hole,omitempty"`    // completed hole number (hole_completed)
	Shots    int     `json:"shots,omitempty"`   // shots taken on that hole (hole_completed)
}

// PhysicsEngine integrates ball flight over one course.
type PhysicsEngine struct {
	Terrain Terrain
	Start   Vec2
	Params  Params
	Events  []CollisionEvent
}

// NewPhysicsEngine creates an engine for a fixed terrain and tee position.
func NewPhysicsEngine(terrain Terrain, start Vec2, params Params) *PhysicsEngine {
	return &PhysicsEngine{
		Terrain: terrain,
		Start:   start,
		Params:  params,
		Events:  make([]CollisionEvent, 0),
	}
}

// ScaleDelta converts elapsed milliseconds into simulation time. Negative,
// zero and non-finite inputs yield ok=false: integration must be skipped.
func ScaleDelta(elapsedMs, gameSpeed float64) (dt float64, ok bool) {
	if math.IsNaN(elapsedMs) || math.IsInf(elapsedMs, 0) || elapsedMs <= 0 {
		return 0, false
	}
	return elapsedMs * gameSpeed, true
}

// OutOfBounds reports a position left or right of the play area.
func OutOfBounds(pos Vec2) bool {
	return pos.X <= 0 || pos.X >= 1
}

// Reflect mirrors v off a surface segment. The surface normal is the
// segment direction turned a quarter turn counter-clockwise; the reversed
// velocity is rotated by twice its signed angle to that normal.
func Reflect(v Vec2, s Segment) Vec2 {
	normal := s.Direction().LeftNormal()
	reversed := v.Invert()
	angle := reversed.SignedAngleBetween(normal)
	return reversed.Rotate(2 * angle)
}

// InHole reports whether a ball position is close enough to the hole
// bottom to count as holed.
func InHole(pos Vec2, hole Hole, p Params) bool {
	return pos.DistanceTo(hole.Bottom) <= p.HalfHoleWidth
}

// Step advances a moving ball by one tick. Resting balls are left
// untouched. A ball outside the play area is reset even when the time
// delta is invalid; otherwise an invalid delta skips the tick. The returned events are also kept in
// pe.Events until the next call.
func (pe *PhysicsEngine) Step(ball *Ball, elapsedMs float64) []CollisionEvent {
	pe.Events = make([]CollisionEvent, 0)
	if ball.Resting {
		return pe.Events
	}
	if OutOfBounds(ball.Position) {
		pe.Events = append(pe.Events, CollisionEvent{
			Type:     EventOutOfBounds,
			Position: ball.Position,
			Speed:    ball.Velocity.Magnitude(),
		})
		ball.Position = pe.Start
		ball.Velocity = Vec2{}
		ball.Resting = true
		return pe.Events
	}

	dt, ok := ScaleDelta(elapsedMs, pe.Params.GameSpeed)
	if !ok {
		return pe.Events
	}

	ball.Velocity = ball.Velocity.Plus(pe.Params.Gravity().Times(dt))

	v, resting := pe.resolveVelocity(ball.Position, ball.Velocity, dt)
	ball.Velocity = v
	if resting {
		ball.Resting = true
		pe.Events = append(pe.Events, CollisionEvent{Type: EventRest, Position: ball.Position})
	}
	ball.Position = ball.Position.Plus(v.Times(dt))
	return pe.Events
}

// resolveVelocity reflects the velocity off every terrain segment the
// tick's displacement would cross, until the path is clear or the bounce
// cap is reached. The start position stays fixed for the whole tick.
func (pe *PhysicsEngine) resolveVelocity(pos, vel Vec2, dt float64) (Vec2, bool) {
	for bounces := 0; ; bounces++ {
		path := Segment{A: pos, B: pos.Plus(vel.Times(dt))}
		idx, hit := pe.findCrossing(path)
		if !hit {
			if pe.atRest(pos, vel) {
				return Vec2{}, true
			}
			return vel, false
		}
		if bounces >= pe.Params.MaxBounces {
			pe.Events = append(pe.Events, CollisionEvent{
				Type:     EventBounceLimit,
				Position: pos,
				Speed:    vel.Magnitude(),
				Segment:  idx,
			})
			return vel, false
		}

		vel = Reflect(vel, pe.Terrain.Segment(idx)).Times(1 - pe.Params.BounceLoss)
		pe.Events = append(pe.Events, CollisionEvent{
			Type:     EventBounce,
			Position: pos,
			Speed:    vel.Magnitude(),
			Segment:  idx,
		})
	}
}

// findCrossing returns the first terrain segment, in terrain order, that
// the path crosses.
func (pe *PhysicsEngine) findCrossing(path Segment) (int, bool) {
	for i := 0; i < pe.Terrain.SegmentCount(); i++ {
		if SegmentsIntersect(path, pe.Terrain.Segment(i)) {
			return i, true
		}
	}
	return -1, false
}

// atRest needs both a slow ball and a ball touching the ground.
func (pe *PhysicsEngine) atRest(pos, vel Vec2) bool {
	if vel.Magnitude() >= pe.Params.RestSpeed {
		return false
	}
	d, err := DistanceToGround(pos, pe.Terrain)
	if err != nil {
		return false
	}
	return d < pe.Params.RestClearance
}
