package game

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

// flatCourse returns a course on flat ground at y=0.2 with the tee at
// (0.1, 0.21) and the hole bottom far to the right.
func flatCourse(t *testing.T) *Course {
	t.Helper()
	p := DefaultParams()
	c, err := NewCourse(rand.New(rand.NewSource(42)), p)
	if err != nil {
		t.Fatalf("NewCourse: %v", err)
	}
	hole := Hole{Position: NewVec2(0.8, 0.2), Bottom: NewVec2(0.8, 0.15)}
	c.setCourse(flatTerrain(0.2), hole, NewVec2(0.1, 0.21))
	return c
}

func shoot(t *testing.T, c *Course, v Vec2) {
	t.Helper()
	anchor := NewVec2(0.5, 0.5)
	if err := c.AimStart(anchor); err != nil {
		t.Fatalf("AimStart: %v", err)
	}
	if _, err := c.Release(anchor.Plus(v.Times(1 / c.params.ShotStrength))); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

// playOut ticks until the ball rests and returns every event.
func playOut(t *testing.T, c *Course) []CollisionEvent {
	t.Helper()
	var all []CollisionEvent
	for i := 0; i < 10000; i++ {
		events, err := c.Tick(frameMs)
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		all = append(all, events...)
		if c.Phase() == PhaseAtRest {
			return all
		}
	}
	t.Fatalf("ball never came to rest: %+v", c.Ball())
	return nil
}

func TestNewCourseStartsAtRestOnTee(t *testing.T) {
	c, err := NewCourse(rand.New(rand.NewSource(3)), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if c.Phase() != PhaseAtRest || !c.Ball().Resting {
		t.Fatalf("phase %s, ball %+v", c.Phase(), c.Ball())
	}
	g, err := GroundAt(StartX, c.Terrain())
	if err != nil {
		t.Fatal(err)
	}
	if c.Start().X != StartX || !approx(c.Start().Y, g.Y+StartLift, eps) {
		t.Fatalf("tee %+v, ground %+v", c.Start(), g)
	}
	if c.Ball().Position != c.Start() {
		t.Fatalf("ball %+v not on tee %+v", c.Ball().Position, c.Start())
	}
	if snap := c.Snapshot(); snap.CourseNumber != 1 || snap.Shots != 0 || snap.Completed != 0 {
		t.Fatalf("initial snapshot %+v", snap)
	}
}

func TestShotFlightLandsOnFlatGround(t *testing.T) {
	c := flatCourse(t)
	shoot(t, c, NewVec2(0.03, 0.05))

	events := playOut(t, c)
	ball := c.Ball()
	if !ball.Resting || !ball.Velocity.IsZero() {
		t.Fatalf("ball not settled: %+v", ball)
	}
	if !approx(ball.Position.Y, 0.2, 0.001) {
		t.Fatalf("rest height %v, want 0.2±0.001", ball.Position.Y)
	}
	if ball.Position.X <= 0.1 || ball.Position.X >= 1 {
		t.Fatalf("rest x %v outside (0.1, 1)", ball.Position.X)
	}
	if !hasEvent(events, EventBounce) || !hasEvent(events, EventRest) {
		t.Fatalf("expected bounce and rest events, got %d events", len(events))
	}
}

func TestStrongShotLeavesPlayAreaAndResets(t *testing.T) {
	c := flatCourse(t)
	shoot(t, c, NewVec2(0.3, 0.5))

	events := playOut(t, c)
	if !hasEvent(events, EventOutOfBounds) {
		t.Fatalf("expected out_of_bounds, got %+v", events)
	}
	ball := c.Ball()
	if ball.Position != c.Start() || !ball.Velocity.IsZero() || !ball.Resting {
		t.Fatalf("ball not back on tee: %+v", ball)
	}
	if c.Shots() != 1 {
		t.Fatalf("shots = %d, want 1", c.Shots())
	}
}

func TestOutOfBoundsMidFlight(t *testing.T) {
	c := flatCourse(t)
	shoot(t, c, NewVec2(-0.1, 0.1))
	c.ball.Position = NewVec2(-0.01, 0.3)

	if _, err := c.Tick(frameMs); err != nil {
		t.Fatal(err)
	}
	ball := c.Ball()
	if ball.Position != c.Start() || ball.Velocity != (Vec2{}) || !ball.Resting {
		t.Fatalf("ball = %+v", ball)
	}
	if c.Phase() != PhaseAtRest {
		t.Fatalf("phase = %s", c.Phase())
	}
}

func TestCaptureCompletesHole(t *testing.T) {
	c := flatCourse(t)
	oldTerrain := c.Terrain()
	c.shots, c.shotsThisHole = 4, 3
	c.ball = Ball{Position: c.Hole().Bottom.Plus(NewVec2(0.015, 0)), Resting: true}

	events, err := c.Tick(frameMs)
	if err != nil {
		t.Fatal(err)
	}
	if c.Completed() != 1 {
		t.Fatalf("completed = %d, want 1", c.Completed())
	}
	if len(events) != 1 || events[0].Type != EventHoleCompleted || events[0].Hole != 1 || events[0].Shots != 3 {
		t.Fatalf("events = %+v", events)
	}
	if reflect.DeepEqual(c.Terrain(), oldTerrain) {
		t.Fatal("terrain was not regenerated")
	}
	if c.Ball().Position != c.Start() || c.Phase() != PhaseAtRest {
		t.Fatalf("ball %+v phase %s after capture", c.Ball(), c.Phase())
	}
	snap := c.Snapshot()
	if snap.CourseNumber != 2 || snap.Shots != 4 {
		t.Fatalf("snapshot %+v", snap)
	}
	if !approx(snap.ShotsPerHole, 2, eps) {
		t.Fatalf("shots per hole = %v", snap.ShotsPerHole)
	}

	// The next tick on the fresh course must not complete again.
	if _, err := c.Tick(frameMs); err != nil {
		t.Fatal(err)
	}
	if c.Completed() != 1 {
		t.Fatalf("completed twice: %d", c.Completed())
	}
}

func TestNearMissDoesNotComplete(t *testing.T) {
	c := flatCourse(t)
	c.ball = Ball{Position: c.Hole().Bottom.Plus(NewVec2(0.025, 0)), Resting: true}
	before := c.Snapshot()

	events, err := c.Tick(frameMs)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 || c.Completed() != 0 {
		t.Fatalf("unexpected completion: %+v", events)
	}
	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed:\n%+v\n%+v", before, after)
	}
}

func TestReleaseVelocity(t *testing.T) {
	c := flatCourse(t)
	if err := c.AimStart(NewVec2(0.2, 0.5)); err != nil {
		t.Fatal(err)
	}
	if c.Phase() != PhaseAiming {
		t.Fatalf("phase = %s", c.Phase())
	}
	if err := c.AimUpdate(NewVec2(0.25, 0.55)); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()
	if snap.Aim == nil || snap.Aim.Anchor != NewVec2(0.2, 0.5) || snap.Aim.End != NewVec2(0.25, 0.55) {
		t.Fatalf("aim = %+v", snap.Aim)
	}

	v, err := c.Release(NewVec2(0.3, 0.6))
	if err != nil {
		t.Fatal(err)
	}
	if !vecApprox(v, NewVec2(0.15, 0.15), 1e-12) {
		t.Fatalf("velocity = %+v, want (0.15, 0.15)", v)
	}
	if c.Phase() != PhaseInFlight || c.Ball().Resting || c.Shots() != 1 {
		t.Fatalf("after release: phase %s ball %+v shots %d", c.Phase(), c.Ball(), c.Shots())
	}
	if c.Snapshot().Aim != nil {
		t.Fatal("aim still exposed after release")
	}
}

func TestInputsInWrongPhase(t *testing.T) {
	c := flatCourse(t)

	if err := c.AimUpdate(NewVec2(0.1, 0.1)); !errors.Is(err, ErrNotAiming) {
		t.Fatalf("AimUpdate at rest: %v", err)
	}
	if _, err := c.Release(NewVec2(0.1, 0.1)); !errors.Is(err, ErrNotAiming) {
		t.Fatalf("Release at rest: %v", err)
	}

	c.AimStart(NewVec2(0.2, 0.2))
	if err := c.AimStart(NewVec2(0.3, 0.3)); !errors.Is(err, ErrNotAtRest) {
		t.Fatalf("AimStart while aiming: %v", err)
	}
	c.Release(NewVec2(0.25, 0.25))

	if err := c.AimStart(NewVec2(0.3, 0.3)); !errors.Is(err, ErrNotAtRest) {
		t.Fatalf("AimStart in flight: %v", err)
	}
	if c.Shots() != 1 {
		t.Fatalf("rejected inputs changed shots: %d", c.Shots())
	}
}

func TestPointerOutsideUnitSquareRejected(t *testing.T) {
	bad := []struct {
		name string
		p    Vec2
	}{
		{"huge y", NewVec2(0.2, 1e300)},
		{"negative x", NewVec2(-0.01, 0.5)},
		{"x above one", NewVec2(1.5, 0.5)},
		{"nan", NewVec2(math.NaN(), 0.5)},
		{"inf", NewVec2(0.5, math.Inf(1))},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			c := flatCourse(t)
			if err := c.AimStart(tt.p); !errors.Is(err, ErrPointerOutOfRange) {
				t.Fatalf("AimStart: %v", err)
			}
			if c.Phase() != PhaseAtRest {
				t.Fatalf("phase after rejected aim_start: %s", c.Phase())
			}

			if err := c.AimStart(NewVec2(0.2, 0.2)); err != nil {
				t.Fatal(err)
			}
			if err := c.AimUpdate(tt.p); !errors.Is(err, ErrPointerOutOfRange) {
				t.Fatalf("AimUpdate: %v", err)
			}
			if _, err := c.Release(tt.p); !errors.Is(err, ErrPointerOutOfRange) {
				t.Fatalf("Release: %v", err)
			}
			if c.Phase() != PhaseAiming || c.Shots() != 0 {
				t.Fatalf("rejected release fired: phase %s shots %d", c.Phase(), c.Shots())
			}

			// the aim survives and a valid release still plays out
			if _, err := c.Release(NewVec2(0.21, 0.21)); err != nil {
				t.Fatal(err)
			}
			playOut(t, c)
			if c.Phase() != PhaseAtRest {
				t.Fatalf("ball never settled: %+v", c.Ball())
			}
		})
	}
}

func TestPointerOnUnitSquareEdgeAccepted(t *testing.T) {
	c := flatCourse(t)
	if err := c.AimStart(NewVec2(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := c.AimUpdate(NewVec2(1, 0)); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := flatCourse(t)
	c.AimStart(NewVec2(0.2, 0.2))
	snap := c.Snapshot()
	snap.Aim.End = NewVec2(9, 9)
	if c.Snapshot().Aim.End == NewVec2(9, 9) {
		t.Fatal("snapshot aim aliases course state")
	}
}

func TestSeededCoursesMatch(t *testing.T) {
	a, err := NewCourse(rand.New(rand.NewSource(11)), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCourse(rand.New(rand.NewSource(11)), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatal("same seed produced different courses")
	}
}
