package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/playmatatu/minigolf/internal/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrInputQueueFull  = errors.New("input queue full")
)

// InputType names a pointer event delivered by a client.
type InputType string

const (
	InputAimStart  InputType = "aim_start"
	InputAimUpdate InputType = "aim_update"
	InputRelease   InputType = "release"
)

// Input is a pointer event with coordinates normalized to [0,1]x[0,1].
type Input struct {
	Type  InputType `json:"type"`
	Point Vec2      `json:"point"`
}

// Broadcaster receives everything a session publishes. The websocket hub
// implements it.
type Broadcaster interface {
	BroadcastSnapshot(token string, snap Snapshot)
	BroadcastEvents(token string, events []CollisionEvent)
}

// Session hosts one Course. After Run starts, the course is touched only
// by the run goroutine; everyone else reads the published snapshot.
type Session struct {
	ID        string
	Token     string
	Seed      int64
	CreatedAt time.Time

	course *Course
	inputs chan Input
	done   chan struct{}
	once   sync.Once

	broadcaster Broadcaster
	onEvents    func(*Session, []CollisionEvent)

	mu           sync.RWMutex
	status       SessionStatus
	snapshot     Snapshot
	lastActivity time.Time
}

// NewSession generates the first hole from seed.
func NewSession(id, token string, seed int64, params Params, queueSize int) (*Session, error) {
	course, err := NewCourse(rand.New(rand.NewSource(seed)), params)
	if err != nil {
		return nil, err
	}
	if queueSize < 1 {
		queueSize = 1
	}
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Seed:         seed,
		CreatedAt:    now,
		course:       course,
		inputs:       make(chan Input, queueSize),
		done:         make(chan struct{}),
		status:       StatusActive,
		snapshot:     course.Snapshot(),
		lastActivity: now,
	}, nil
}

// Submit queues an input for the next loop iteration without blocking.
// An input that lands in the queue while the session stops is reported as
// ErrSessionClosed; the run loop never reads it.
func (s *Session) Submit(in Input) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inputs <- in:
		select {
		case <-s.done:
			return ErrSessionClosed
		default:
		}
		s.mu.Lock()
		s.lastActivity = time.Now()
		s.mu.Unlock()
		return nil
	default:
		return ErrInputQueueFull
	}
}

// Run drives the course until ctx is cancelled or the session is stopped.
// Inputs queued before a tick are always applied before that tick.
func (s *Session) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.Stop(StatusEnded)
			return
		case <-s.done:
			return
		case in := <-s.inputs:
			s.apply(in)
		case now := <-ticker.C:
			s.drainInputs()
			s.step(now.Sub(last))
			last = now
		}
	}
}

func (s *Session) drainInputs() {
	for {
		select {
		case in := <-s.inputs:
			s.apply(in)
		default:
			return
		}
	}
}

// apply feeds one input to the state machine. Inputs that do not fit the
// current phase are dropped.
func (s *Session) apply(in Input) {
	var err error
	switch in.Type {
	case InputAimStart:
		err = s.course.AimStart(in.Point)
	case InputAimUpdate:
		err = s.course.AimUpdate(in.Point)
	case InputRelease:
		_, err = s.course.Release(in.Point)
	default:
		err = errors.New("unknown input type")
	}
	if err != nil {
		log := logger.For("session")
		log.Debug().Str("session", s.Token).Str("input", string(in.Type)).Err(err).Msg("input ignored")
		return
	}
	s.publish(nil)
}

// step runs one physics tick of the given host time.
func (s *Session) step(elapsed time.Duration) {
	moving := s.course.Phase() == PhaseInFlight
	elapsedMs := float64(elapsed) / float64(time.Millisecond)

	events, err := s.course.Tick(elapsedMs)
	if err != nil {
		log := logger.For("session")
		log.Error().Str("session", s.Token).Err(err).Msg("course regeneration failed")
	}
	if moving || len(events) > 0 {
		s.publish(events)
	}
}

func (s *Session) publish(events []CollisionEvent) {
	snap := s.course.Snapshot()
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSnapshot(s.Token, snap)
		if len(events) > 0 {
			s.broadcaster.BroadcastEvents(s.Token, events)
		}
	}
	if s.onEvents != nil && len(events) > 0 {
		s.onEvents(s, events)
	}
}

// Stop ends the run loop. Later calls only keep the first status.
func (s *Session) Stop(status SessionStatus) {
	s.once.Do(func() {
		s.mu.Lock()
		s.status = status
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed once the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}
