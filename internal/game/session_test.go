package game

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type recordingBroadcaster struct {
	mu        sync.Mutex
	snapshots []Snapshot
	events    []CollisionEvent
}

func (b *recordingBroadcaster) BroadcastSnapshot(token string, snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots = append(b.snapshots, snap)
}

func (b *recordingBroadcaster) BroadcastEvents(token string, events []CollisionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
}

func (b *recordingBroadcaster) last() (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.snapshots) == 0 {
		return Snapshot{}, false
	}
	return b.snapshots[len(b.snapshots)-1], true
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSessionSubmitQueue(t *testing.T) {
	s, err := NewSession("id", "tok", 1, DefaultParams(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(Input{Type: InputAimStart}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := s.Submit(Input{Type: InputAimUpdate}); !errors.Is(err, ErrInputQueueFull) {
		t.Fatalf("second submit: expected ErrInputQueueFull, got %v", err)
	}

	s.Stop(StatusExpired)
	s.Stop(StatusEnded)
	if s.Status() != StatusExpired {
		t.Fatalf("status = %s, want first stop to win", s.Status())
	}
	if err := s.Submit(Input{Type: InputAimStart}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("submit after stop: %v", err)
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestSessionSubmitRacingStop(t *testing.T) {
	s, err := NewSession("id", "tok", 1, DefaultParams(), 4096)
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	start := make(chan struct{})
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				if err := s.Submit(Input{Type: InputAimUpdate}); err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				} else if !errors.Is(err, ErrSessionClosed) {
					t.Errorf("submit: %v", err)
					return
				}
			}
		}()
	}
	close(start)
	s.Stop(StatusEnded)
	wg.Wait()

	if accepted > len(s.inputs) {
		t.Fatalf("%d inputs accepted but only %d queued", accepted, len(s.inputs))
	}
	for i := 0; i < 10; i++ {
		if err := s.Submit(Input{Type: InputAimUpdate}); !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("submit after stop returned %v", err)
		}
	}
}

func TestSessionSameSeedSameCourse(t *testing.T) {
	a, err := NewSession("a", "a", 77, DefaultParams(), 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSession("b", "b", 77, DefaultParams(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Snapshot().Terrain, b.Snapshot().Terrain) {
		t.Fatal("same seed produced different terrain")
	}
}

func TestSessionRunAppliesInputsAndPublishes(t *testing.T) {
	s, err := NewSession("id", "tok", 5, DefaultParams(), 8)
	if err != nil {
		t.Fatal(err)
	}
	b := &recordingBroadcaster{}
	s.broadcaster = b

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, 5*time.Millisecond)

	anchor := NewVec2(0.2, 0.5)
	for _, in := range []Input{
		{Type: InputAimStart, Point: anchor},
		{Type: InputAimUpdate, Point: NewVec2(0.21, 0.5)},
		{Type: InputRelease, Point: NewVec2(0.21, 0.51)},
	} {
		if err := s.Submit(in); err != nil {
			t.Fatalf("submit %s: %v", in.Type, err)
		}
	}

	waitFor(t, "shot to be published", func() bool {
		snap, ok := b.last()
		return ok && snap.Shots == 1
	})
	waitFor(t, "flight ticks", func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.snapshots) > 3
	})

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop on cancel")
	}
	if s.Status() != StatusEnded {
		t.Fatalf("status = %s", s.Status())
	}
}

func TestSessionIgnoresOutOfPhaseInput(t *testing.T) {
	s, err := NewSession("id", "tok", 5, DefaultParams(), 8)
	if err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()
	s.apply(Input{Type: InputRelease, Point: NewVec2(0.5, 0.5)})
	s.apply(Input{Type: "kick", Point: NewVec2(0.5, 0.5)})
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatal("rejected input changed the published snapshot")
	}
}
