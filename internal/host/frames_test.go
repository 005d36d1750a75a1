package host

import (
	"testing"
	"time"
)

func TestTickSchedulerDispatchesOwnFrames(t *testing.T) {
	s := NewTickScheduler(0)
	var stamps, deltas []float64
	s.Start(func(ts, delta float64) {
		stamps = append(stamps, ts)
		deltas = append(deltas, delta)
	})
	base := time.Unix(1000, 0)

	if cmd := s.Update(FrameMsg{ID: s.ID(), Gen: 1, Time: base}); cmd == nil {
		t.Fatalf("expected the next tick to be scheduled")
	}
	s.Update(FrameMsg{ID: s.ID(), Gen: 1, Time: base.Add(20 * time.Millisecond)})
	s.Update(FrameMsg{ID: s.ID() + 1, Gen: 1, Time: base.Add(40 * time.Millisecond)})

	if len(stamps) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(stamps))
	}
	if stamps[0] != 0 || stamps[1] != 20 {
		t.Fatalf("unexpected timestamps: %v", stamps)
	}
	if deltas[1] != 20 {
		t.Fatalf("unexpected delta: %v", deltas[1])
	}
}

func TestTickSchedulerCancelDropsInFlightTicks(t *testing.T) {
	s := NewTickScheduler(time.Millisecond)
	calls := 0
	cancel := s.Start(func(float64, float64) { calls++ })
	if s.Tick() == nil {
		t.Fatalf("expected a tick while active")
	}
	cancel()
	cancel()
	if s.Active() {
		t.Fatalf("expected scheduler inactive after cancel")
	}
	if cmd := s.Update(FrameMsg{ID: s.ID(), Gen: 1, Time: time.Now()}); cmd != nil {
		t.Fatalf("expected no tick after cancel")
	}
	if s.Tick() != nil {
		t.Fatalf("expected no tick after cancel")
	}
	if calls != 0 {
		t.Fatalf("expected no frames after cancel, got %d", calls)
	}
}

func TestTickSchedulerIDsAreUnique(t *testing.T) {
	a := NewTickScheduler(0)
	b := NewTickScheduler(0)
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct scheduler IDs")
	}
}

func TestManualScheduler(t *testing.T) {
	var s ManualScheduler
	var deltas []float64
	cancel := s.Start(func(_, delta float64) { deltas = append(deltas, delta) })
	s.Fire(10)
	s.Fire(30)
	cancel()
	s.Fire(50)
	if len(deltas) != 2 || deltas[0] != 0 || deltas[1] != 20 {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
	if s.Active() {
		t.Fatalf("expected inactive after cancel")
	}
}

func TestTickSchedulerSharedOrigin(t *testing.T) {
	origin := time.Unix(1000, 0)
	s := NewTickScheduler(0)
	s.SetOrigin(origin)
	var stamps []float64
	s.Start(func(ts, _ float64) { stamps = append(stamps, ts) })

	s.Update(FrameMsg{ID: s.ID(), Gen: 1, Time: origin.Add(250 * time.Millisecond)})
	if len(stamps) != 1 || stamps[0] != 250 {
		t.Fatalf("expected timestamp relative to origin, got %v", stamps)
	}
}
