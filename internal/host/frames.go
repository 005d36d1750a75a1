// Package host provides terminal implementations of the marquee host
// primitives.
package host

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/marquee/internal/marquee"
)

// DefaultFrameInterval is the tick interval of a TickScheduler.
const DefaultFrameInterval = time.Second / 60

var lastSchedulerID int64

func nextSchedulerID() int {
	return int(atomic.AddInt64(&lastSchedulerID, 1))
}

// FrameMsg is delivered to the scheduler that requested it.
type FrameMsg struct {
	ID   int
	Gen  uint64
	Time time.Time
}

// TickScheduler drives one frame loop through Bubble Tea ticks. Each
// scheduler tags its ticks with an ID and a generation; cancelling bumps the
// generation so ticks already in flight are dropped.
type TickScheduler struct {
	id       int
	gen      uint64
	interval time.Duration
	onFrame  marquee.FrameFunc
	active   bool
	origin   time.Time
	epoch    time.Time
	last     time.Time
}

// NewTickScheduler returns a scheduler ticking every interval.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickScheduler{id: nextSchedulerID(), interval: interval}
}

// SetOrigin makes frame timestamps count from origin instead of the first
// frame, so they share a clock with scroll samples from the same origin.
func (s *TickScheduler) SetOrigin(origin time.Time) {
	s.origin = origin
	s.epoch = origin
}

// ID returns the scheduler's message ID.
func (s *TickScheduler) ID() int {
	return s.id
}

// Active reports whether a frame callback is registered.
func (s *TickScheduler) Active() bool {
	return s.active
}

// Start implements marquee.FrameScheduler.
func (s *TickScheduler) Start(onFrame marquee.FrameFunc) marquee.CancelFunc {
	s.gen++
	s.onFrame = onFrame
	s.active = onFrame != nil
	s.epoch = s.origin
	s.last = time.Time{}
	gen := s.gen
	return func() {
		if s.gen != gen {
			return
		}
		s.gen++
		s.active = false
		s.onFrame = nil
	}
}

// Tick schedules the next frame.
func (s *TickScheduler) Tick() tea.Cmd {
	if !s.active {
		return nil
	}
	id, gen := s.id, s.gen
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return FrameMsg{ID: id, Gen: gen, Time: t}
	})
}

// Update runs the frame callback for a FrameMsg addressed to this scheduler
// and returns the next tick. Other messages are ignored.
func (s *TickScheduler) Update(msg tea.Msg) tea.Cmd {
	fm, ok := msg.(FrameMsg)
	if !ok || fm.ID != s.id || fm.Gen != s.gen || !s.active {
		return nil
	}
	if s.epoch.IsZero() {
		s.epoch = fm.Time
	}
	if s.last.IsZero() {
		s.last = fm.Time
	}
	ts := durationMs(fm.Time.Sub(s.epoch))
	delta := durationMs(fm.Time.Sub(s.last))
	s.last = fm.Time
	s.onFrame(ts, delta)
	return s.Tick()
}

// ManualScheduler fires frames on demand. Simulations and plain terminal
// loops use it to drive engines from their own clock.
type ManualScheduler struct {
	onFrame marquee.FrameFunc
	gen     uint64
	lastMs  float64
	fired   bool
}

// Start implements marquee.FrameScheduler.
func (s *ManualScheduler) Start(onFrame marquee.FrameFunc) marquee.CancelFunc {
	s.gen++
	s.onFrame = onFrame
	gen := s.gen
	return func() {
		if s.gen == gen {
			s.onFrame = nil
		}
	}
}

// Active reports whether a frame callback is registered.
func (s *ManualScheduler) Active() bool {
	return s.onFrame != nil
}

// Fire delivers a frame at timestampMs.
func (s *ManualScheduler) Fire(timestampMs float64) {
	if s.onFrame == nil {
		return
	}
	delta := 0.0
	if s.fired {
		delta = timestampMs - s.lastMs
	}
	s.fired = true
	s.lastMs = timestampMs
	s.onFrame(timestampMs, delta)
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
