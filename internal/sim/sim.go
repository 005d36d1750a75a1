// Package sim drives marquee engines without a terminal, either from a
// synthetic script or from a plain real-time loop.
package sim

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/marquee"
)

// Toggle switches a boolean signal at a point in time.
type Toggle struct {
	AtMs  float64
	Value bool
}

// Script describes a synthetic run.
type Script struct {
	DurationMs float64
	StepMs     float64
	// Width is the copy width reported by the size observer.
	Width float64
	// WidthAtMs delays the first measurement.
	WidthAtMs float64
	// Scroll samples are delivered when the clock reaches them.
	Scroll     []marquee.Sample
	Visibility []Toggle
	Reduced    []Toggle
	// Visible and ReducedMotion are the initial signal values.
	Visible       bool
	ReducedMotion bool
	// TraceEveryMs controls how often a trace point is recorded; 0 records
	// every frame.
	TraceEveryMs float64
}

// Trace is one recorded frame.
type Trace struct {
	TimestampMs float64
	Offset      float64
	Position    float64
	Factor      float64
	Smoothed    float64
	State       marquee.RunState
}

// Result is the outcome of a synthetic run.
type Result struct {
	Traces []Trace
	Final  marquee.Snapshot
}

// Validate reports script errors.
func (s Script) Validate() error {
	if !(s.DurationMs > 0) {
		return fmt.Errorf("duration must be > 0")
	}
	if !(s.StepMs > 0) {
		return fmt.Errorf("step must be > 0")
	}
	if s.Width < 0 || math.IsNaN(s.Width) {
		return fmt.Errorf("width must be >= 0")
	}
	return nil
}

// Run plays script against a fresh engine built from opts.
func Run(opts marquee.Options, script Script, logger *zap.Logger) (Result, error) {
	if err := script.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid script: %w", err)
	}
	h := newScriptHost(script)
	engine, err := marquee.New(opts, h.host(), logger)
	if err != nil {
		return Result{}, err
	}
	engine.Mount()
	defer engine.Unmount()

	var res Result
	nextTrace := 0.0
	frames := int(math.Floor(script.DurationMs/script.StepMs + 1e-9))
	for i := 0; i <= frames; i++ {
		ts := float64(i) * script.StepMs
		h.advance(ts)
		h.frames.Fire(ts)
		if ts+1e-9 < nextTrace {
			continue
		}
		nextTrace = ts + script.TraceEveryMs
		snap := engine.Snapshot()
		res.Traces = append(res.Traces, Trace{
			TimestampMs: ts,
			Offset:      snap.Offset,
			Position:    snap.Position,
			Factor:      snap.Factor,
			Smoothed:    snap.Smoothed,
			State:       snap.State,
		})
	}
	res.Final = engine.Snapshot()
	return res, nil
}

// ConstantScroll returns samples for scrolling at unitsPerSec between
// fromMs and toMs, one sample every stepMs.
func ConstantScroll(fromMs, toMs, stepMs, unitsPerSec float64) []marquee.Sample {
	if stepMs <= 0 || toMs < fromMs {
		return nil
	}
	var samples []marquee.Sample
	for ts := fromMs; ts <= toMs+1e-9; ts += stepMs {
		samples = append(samples, marquee.Sample{
			TimestampMs: ts,
			OffsetPx:    (ts - fromMs) * unitsPerSec / 1000,
		})
	}
	return samples
}

// scriptHost replays a Script through the marquee host interfaces.
type scriptHost struct {
	script  Script
	frames  host.ManualScheduler
	motion  *host.MotionPreference
	copy    *host.Copy
	nowMs   float64
	scrollI int
	visI    int
	redI    int
	visible bool

	onResize  func(float64)
	onVisible func(bool)
	onScroll  func(marquee.Sample)
	measured  bool
}

func newScriptHost(script Script) *scriptHost {
	s := &scriptHost{
		script:  script,
		motion:  host.NewMotionPreference(script.ReducedMotion),
		copy:    host.NewCopy("copy", ""),
		visible: script.Visible,
	}
	s.script.Scroll = append([]marquee.Sample(nil), script.Scroll...)
	s.script.Visibility = append([]Toggle(nil), script.Visibility...)
	s.script.Reduced = append([]Toggle(nil), script.Reduced...)
	sortSamples(s.script.Scroll)
	sortToggles(s.script.Visibility)
	sortToggles(s.script.Reduced)
	return s
}

func (s *scriptHost) host() marquee.Host {
	return marquee.Host{
		Frames:        &s.frames,
		Sizes:         s,
		Intersections: s,
		Motion:        s.motion,
		Scroll:        s,
		Copy:          s.copy,
		Container:     s.copy,
	}
}

func (s *scriptHost) ObserveSize(_ marquee.Element, onResize func(float64)) marquee.CancelFunc {
	s.onResize = onResize
	s.measure()
	return func() { s.onResize = nil }
}

func (s *scriptHost) ObserveIntersection(_ marquee.Element, _ float64, onChange func(bool)) marquee.CancelFunc {
	s.onVisible = onChange
	onChange(s.visible)
	return func() { s.onVisible = nil }
}

func (s *scriptHost) SubscribeScroll(onSample func(marquee.Sample)) marquee.CancelFunc {
	s.onScroll = onSample
	return func() { s.onScroll = nil }
}

func (s *scriptHost) measure() {
	if s.measured || s.onResize == nil || s.nowMs < s.script.WidthAtMs {
		return
	}
	s.measured = true
	s.onResize(s.script.Width)
}

// advance delivers every signal due at or before ts.
func (s *scriptHost) advance(ts float64) {
	s.nowMs = ts
	s.measure()
	for s.scrollI < len(s.script.Scroll) && s.script.Scroll[s.scrollI].TimestampMs <= ts {
		if s.onScroll != nil {
			s.onScroll(s.script.Scroll[s.scrollI])
		}
		s.scrollI++
	}
	for s.visI < len(s.script.Visibility) && s.script.Visibility[s.visI].AtMs <= ts {
		s.visible = s.script.Visibility[s.visI].Value
		if s.onVisible != nil {
			s.onVisible(s.visible)
		}
		s.visI++
	}
	for s.redI < len(s.script.Reduced) && s.script.Reduced[s.redI].AtMs <= ts {
		s.motion.Set(s.script.Reduced[s.redI].Value)
		s.redI++
	}
}

func sortSamples(samples []marquee.Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].TimestampMs < samples[j].TimestampMs
	})
}

func sortToggles(toggles []Toggle) {
	sort.SliceStable(toggles, func(i, j int) bool {
		return toggles[i].AtMs < toggles[j].AtMs
	})
}
