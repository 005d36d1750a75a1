package marquee

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine is one running marquee instance. All mutation happens on the host's
// UI goroutine: subscriptions deliver there and the frame callback is the
// only writer of the integrator.
type Engine struct {
	opts   Options
	host   Host
	logger *zap.Logger

	width      *WidthObserver
	gate       *VisibilityGate
	motion     *MotionFlag
	tracker    *VelocityTracker
	integrator *Integrator

	state     RunState
	mounted   bool
	unmounted bool
	cancels   []CancelFunc
	onState   []func(RunState)
	lastDelta float64
}

// Snapshot is a read-only view of an engine.
type Snapshot struct {
	Name      string
	State     RunState
	Position  float64
	Offset    float64
	Width     float64
	Factor    float64
	Direction float64
	Smoothed  float64
	Stats     FrameStats
}

// New validates opts and builds an unmounted engine.
func New(opts Options, host Host, logger *zap.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marquee options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		opts:       opts,
		host:       host,
		logger:     logger.With(zap.String("marquee", opts.Name)),
		tracker:    NewVelocityTracker(opts.trackerConfig()),
		integrator: NewIntegrator(opts.integratorConfig()),
	}
	e.width = NewWidthObserver(func(float64) { e.refresh() })
	e.gate = NewVisibilityGate(opts.VisibilityMargin, func(bool) { e.refresh() })
	e.motion = NewMotionFlag(func(bool) { e.refresh() })
	return e, nil
}

// OnStateChange registers fn to run after every run state transition.
func (e *Engine) OnStateChange(fn func(RunState)) {
	if fn != nil {
		e.onState = append(e.onState, fn)
	}
}

// Mount subscribes to every host signal and starts the frame loop. It is a
// no-op after the first call.
func (e *Engine) Mount() {
	if e.mounted || e.unmounted {
		return
	}
	e.mounted = true

	e.width.Attach(e.host.Sizes, e.host.Copy)
	e.gate.Attach(e.host.Intersections, e.host.Container)
	e.motion.Attach(e.host.Motion)
	if e.host.Scroll != nil {
		e.cancels = append(e.cancels, e.host.Scroll.SubscribeScroll(e.tracker.Observe))
	}
	if e.host.Frames != nil {
		e.cancels = append(e.cancels, e.host.Frames.Start(e.onFrame))
	}
	e.logger.Debug("marquee mounted",
		zap.Float64("velocity", e.opts.BaseVelocity),
		zap.Int("copies", e.opts.CopyCount))
	e.refresh()
}

// Unmount releases the frame loop and all observers, whether or not the
// engine ever ran, and returns to Idle. Later calls do nothing.
func (e *Engine) Unmount() {
	if !e.mounted || e.unmounted {
		return
	}
	e.unmounted = true
	for i := len(e.cancels) - 1; i >= 0; i-- {
		if e.cancels[i] != nil {
			e.cancels[i]()
		}
	}
	e.cancels = nil
	e.motion.Detach()
	e.gate.Detach()
	e.width.Detach()
	e.mounted = false
	e.refresh()
	e.logger.Debug("marquee unmounted", zap.Any("stats", e.integrator.Stats()))
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// State returns the current run state.
func (e *Engine) State() RunState {
	return e.state
}

// Position returns the wrapped position the renderer should draw.
func (e *Engine) Position() float64 {
	if e.motion.Reduced() {
		return 0
	}
	return e.integrator.Position()
}

// Width returns the measured copy width.
func (e *Engine) Width() float64 {
	return e.width.Width()
}

// Snapshot captures the engine's observable values.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Name:      e.opts.Name,
		State:     e.state,
		Position:  e.Position(),
		Offset:    e.integrator.Offset(),
		Width:     e.width.Width(),
		Factor:    e.integrator.Factor(),
		Direction: e.integrator.Direction(),
		Smoothed:  e.tracker.Smoothed(),
		Stats:     e.integrator.Stats(),
	}
}

func (e *Engine) onFrame(timestampMs, _ float64) {
	e.refresh()
	e.integrator.Step(timestampMs, FrameInputs{
		Suspended:     !e.state.Running(),
		ReducedMotion: e.motion.Reduced(),
		Width:         e.width.Width(),
		Velocity:      e.tracker,
	})
}

func (e *Engine) refresh() {
	next := nextState(e.state, e.mounted, e.width.Width(), e.gate.Visible(), e.motion.Reduced())
	if next == e.state {
		return
	}
	prev := e.state
	e.state = next
	e.logger.Debug("marquee state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Float64("width", e.width.Width()))
	for _, fn := range e.onState {
		fn(next)
	}
}
