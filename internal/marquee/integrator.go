package marquee

import "math"

// IntegratorConfig tunes the per-frame control loop.
type IntegratorConfig struct {
	// BaseVelocity is the autonomous speed in units per second; the sign
	// selects the direction.
	BaseVelocity float64
	// FrameCeilingMs drops frames whose elapsed time exceeds it.
	FrameCeilingMs float64
	// MinFrameIntervalMs caps the update rate.
	MinFrameIntervalMs float64
	// ThrottleSlackMs tolerates timer jitter around MinFrameIntervalMs.
	ThrottleSlackMs float64
	// DeadZone is the factor magnitude required to change direction.
	DeadZone float64
}

// FactorSource yields the scroll amplification factor for a frame.
type FactorSource interface {
	Factor(nowMs float64) float64
}

// FrameInputs are the signals sampled for a single frame.
type FrameInputs struct {
	Suspended     bool
	ReducedMotion bool
	Width         float64
	Velocity      FactorSource
}

// FrameStats counts what the integrator did with the frames it saw.
type FrameStats struct {
	Frames         int64
	Processed      int64
	Throttled      int64
	Dropped        int64
	Suspended      int64
	DirectionFlips int64
	// Distance is the absolute displacement travelled.
	Distance float64
	// Cycles is the distance travelled measured in copy widths.
	Cycles float64
}

// Integrator accumulates displacement and publishes the wrapped position.
// It is owned by a single frame callback.
type Integrator struct {
	cfg       IntegratorConfig
	direction float64
	offset    float64
	position  float64
	factor    float64
	width     float64
	lastMs    float64
	hasLast   bool
	stats     FrameStats
}

// NewIntegrator returns an integrator at rest moving in the positive
// direction.
func NewIntegrator(cfg IntegratorConfig) *Integrator {
	return &Integrator{cfg: cfg, direction: 1}
}

// Step runs one frame at nowMs and reports whether it displaced the
// marquee.
func (in *Integrator) Step(nowMs float64, inputs FrameInputs) bool {
	in.stats.Frames++
	if !finite(nowMs) {
		in.stats.Dropped++
		return false
	}

	if inputs.ReducedMotion {
		in.position = 0
	} else if inputs.Width != in.width {
		in.width = inputs.Width
		in.publish()
	}

	elapsed := nowMs - in.lastMs
	switch {
	case inputs.Suspended || inputs.ReducedMotion:
		in.stats.Suspended++
		in.record(nowMs)
		return false
	case !in.hasLast || elapsed < 0 || elapsed > in.cfg.FrameCeilingMs:
		in.stats.Dropped++
		in.record(nowMs)
		return false
	case elapsed < in.cfg.MinFrameIntervalMs-in.cfg.ThrottleSlackMs:
		in.stats.Throttled++
		return false
	}
	in.record(nowMs)

	factor := 0.0
	if inputs.Velocity != nil {
		factor = inputs.Velocity.Factor(nowMs)
	}
	if !finite(factor) {
		factor = 0
	}
	in.factor = factor
	in.updateDirection(factor)

	moveBy := in.direction * in.cfg.BaseVelocity * (elapsed / 1000)
	moveBy += in.direction * moveBy * factor
	if !finite(moveBy) {
		return false
	}

	in.offset += moveBy
	in.stats.Processed++
	in.stats.Distance += math.Abs(moveBy)
	if in.width > 0 {
		in.stats.Cycles += math.Abs(moveBy) / in.width
	}
	in.publish()
	return true
}

func (in *Integrator) record(nowMs float64) {
	in.lastMs = nowMs
	in.hasLast = true
}

func (in *Integrator) updateDirection(factor float64) {
	next := in.direction
	switch {
	case factor > in.cfg.DeadZone:
		next = 1
	case factor < -in.cfg.DeadZone:
		next = -1
	}
	if next != in.direction {
		in.direction = next
		in.stats.DirectionFlips++
	}
}

func (in *Integrator) publish() {
	if in.width <= 0 || !finite(in.width) {
		in.position = 0
		return
	}
	p := Wrap(-in.width, 0, in.offset)
	if !finite(p) {
		p = 0
	}
	in.position = p
}

// Position returns the wrapped position in [-width, 0), or 0 at rest.
func (in *Integrator) Position() float64 {
	return in.position
}

// Offset returns the unbounded accumulated displacement.
func (in *Integrator) Offset() float64 {
	return in.offset
}

// Direction returns the current direction sign.
func (in *Integrator) Direction() float64 {
	return in.direction
}

// Factor returns the amplification factor used by the last processed frame.
func (in *Integrator) Factor() float64 {
	return in.factor
}

// Stats returns the frame counters.
func (in *Integrator) Stats() FrameStats {
	return in.stats
}
