package marquee

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// SpringConfig describes a mass-spring-damper in physical terms.
type SpringConfig struct {
	Damping   float64
	Stiffness float64
	Mass      float64
}

// params converts the physical description into harmonica's angular
// frequency and damping ratio.
func (c SpringConfig) params() (frequency, ratio float64) {
	mass := c.Mass
	if mass <= 0 {
		mass = 1
	}
	if c.Stiffness <= 0 {
		return 0, 1
	}
	frequency = math.Sqrt(c.Stiffness / mass)
	ratio = c.Damping / (2 * math.Sqrt(c.Stiffness*mass))
	return frequency, ratio
}

// TrackerConfig configures a VelocityTracker.
type TrackerConfig struct {
	Spring  SpringConfig
	Mapping Mapping
	// SettleEpsilon snaps the smoothed velocity to its target once both
	// the remaining distance and the spring speed fall below it.
	SettleEpsilon float64
	// StaleAfterMs is how long a raw velocity stays valid without a new
	// sample.
	StaleAfterMs float64
	// MaxStepMs caps a single spring step.
	MaxStepMs float64
}

// VelocityTracker derives a spring-smoothed scroll velocity from raw scroll
// samples and maps it to an amplification factor.
type VelocityTracker struct {
	cfg            TrackerConfig
	frequency      float64
	ratio          float64
	spring         harmonica.Spring
	springStepSec  float64
	hasSample      bool
	last           Sample
	raw            float64
	smoothed       float64
	springVelocity float64
	stepped        bool
	lastStepMs     float64
}

// NewVelocityTracker builds a tracker at rest.
func NewVelocityTracker(cfg TrackerConfig) *VelocityTracker {
	freq, ratio := cfg.Spring.params()
	return &VelocityTracker{cfg: cfg, frequency: freq, ratio: ratio}
}

// Observe records a scroll sample and updates the raw velocity in units per
// second. A sample that does not move time forward only updates the
// recorded offset.
func (v *VelocityTracker) Observe(s Sample) {
	if !finite(s.TimestampMs) || !finite(s.OffsetPx) {
		return
	}
	if !v.hasSample {
		v.last = s
		v.hasSample = true
		return
	}
	dt := s.TimestampMs - v.last.TimestampMs
	if dt <= 0 {
		v.last.OffsetPx = s.OffsetPx
		return
	}
	v.raw = (s.OffsetPx - v.last.OffsetPx) / dt * 1000
	v.last = s
}

// Raw returns the raw velocity as seen at nowMs.
func (v *VelocityTracker) Raw(nowMs float64) float64 {
	if !v.hasSample || nowMs-v.last.TimestampMs > v.cfg.StaleAfterMs {
		return 0
	}
	return v.raw
}

// Advance steps the spring towards the raw velocity up to nowMs.
func (v *VelocityTracker) Advance(nowMs float64) {
	if !finite(nowMs) {
		return
	}
	if !v.stepped {
		v.stepped = true
		v.lastStepMs = nowMs
		return
	}
	dtMs := nowMs - v.lastStepMs
	if dtMs <= 0 {
		return
	}
	v.lastStepMs = nowMs
	if v.cfg.MaxStepMs > 0 && dtMs > v.cfg.MaxStepMs {
		dtMs = v.cfg.MaxStepMs
	}

	target := v.Raw(nowMs)
	if v.smoothed == target && v.springVelocity == 0 {
		return
	}
	v.smoothed, v.springVelocity = v.springFor(dtMs/1000).Update(v.smoothed, v.springVelocity, target)
	if !finite(v.smoothed) || !finite(v.springVelocity) {
		v.smoothed, v.springVelocity = target, 0
		return
	}
	eps := v.cfg.SettleEpsilon
	if math.Abs(v.smoothed-target) < eps && math.Abs(v.springVelocity) < eps {
		v.smoothed, v.springVelocity = target, 0
	}
}

// Smoothed returns the spring-damped velocity. Magnitudes below the settle
// epsilon read as exactly zero.
func (v *VelocityTracker) Smoothed() float64 {
	if math.Abs(v.smoothed) < v.cfg.SettleEpsilon {
		return 0
	}
	return v.smoothed
}

// Factor advances the spring to nowMs and returns the mapped amplification.
func (v *VelocityTracker) Factor(nowMs float64) float64 {
	v.Advance(nowMs)
	return v.cfg.Mapping.Map(v.Smoothed())
}

func (v *VelocityTracker) springFor(stepSec float64) harmonica.Spring {
	if stepSec != v.springStepSec {
		v.spring = harmonica.NewSpring(stepSec, v.frequency, v.ratio)
		v.springStepSec = stepSec
	}
	return v.spring
}
