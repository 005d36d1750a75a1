package marquee

import (
	"errors"
	"fmt"
	"math"
)

// Options configures one marquee instance.
type Options struct {
	// Name labels the instance in logs and telemetry.
	Name string

	BaseVelocity float64
	CopyCount    int

	Damping   float64
	Stiffness float64
	Mass      float64
	Mapping   Mapping

	VisibilityMargin   float64
	FrameCeilingMs     float64
	MinFrameIntervalMs float64
	ThrottleSlackMs    float64
	DeadZone           float64
	SettleEpsilon      float64
	StaleAfterMs       float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		BaseVelocity:       100,
		CopyCount:          6,
		Damping:            50,
		Stiffness:          400,
		Mass:               1,
		Mapping:            DefaultMapping(),
		VisibilityMargin:   50,
		FrameCeilingMs:     100,
		MinFrameIntervalMs: 1000.0 / 60,
		ThrottleSlackMs:    1,
		DeadZone:           0.1,
		SettleEpsilon:      0.5,
		StaleAfterMs:       50,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if !finite(o.BaseVelocity) {
		return errors.New("velocity must be a finite number")
	}
	if o.CopyCount < 2 {
		return fmt.Errorf("copies must be >= 2, got %d", o.CopyCount)
	}
	if !(o.Damping > 0) || !finite(o.Damping) {
		return errors.New("damping must be > 0")
	}
	if !(o.Stiffness > 0) || !finite(o.Stiffness) {
		return errors.New("stiffness must be > 0")
	}
	if o.Mass < 0 || !finite(o.Mass) {
		return errors.New("mass must be >= 0")
	}
	for _, v := range []float64{o.Mapping.InMin, o.Mapping.InMax, o.Mapping.OutMin, o.Mapping.OutMax} {
		if !finite(v) {
			return errors.New("velocity mapping must be finite")
		}
	}
	if o.VisibilityMargin < 0 || math.IsNaN(o.VisibilityMargin) {
		return errors.New("visibility margin must be >= 0")
	}
	if !(o.FrameCeilingMs > 0) {
		return errors.New("frame ceiling must be > 0")
	}
	if o.MinFrameIntervalMs < 0 || o.ThrottleSlackMs < 0 {
		return errors.New("frame interval and slack must be >= 0")
	}
	if o.DeadZone < 0 || o.SettleEpsilon < 0 || o.StaleAfterMs < 0 {
		return errors.New("dead zone, settle epsilon and stale window must be >= 0")
	}
	return nil
}

func (o Options) trackerConfig() TrackerConfig {
	return TrackerConfig{
		Spring:        SpringConfig{Damping: o.Damping, Stiffness: o.Stiffness, Mass: o.Mass},
		Mapping:       o.Mapping,
		SettleEpsilon: o.SettleEpsilon,
		StaleAfterMs:  o.StaleAfterMs,
		MaxStepMs:     o.FrameCeilingMs,
	}
}

func (o Options) integratorConfig() IntegratorConfig {
	return IntegratorConfig{
		BaseVelocity:       o.BaseVelocity,
		FrameCeilingMs:     o.FrameCeilingMs,
		MinFrameIntervalMs: o.MinFrameIntervalMs,
		ThrottleSlackMs:    o.ThrottleSlackMs,
		DeadZone:           o.DeadZone,
	}
}
