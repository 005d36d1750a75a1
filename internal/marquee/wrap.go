// Package marquee implements the scroll-velocity-reactive marquee engine.
package marquee

import "math"

// Wrap reduces v into [min, max) preserving its fractional position.
// Degenerate ranges and non-finite inputs return min.
func Wrap(min, max, v float64) float64 {
	rangeSize := max - min
	if rangeSize == 0 || !finite(rangeSize) || !finite(min) || !finite(v) {
		return min
	}
	r := math.Mod(math.Mod(v-min, rangeSize)+rangeSize, rangeSize) + min
	if !finite(r) {
		return min
	}
	return r
}

// Mapping linearly maps an input range onto an output range.
type Mapping struct {
	InMin  float64
	InMax  float64
	OutMin float64
	OutMax float64
	// Clamp limits results to the output range instead of extrapolating.
	Clamp bool
}

// DefaultMapping maps 0..1000 units/s of scroll onto a 0..5 amplification.
func DefaultMapping() Mapping {
	return Mapping{InMin: 0, InMax: 1000, OutMin: 0, OutMax: 5}
}

// Map interpolates v. A zero-width input range maps everything to OutMin.
func (m Mapping) Map(v float64) float64 {
	span := m.InMax - m.InMin
	if span == 0 || !finite(v) {
		return m.OutMin
	}
	progress := (v - m.InMin) / span
	out := m.OutMin + progress*(m.OutMax-m.OutMin)
	if m.Clamp {
		lo, hi := m.OutMin, m.OutMax
		if lo > hi {
			lo, hi = hi, lo
		}
		out = math.Max(lo, math.Min(hi, out))
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
