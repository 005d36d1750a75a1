package marquee

import (
	"math"
	"testing"
)

func TestWrapStaysInRange(t *testing.T) {
	widths := []float64{1, 37.5, 400}
	values := []float64{-12345.678, -400, -399.999, -0.25, 0, 0.25, 399.5, 400, 98765.4321}
	for _, w := range widths {
		for _, v := range values {
			got := Wrap(-w, 0, v)
			if got < -w || got >= 0 {
				t.Fatalf("Wrap(-%v, 0, %v) = %v, want within [-%v, 0)", w, v, got, w)
			}
		}
	}
}

func TestWrapPeriodic(t *testing.T) {
	const w = 400.0
	for _, v := range []float64{-1000.5, -3.25, 0, 12.75, 777} {
		a := Wrap(-w, 0, v)
		b := Wrap(-w, 0, v+w)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("expected periodicity for %v: %v != %v", v, a, b)
		}
	}
}

func TestWrapKeepsFraction(t *testing.T) {
	if got := Wrap(-10, 0, 2.5); math.Abs(got-(-7.5)) > 1e-12 {
		t.Fatalf("expected -7.5, got %v", got)
	}
	if got := Wrap(-10, 0, -12.25); math.Abs(got-(-2.25)) > 1e-12 {
		t.Fatalf("expected -2.25, got %v", got)
	}
}

func TestWrapDegenerateRange(t *testing.T) {
	if got := Wrap(0, 0, 123); got != 0 {
		t.Fatalf("expected min for empty range, got %v", got)
	}
	if got := Wrap(-5, 0, math.Inf(1)); got != -5 {
		t.Fatalf("expected min for infinite value, got %v", got)
	}
	if got := Wrap(-5, 0, math.NaN()); got != -5 {
		t.Fatalf("expected min for NaN value, got %v", got)
	}
}

func TestMappingExtrapolatesUnlessClamped(t *testing.T) {
	m := DefaultMapping()
	if got := m.Map(500); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := m.Map(2000); got != 10 {
		t.Fatalf("expected unclamped 10, got %v", got)
	}
	if got := m.Map(-1000); got != -5 {
		t.Fatalf("expected negative extrapolation -5, got %v", got)
	}
	m.Clamp = true
	if got := m.Map(2000); got != 5 {
		t.Fatalf("expected clamped 5, got %v", got)
	}
	if got := m.Map(-1000); got != 0 {
		t.Fatalf("expected clamped 0, got %v", got)
	}
}

func TestMappingDegenerateInput(t *testing.T) {
	m := Mapping{InMin: 3, InMax: 3, OutMin: 1, OutMax: 9}
	if got := m.Map(100); got != 1 {
		t.Fatalf("expected OutMin for empty input range, got %v", got)
	}
}
