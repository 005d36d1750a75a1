package stats

import (
	"math"
	"testing"
)

func TestRunMetrics(t *testing.T) {
	speed, ratio := RunMetrics(500, 90, 100, 2000)
	if speed != 250 {
		t.Fatalf("expected speed 250, got %v", speed)
	}
	if math.Abs(ratio-0.9) > 1e-9 {
		t.Fatalf("expected ratio 0.9, got %v", ratio)
	}
	speed, ratio = RunMetrics(500, 0, 0, 0)
	if speed != 0 || ratio != 0 {
		t.Fatalf("expected zeros for empty run, got %v %v", speed, ratio)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}, 0); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}, 0); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if got := Sparkline([]float64{0, 0, 9, 9}, 2); got != " @" {
		t.Fatalf("unexpected resampled sparkline: %q", got)
	}
}
