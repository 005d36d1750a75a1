package host

import "testing"

func TestMotionPreferenceNotifiesOnChange(t *testing.T) {
	p := NewMotionPreference(false)
	var got []bool
	cancel := p.Subscribe(func(v bool) { got = append(got, v) })
	p.Set(false)
	p.Toggle()
	p.Set(true)
	p.Toggle()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("unexpected notifications: %v", got)
	}
	cancel()
	p.Toggle()
	if len(got) != 2 || p.Subscribers() != 0 {
		t.Fatalf("expected no notifications after cancel")
	}
}

func TestReducedMotionFromEnv(t *testing.T) {
	t.Setenv("MARQUEE_REDUCED_MOTION", "")
	t.Setenv("REDUCE_MOTION", "reduce")
	v, ok := ReducedMotionFromEnv()
	if !ok || !v {
		t.Fatalf("expected reduce from REDUCE_MOTION")
	}

	t.Setenv("MARQUEE_REDUCED_MOTION", "false")
	v, ok = ReducedMotionFromEnv()
	if !ok || v {
		t.Fatalf("expected the marquee variable to win")
	}

	t.Setenv("MARQUEE_REDUCED_MOTION", "")
	t.Setenv("REDUCE_MOTION", "maybe")
	if _, ok := ReducedMotionFromEnv(); ok {
		t.Fatalf("expected unrecognised value to be ignored")
	}
}
