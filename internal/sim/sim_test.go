package sim

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/marquee/internal/marquee"
)

const frameStep = 1000.0 / 60

func baseOptions() marquee.Options {
	opts := marquee.DefaultOptions()
	opts.Name = "sim"
	opts.CopyCount = 8
	return opts
}

func baseScript() Script {
	return Script{
		DurationMs: 4000,
		StepMs:     frameStep,
		Width:      400,
		Visible:    true,
	}
}

func congruentToZero(v, w float64) bool {
	d := math.Mod(math.Abs(v), w)
	return d < 1e-6 || w-d < 1e-6
}

func TestRunCompletesOneCycle(t *testing.T) {
	res, err := Run(baseOptions(), baseScript(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 400, res.Final.Offset, 1e-6)
	assert.True(t, congruentToZero(res.Final.Position, 400), "position %v", res.Final.Position)
	assert.Equal(t, 1.0, res.Final.Direction)
	assert.InDelta(t, 1, res.Final.Stats.Cycles, 1e-6)
	assert.Equal(t, marquee.PhaseRunning, res.Final.State.Phase)
	require.NotEmpty(t, res.Traces)
	for _, tr := range res.Traces {
		assert.GreaterOrEqual(t, tr.Position, -400.0)
		assert.LessOrEqual(t, tr.Position, 0.0)
	}
}

func TestRunThinsTraces(t *testing.T) {
	script := baseScript()
	script.TraceEveryMs = 1000
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)
	require.Len(t, res.Traces, 5)
	assert.InDelta(t, 200, res.Traces[2].Offset, 1e-6)
}

func TestRunZeroWidthStaysIdle(t *testing.T) {
	script := baseScript()
	script.Width = 0
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)
	for _, tr := range res.Traces {
		assert.Equal(t, marquee.PhaseIdle, tr.State.Phase)
		assert.Zero(t, tr.Position)
	}
	assert.Zero(t, res.Final.Offset)
}

func TestRunWaitsForMeasurement(t *testing.T) {
	script := baseScript()
	script.WidthAtMs = 1000
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)
	for _, tr := range res.Traces {
		if tr.TimestampMs < 1000-1e-6 {
			assert.Equal(t, marquee.PhaseIdle, tr.State.Phase)
		} else {
			assert.Equal(t, marquee.PhaseRunning, tr.State.Phase)
		}
	}
	assert.InDelta(t, 301.67, res.Final.Offset, 0.1)
}

func TestRunReducedMotionRestsAtZero(t *testing.T) {
	script := baseScript()
	script.ReducedMotion = true
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)
	for _, tr := range res.Traces {
		assert.Zero(t, tr.Position)
		assert.Equal(t, marquee.ReasonReducedMotion, tr.State.Reason)
	}
	assert.Zero(t, res.Final.Offset)
}

func TestRunOffscreenPausesWithoutJump(t *testing.T) {
	script := baseScript()
	script.Visibility = []Toggle{{AtMs: 3000, Value: true}, {AtMs: 2000, Value: false}}
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)

	assert.InDelta(t, 300, res.Final.Offset, 0.5)
	var sawSuspended bool
	for _, tr := range res.Traces {
		if tr.State.Phase == marquee.PhaseSuspended {
			sawSuspended = true
			assert.Equal(t, marquee.ReasonOffscreen, tr.State.Reason)
		}
	}
	assert.True(t, sawSuspended)
}

func TestRunScrollAmplifiesAndSettles(t *testing.T) {
	script := baseScript()
	script.Scroll = ConstantScroll(1000, 2000, frameStep, 1000)
	res, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)

	var peak float64
	for _, tr := range res.Traces {
		peak = math.Max(peak, tr.Factor)
	}
	assert.Greater(t, peak, 4.0)
	assert.Greater(t, res.Final.Offset, 750.0)
	assert.Equal(t, 0.0, res.Final.Factor)
	assert.Equal(t, 0.0, res.Final.Smoothed)
}

func TestRunRejectsBadScript(t *testing.T) {
	script := baseScript()
	script.StepMs = 0
	_, err := Run(baseOptions(), script, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step")

	opts := baseOptions()
	opts.CopyCount = 1
	_, err = Run(opts, baseScript(), nil)
	require.Error(t, err)
}

func TestConstantScroll(t *testing.T) {
	samples := ConstantScroll(0, 100, 50, 200)
	require.Len(t, samples, 3)
	assert.Equal(t, 20.0, samples[2].OffsetPx)
	assert.Nil(t, ConstantScroll(10, 0, 5, 1))
}

func TestScriptIsNotMutated(t *testing.T) {
	script := baseScript()
	script.Visibility = []Toggle{{AtMs: 3000, Value: true}, {AtMs: 2000, Value: false}}
	_, err := Run(baseOptions(), script, nil)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, script.Visibility[0].AtMs)
}

func TestLiveWritesFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := Live(ctx, LiveConfig{
		Text:     "hello",
		Options:  baseOptions(),
		Interval: 10 * time.Millisecond,
	}, &out, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\r")
	assert.Contains(t, out.String(), "hello")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestFrameLineClearsLeftovers(t *testing.T) {
	assert.Equal(t, "\rab   \x1b[K", frameLine("ab", 5))
	assert.Equal(t, "\rabcde\x1b[K", frameLine("abcde", 5))
	assert.Equal(t, "\r日本 \x1b[K", frameLine("日本", 5))
	assert.Equal(t, "\r\x1b[K", frameLine("", -1))
}

func TestLiveRejectsEmptyText(t *testing.T) {
	err := Live(context.Background(), LiveConfig{Options: baseOptions()}, &bytes.Buffer{}, nil, nil)
	require.Error(t, err)
}
