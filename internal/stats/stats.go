// Package stats contains run telemetry calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/marquee/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes average speed in units per second and the share of
// frames that displaced the marquee.
func RunMetrics(distance float64, processed, frames int64, durationMs int64) (speed, processedRatio float64) {
	if durationMs > 0 {
		speed = distance / (float64(durationMs) / 1000)
	}
	if frames > 0 {
		processedRatio = float64(processed) / float64(frames)
	}
	return speed, processedRatio
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline, resampled to at most
// width points when width > 0.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = resample(values, width)
	}
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// resample averages values into width buckets.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints a summary for runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalSpeed, totalCycles float64
	var totalMs int64
	bestSpeed := 0.0
	for _, r := range runs {
		speed, _ := RunMetrics(r.Distance, r.Processed, r.Frames, r.DurationMs)
		if r.Rows > 0 {
			speed /= float64(r.Rows)
		}
		totalSpeed += speed
		totalCycles += r.Cycles
		totalMs += r.DurationMs
		bestSpeed = math.Max(bestSpeed, speed)
	}
	count := float64(len(runs))
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(runs)),
		fmt.Sprintf("Total time: %.1fs", float64(totalMs)/1000),
		fmt.Sprintf("Avg speed per row: %.2f units/s", totalSpeed/count),
		fmt.Sprintf("Best speed per row: %.2f units/s", bestSpeed),
		fmt.Sprintf("Cycles: %.2f", totalCycles),
		"",
	}
	return writeLines(w, lines)
}

// RenderRunTable prints one line per run.
func RenderRunTable(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		return nil
	}
	headers := []string{"Run", "Ended", "Duration", "Rows", "Speed", "Processed", "Cycles"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		speed, ratio := RunMetrics(r.Distance, r.Processed, r.Frames, r.DurationMs)
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RunID),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.1fs", float64(r.DurationMs)/1000),
			fmt.Sprintf("%d", r.Rows),
			fmt.Sprintf("%.1f", speed),
			fmt.Sprintf("%.1f%%", ratio*100),
			fmt.Sprintf("%.2f", r.Cycles),
		})
	}
	lines := append([]string{"Runs"}, formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderRowTable prints per-text totals. Text cells are cut to textWidth
// cells when textWidth > 0.
func RenderRowTable(w io.Writer, totals []model.RowTotal, textWidth int) error {
	if len(totals) == 0 {
		_, err := fmt.Fprintln(w, "No row stats found.")
		return err
	}
	headers := []string{"Text", "Runs", "Frames", "Throttled", "Dropped", "Suspended", "Flips", "Cycles"}
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{
			truncateCell(t.Text, textWidth),
			fmt.Sprintf("%d", t.Runs),
			fmt.Sprintf("%d", t.Frames),
			fmt.Sprintf("%d", t.Throttled),
			fmt.Sprintf("%d", t.Dropped),
			fmt.Sprintf("%d", t.Suspended),
			fmt.Sprintf("%d", t.DirectionFlips),
			fmt.Sprintf("%.2f", t.Cycles),
		})
	}
	lines := append([]string{"Per-Row"}, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderTrend prints a sparkline of average speed across runs.
func RenderTrend(w io.Writer, runs []model.RunAggregate, window, width int) error {
	if len(runs) < 2 {
		return nil
	}
	speeds := make([]float64, len(runs))
	for i, r := range runs {
		speeds[i], _ = RunMetrics(r.Distance, r.Processed, r.Frames, r.DurationMs)
	}
	speeds = MovingAverage(speeds, window)
	return writeLines(w, []string{"Speed Trend", Sparkline(speeds, width), ""})
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
