package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/marquee/internal/config"
	"github.com/verte-zerg/marquee/internal/sim"
	"github.com/verte-zerg/marquee/internal/stats"
	"github.com/verte-zerg/marquee/internal/tui"
)

const (
	defaultSimDuration = 4000
	defaultSimWidth    = 400
	defaultSimEvery    = 250
)

var (
	simDuration    float64
	simStep        float64
	simWidth       float64
	simEvery       float64
	simScrollSpeed float64
	simScrollFrom  float64
	simScrollTo    float64
	simHidden      []float64
	simReducedAt   float64
	simRow         int
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one marquee headless and print a trace",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().Float64Var(&simDuration, "duration", defaultSimDuration, "simulated time in ms")
	cmd.Flags().Float64Var(&simStep, "step", 1000.0/60, "frame step in ms")
	cmd.Flags().Float64Var(&simWidth, "width", defaultSimWidth, "copy width in units")
	cmd.Flags().Float64Var(&simEvery, "every", defaultSimEvery, "trace interval in ms (0 traces every frame)")
	cmd.Flags().Float64Var(&simScrollSpeed, "scroll", 0, "page scroll speed in units per second")
	cmd.Flags().Float64Var(&simScrollFrom, "scroll-from", 1000, "scroll start in ms")
	cmd.Flags().Float64Var(&simScrollTo, "scroll-to", 2000, "scroll end in ms")
	cmd.Flags().Float64SliceVar(&simHidden, "hidden", nil, "off-screen interval from,to in ms")
	cmd.Flags().Float64Var(&simReducedAt, "reduced-at", -1, "switch to reduced motion at this time in ms")
	cmd.Flags().IntVar(&simRow, "row", 0, "row index whose direction is used")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveConfig(cmd, nil, fileCfg)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if simRow < 0 {
		return fmt.Errorf("--row must be >= 0")
	}

	script, err := buildScript(cfg.ReducedMotion)
	if err != nil {
		return err
	}
	res, err := sim.Run(tui.RowOptions(cfg, simRow), script, nil)
	if err != nil {
		return err
	}
	return writeTrace(cmd.OutOrStdout(), res)
}

func buildScript(reduced bool) (sim.Script, error) {
	script := sim.Script{
		DurationMs:    simDuration,
		StepMs:        simStep,
		Width:         simWidth,
		Visible:       true,
		ReducedMotion: reduced,
		TraceEveryMs:  simEvery,
	}
	if simScrollSpeed != 0 {
		if simScrollTo < simScrollFrom {
			return sim.Script{}, fmt.Errorf("--scroll-to must be >= --scroll-from")
		}
		script.Scroll = sim.ConstantScroll(simScrollFrom, simScrollTo, simStep, simScrollSpeed)
	}
	if len(simHidden) > 0 {
		if len(simHidden) != 2 || simHidden[1] < simHidden[0] {
			return sim.Script{}, fmt.Errorf("--hidden must be from,to with from <= to")
		}
		script.Visibility = []sim.Toggle{
			{AtMs: simHidden[0], Value: false},
			{AtMs: simHidden[1], Value: true},
		}
	}
	if simReducedAt >= 0 {
		script.Reduced = []sim.Toggle{{AtMs: simReducedAt, Value: true}}
	}
	return script, nil
}

func writeTrace(w io.Writer, res sim.Result) error {
	headers := []string{"t(ms)", "state", "offset", "position", "factor", "scroll/s"}
	rows := make([][]string, 0, len(res.Traces))
	for _, tr := range res.Traces {
		rows = append(rows, []string{
			fmt.Sprintf("%.0f", tr.TimestampMs),
			tr.State.String(),
			fmt.Sprintf("%.2f", tr.Offset),
			fmt.Sprintf("%.2f", tr.Position),
			fmt.Sprintf("%+.3f", tr.Factor),
			fmt.Sprintf("%+.1f", tr.Smoothed),
		})
	}
	if err := stats.WriteTable(w, headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}); err != nil {
		return err
	}
	st := res.Final.Stats
	_, err := fmt.Fprintf(w, "\nframes %d  processed %d  throttled %d  dropped %d  suspended %d  flips %d  cycles %.2f\n",
		st.Frames, st.Processed, st.Throttled, st.Dropped, st.Suspended, st.DirectionFlips, st.Cycles)
	return err
}
