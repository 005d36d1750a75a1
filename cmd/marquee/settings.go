package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/marquee/internal/config"
	"github.com/verte-zerg/marquee/internal/content"
	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/model"
	"github.com/verte-zerg/marquee/internal/tui"
)

// resolveConfig merges defaults, the config file, the environment and
// flags, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, args []string, fileCfg config.FileConfig) (model.Config, error) {
	mc := fileCfg.Marquee
	applyFloatConfig(cmd, "velocity", &flagVelocity, mc.Velocity)
	applyIntConfig(cmd, "copies", &flagCopies, mc.Copies)
	applyFloatConfig(cmd, "damping", &flagDamping, mc.Damping)
	applyFloatConfig(cmd, "stiffness", &flagStiffness, mc.Stiffness)
	applyFloatSliceConfig(cmd, "map-in", &flagMapIn, mc.MapIn)
	applyFloatSliceConfig(cmd, "map-out", &flagMapOut, mc.MapOut)
	applyBoolConfig(cmd, "clamp", &flagClamp, mc.Clamp)
	applyFloatConfig(cmd, "margin", &flagMargin, mc.Margin)
	applyFloatConfig(cmd, "row-height", &flagRowHeight, mc.RowHeight)
	applyStringConfig(cmd, "texts-file", &flagTextsFile, mc.TextsFile)
	applyStringConfig(cmd, "content-file", &flagContentFile, mc.Content)

	cfg := tui.DefaultConfig()
	cfg.ConfigPath = configPath
	cfg.Velocity = flagVelocity
	cfg.Copies = flagCopies
	cfg.Damping = flagDamping
	cfg.Stiffness = flagStiffness
	cfg.Clamp = flagClamp
	cfg.Margin = flagMargin
	cfg.RowHeight = flagRowHeight

	var err error
	if cfg.MapIn, err = pair("map-in", flagMapIn); err != nil {
		return model.Config{}, err
	}
	if cfg.MapOut, err = pair("map-out", flagMapOut); err != nil {
		return model.Config{}, err
	}

	switch {
	case cmd.Flags().Changed("direction"):
		dir := flagDirection
		cfg.Direction = &dir
	case mc.Direction != nil:
		dir := *mc.Direction
		cfg.Direction = &dir
	}

	if fileCfg.Motion.Reduced != nil {
		cfg.ReducedMotion = *fileCfg.Motion.Reduced
	}
	if reduced, ok := host.ReducedMotionFromEnv(); ok {
		cfg.ReducedMotion = reduced
	}
	if cmd.Flags().Changed("reduced-motion") {
		cfg.ReducedMotion = flagReducedMotion
	}

	switch {
	case len(args) > 0:
		cfg.Texts = args
	case flagTextsFile != "":
		texts, err := content.LoadLines(flagTextsFile)
		if err != nil {
			return model.Config{}, fmt.Errorf("failed to load --texts-file: %w", err)
		}
		cfg.Texts = texts
	case mc.Texts != nil && len(*mc.Texts) > 0:
		cfg.Texts = *mc.Texts
	}

	if flagContentFile != "" {
		text, err := content.LoadText(flagContentFile)
		if err != nil {
			return model.Config{}, fmt.Errorf("failed to load --content-file: %w", err)
		}
		cfg.ContentLines = []string{text}
	}
	return cfg, nil
}

// liveReload returns the loader used by the config watcher. Texts are only
// reloaded when they were not given as arguments or with --texts-file.
func liveReload(path string, liveTexts bool) func() (host.ConfigReload, error) {
	return func() (host.ConfigReload, error) {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return host.ConfigReload{}, err
		}
		reload := host.ConfigReload{ReducedMotion: fileCfg.ReducedMotion()}
		if !liveTexts {
			return reload, nil
		}
		mc := fileCfg.Marquee
		switch {
		case mc.TextsFile != nil && *mc.TextsFile != "":
			texts, err := content.LoadLines(*mc.TextsFile)
			if err != nil {
				return host.ConfigReload{}, fmt.Errorf("failed to load texts-file: %w", err)
			}
			reload.Texts = texts
		case mc.Texts != nil && len(*mc.Texts) > 0:
			reload.Texts = append([]string(nil), (*mc.Texts)...)
		}
		return reload, nil
	}
}

func pair(name string, values []float64) ([2]float64, error) {
	if len(values) != 2 {
		return [2]float64{}, fmt.Errorf("--%s must have exactly two values, got %d", name, len(values))
	}
	return [2]float64{values[0], values[1]}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatSliceConfig(cmd *cobra.Command, name string, target, value *[]float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]float64(nil), (*value)...)
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	d := tui.DefaultConfig()
	return fmt.Sprintf(`# marquee configuration
# Uncomment a value to enable it. CLI flags override config values.

[marquee]
# velocity = %g            # Base velocity in columns per second
# direction = true         # Force every row forward (true) or backward (false)
# copies = %d               # Copies of each text laid end to end
# damping = %g             # Scroll velocity spring damping
# stiffness = %g          # Scroll velocity spring stiffness
# map-in = [%g, %g]       # Scroll velocity input range
# map-out = [%g, %g]         # Velocity factor output range
# clamp = false            # Clamp the factor to map-out
# margin = %g              # Visibility margin in units
# row-height = %g          # Units per scrolled line
# texts = ["one", "two"]   # Marquee texts
# texts-file = ""          # File with one text per line
# content-file = ""        # Page copy between rows

[motion]
# reduced = false          # Reduced motion; edits apply while running

[log]
# file = ""                # Log file path
# debug = false            # Log at debug level
`,
		d.Velocity,
		d.Copies,
		d.Damping,
		d.Stiffness,
		d.MapIn[0], d.MapIn[1],
		d.MapOut[0], d.MapOut[1],
		d.Margin,
		d.RowHeight,
	)
}

func validateConfig(cfg model.Config) error {
	if math.IsNaN(cfg.Velocity) || math.IsInf(cfg.Velocity, 0) {
		return fmt.Errorf("--velocity must be a finite number")
	}
	if cfg.Copies < 2 {
		return fmt.Errorf("--copies must be >= 2")
	}
	if !(cfg.Damping > 0) {
		return fmt.Errorf("--damping must be > 0")
	}
	if !(cfg.Stiffness > 0) {
		return fmt.Errorf("--stiffness must be > 0")
	}
	if cfg.MapIn[0] == cfg.MapIn[1] {
		return fmt.Errorf("--map-in must span a non-empty range")
	}
	for _, v := range append(cfg.MapIn[:], cfg.MapOut[:]...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("--map-in and --map-out must be finite")
		}
	}
	if cfg.Margin < 0 {
		return fmt.Errorf("--margin must be >= 0")
	}
	if !(cfg.RowHeight > 0) {
		return fmt.Errorf("--row-height must be > 0")
	}
	if len(cfg.Texts) == 0 {
		return fmt.Errorf("at least one text is required")
	}
	return nil
}
