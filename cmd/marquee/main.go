// Package main provides the CLI entrypoint for marquee.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/marquee/internal/config"
	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/logging"
	"github.com/verte-zerg/marquee/internal/model"
	"github.com/verte-zerg/marquee/internal/sim"
	"github.com/verte-zerg/marquee/internal/stats"
	"github.com/verte-zerg/marquee/internal/store"
	"github.com/verte-zerg/marquee/internal/tui"
)

const defaultStatsWindow = 5

var (
	configPath string

	flagVelocity      float64
	flagDirection     bool
	flagCopies        int
	flagDamping       float64
	flagStiffness     float64
	flagMapIn         []float64
	flagMapOut        []float64
	flagClamp         bool
	flagMargin        float64
	flagRowHeight     float64
	flagReducedMotion bool
	flagTextsFile     string
	flagContentFile   string
	flagDebug         bool
	flagLogFile       string
	flagPlain         bool

	statsSince  string
	statsLast   int
	statsWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := tui.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:           "marquee [texts...]",
		Short:         "Scroll-velocity-reactive terminal marquee",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMarqueeCmd,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	pf.Float64Var(&flagVelocity, "velocity", defaults.Velocity, "base velocity in columns per second")
	pf.BoolVar(&flagDirection, "direction", true, "force every row forward (true) or backward (false)")
	pf.IntVar(&flagCopies, "copies", defaults.Copies, "copies of each text laid end to end (>= 2)")
	pf.Float64Var(&flagDamping, "damping", defaults.Damping, "scroll velocity spring damping")
	pf.Float64Var(&flagStiffness, "stiffness", defaults.Stiffness, "scroll velocity spring stiffness")
	pf.Float64SliceVar(&flagMapIn, "map-in", defaults.MapIn[:], "scroll velocity input range a,b")
	pf.Float64SliceVar(&flagMapOut, "map-out", defaults.MapOut[:], "velocity factor output range a,b")
	pf.BoolVar(&flagClamp, "clamp", defaults.Clamp, "clamp the velocity factor to the output range")
	pf.Float64Var(&flagMargin, "margin", defaults.Margin, "visibility margin in units")
	pf.Float64Var(&flagRowHeight, "row-height", defaults.RowHeight, "units per scrolled line")
	pf.BoolVar(&flagReducedMotion, "reduced-motion", false, "start with reduced motion")

	rootCmd.Flags().StringVar(&flagTextsFile, "texts-file", "", "file with one marquee text per line")
	rootCmd.Flags().StringVar(&flagContentFile, "content-file", "", "file with the page copy between rows")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "log at debug level")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/marquee/marquee.log with --debug)")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "animate the first text on a single line without the page UI")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runMarqueeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveConfig(cmd, args, fileCfg)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	applyStringConfig(cmd, "log-file", &flagLogFile, fileCfg.Log.File)
	applyBoolConfig(cmd, "debug", &flagDebug, fileCfg.Log.Debug)
	logPath := flagLogFile
	if logPath == "" && flagDebug {
		logPath = config.DefaultLogPath()
	}
	logger, err := logging.New(logPath, flagDebug)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagPlain {
		opts := tui.RowOptions(cfg, 0)
		return sim.Live(ctx, sim.LiveConfig{
			Text:          cfg.Texts[0],
			Options:       opts,
			ReducedMotion: cfg.ReducedMotion,
		}, os.Stdout, os.Stdout, logger)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var configChanges <-chan host.ConfigReload
	liveTexts := len(args) == 0 && !cmd.Flags().Changed("texts-file")
	watcher, err := host.NewConfigWatcher(configPath, liveReload(configPath, liveTexts), logger)
	if err == nil {
		err = watcher.Start(ctx)
	}
	if err != nil {
		logger.Warn("config watch disabled", zap.String("path", configPath), zap.Error(err))
	} else {
		defer watcher.Stop()
		configChanges = watcher.Changes()
	}

	m, err := tui.NewModel(tui.Options{
		Config:        cfg,
		Store:         st,
		Logger:        logger,
		ConfigChanges: configChanges,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, runErr := program.Run()
	m.Close()
	if err := m.Err(); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run telemetry",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average window for the speed trend")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.StatsConfig{
		Since:  sinceTime,
		Last:   statsLast,
		Window: statsWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.WriteReport(cmd.OutOrStdout(), report)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
