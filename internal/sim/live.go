package sim

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/marquee"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// LiveConfig configures a plain real-time marquee line.
type LiveConfig struct {
	Text          string
	Options       marquee.Options
	Interval      time.Duration
	ReducedMotion bool
}

type alwaysVisible struct{}

func (alwaysVisible) ObserveIntersection(_ marquee.Element, _ float64, onChange func(bool)) marquee.CancelFunc {
	onChange(true)
	return func() {}
}

// Live animates one marquee line on out until ctx is done. When tty is a
// terminal its resizes are picked up through a ResizeWatcher; a nil tty uses
// an 80 column line.
func Live(ctx context.Context, cfg LiveConfig, out io.Writer, tty *os.File, logger *zap.Logger) error {
	if strings.TrimSpace(cfg.Text) == "" {
		return fmt.Errorf("text must not be empty")
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = host.DefaultFrameInterval
	}

	layout := host.NewLayout()
	width, height := fallbackWidth, fallbackHeight
	if tty != nil {
		if w, h, ok := host.TerminalSize(tty); ok {
			width, height = w, h
		}
	}
	layout.Resize(width, height)

	var frames host.ManualScheduler
	copyEl := host.NewCopy("live", cfg.Text)
	engine, err := marquee.New(cfg.Options, marquee.Host{
		Frames:        &frames,
		Sizes:         layout,
		Intersections: alwaysVisible{},
		Motion:        host.NewMotionPreference(cfg.ReducedMotion),
		Copy:          copyEl,
		Container:     copyEl,
	}, logger)
	if err != nil {
		return err
	}
	strip := marquee.NewStrip()
	engine.OnStateChange(func(s marquee.RunState) {
		if !s.Running() {
			strip.Release()
		}
	})
	engine.Mount()
	defer engine.Unmount()

	var resizes <-chan host.ResizeEvent
	if tty != nil && host.IsTerminal(tty) {
		watcher := host.NewResizeWatcher(tty, host.DefaultResizeThrottle)
		watcher.Start(ctx)
		defer watcher.Stop()
		resizes = watcher.Events()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			_, err := fmt.Fprintln(out)
			return err
		case ev := <-resizes:
			layout.Resize(ev.Width, ev.Height)
		case now := <-ticker.C:
			frames.Fire(float64(now.Sub(start)) / float64(time.Millisecond))
			w, _ := layout.Size()
			line := strip.Render(layout.Typeset(copyEl.Text()), cfg.Options.CopyCount, engine.Position(), w-1, engine.State().Running())
			if _, err := io.WriteString(out, frameLine(line, w-1)); err != nil {
				return fmt.Errorf("failed to write frame: %w", err)
			}
		}
	}
}

// frameLine pads line to width, returns to column 0 first and clears the
// rest of the terminal line after it.
func frameLine(line string, width int) string {
	return "\r" + runewidth.FillRight(line, max(width, 0)) + "\x1b[K"
}
