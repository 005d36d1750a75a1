package host

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// DefaultResizeThrottle is the minimum spacing of resize notifications.
const DefaultResizeThrottle = 100 * time.Millisecond

// ResizeEvent carries a terminal size.
type ResizeEvent struct {
	Width  int
	Height int
}

// ResizeWatcher is the fallback resize listener for loops that do not run
// under Bubble Tea. It listens for window-change signals where the platform
// has them and polls otherwise, and coalesces bursts to one event per
// throttle interval.
type ResizeWatcher struct {
	fd       int
	throttle time.Duration
	events   chan ResizeEvent
	stopCh   chan struct{}
	doneCh   chan struct{}
	once     sync.Once
	started  bool
	last     ResizeEvent
}

// NewResizeWatcher watches the terminal attached to f.
func NewResizeWatcher(f *os.File, throttle time.Duration) *ResizeWatcher {
	if throttle <= 0 {
		throttle = DefaultResizeThrottle
	}
	return &ResizeWatcher{
		fd:       int(f.Fd()),
		throttle: throttle,
		events:   make(chan ResizeEvent, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalSize returns the size of the terminal attached to f, or false.
func TerminalSize(f *os.File) (int, int, bool) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// Events delivers the latest terminal size.
func (r *ResizeWatcher) Events() <-chan ResizeEvent {
	return r.events
}

// Start begins watching until ctx is done or Stop is called.
func (r *ResizeWatcher) Start(ctx context.Context) {
	if r.started {
		return
	}
	r.started = true
	notify, stop := resizeSignals()
	go func() {
		defer close(r.doneCh)
		defer stop()
		r.loop(ctx, notify)
	}()
}

// Stop ends the watch and waits for the loop to exit. Start and Stop are
// called from the same goroutine.
func (r *ResizeWatcher) Stop() {
	if !r.started {
		return
	}
	r.once.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

func (r *ResizeWatcher) loop(ctx context.Context, notify <-chan os.Signal) {
	poll := time.NewTicker(r.throttle)
	defer poll.Stop()

	dirty := true
	var lastSent time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-notify:
			dirty = true
		case <-poll.C:
			if notify == nil {
				dirty = true
			}
		}
		if !dirty || time.Since(lastSent) < r.throttle {
			continue
		}
		dirty = false
		w, h, err := term.GetSize(r.fd)
		if err != nil || w <= 0 || h <= 0 {
			continue
		}
		ev := ResizeEvent{Width: w, Height: h}
		if ev == r.last {
			continue
		}
		r.last = ev
		lastSent = time.Now()
		select {
		case r.events <- ev:
		default:
			select {
			case <-r.events:
			default:
			}
			r.events <- ev
		}
	}
}
