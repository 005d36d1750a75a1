package host

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/marquee/internal/marquee"
)

// WideBreakpoint is the terminal width from which copies are letter-spaced.
const WideBreakpoint = 100

const (
	separator     = " / "
	wideSeparator = "   *   "
)

// Copy is one repeated unit of marquee content.
type Copy struct {
	name string
	text string
}

// NewCopy returns a copy element for text.
func NewCopy(name, text string) *Copy {
	return &Copy{name: name, text: text}
}

// ElementID implements marquee.Element.
func (c *Copy) ElementID() string {
	return c.name
}

// Text returns the raw copy text.
func (c *Copy) Text() string {
	return c.text
}

type sizeSub struct {
	copy     *Copy
	onResize func(float64)
	last     float64
}

// Layout measures copies for the current terminal width and notifies
// observers when a measurement changes. A zero terminal width means the
// layout has not happened yet and nothing is measured.
type Layout struct {
	width  int
	height int
	subs   map[int]*sizeSub
	nextID int
}

// NewLayout returns a layout with no known terminal size.
func NewLayout() *Layout {
	return &Layout{subs: map[int]*sizeSub{}}
}

// Size returns the terminal size.
func (l *Layout) Size() (int, int) {
	return l.width, l.height
}

// Resize records a new terminal size and re-measures every observed copy.
func (l *Layout) Resize(width, height int) {
	if width == l.width && height == l.height {
		return
	}
	l.width, l.height = width, height
	for _, sub := range l.subs {
		l.measure(sub)
	}
}

// SetText changes a copy's text and re-measures observers of it.
func (l *Layout) SetText(c *Copy, text string) {
	if c.text == text {
		return
	}
	c.text = text
	for _, sub := range l.subs {
		if sub.copy == c {
			l.measure(sub)
		}
	}
}

// ObserveSize implements marquee.SizeObserver for *Copy elements.
func (l *Layout) ObserveSize(el marquee.Element, onResize func(float64)) marquee.CancelFunc {
	c, ok := el.(*Copy)
	if !ok || onResize == nil {
		return func() {}
	}
	id := l.nextID
	l.nextID++
	sub := &sizeSub{copy: c, onResize: onResize}
	l.subs[id] = sub
	l.measure(sub)
	return func() {
		delete(l.subs, id)
	}
}

// Observers returns the number of active size subscriptions.
func (l *Layout) Observers() int {
	return len(l.subs)
}

// Typeset returns the rendered form of a copy's text at the current width.
func (l *Layout) Typeset(text string) string {
	return Typeset(text, l.width)
}

// Measure returns the cell width of text once typeset. It uses the same
// width table as marquee.Strip so measured and rendered copies agree.
func (l *Layout) Measure(text string) int {
	return runewidth.StringWidth(l.Typeset(text))
}

func (l *Layout) measure(sub *sizeSub) {
	if l.width <= 0 {
		return
	}
	w := float64(l.Measure(sub.copy.text))
	if w == sub.last {
		return
	}
	sub.last = w
	sub.onResize(w)
}

// Typeset letter-spaces text on wide terminals and appends the separator
// that divides consecutive copies.
func Typeset(text string, termWidth int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if termWidth < WideBreakpoint {
		return text + separator
	}
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(wideSeparator)
	return b.String()
}
