package host

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/marquee/internal/marquee"
)

// DefaultRowHeight converts scrolled rows into marquee units.
const DefaultRowHeight = 16

// Slot is a line of the page reserved for a marquee row.
type Slot struct {
	name string
	line int
}

// ElementID implements marquee.Element.
func (s *Slot) ElementID() string {
	return s.name
}

// Line returns the content line the slot occupies.
func (s *Slot) Line() int {
	return s.line
}

type intersectionSub struct {
	slot       *Slot
	marginRows int
	onChange   func(bool)
	visible    bool
}

// Page is the scroll container: a viewport over content lines with slots
// for marquee rows. It reports scroll samples and slot visibility.
type Page struct {
	vp         viewport.Model
	rowHeight  float64
	now        func() time.Time
	epoch      time.Time
	lastOffset int

	scrollSubs map[int]func(marquee.Sample)
	interSubs  map[int]*intersectionSub
	nextID     int
}

// NewPage returns an empty page. now may be nil to use time.Now.
func NewPage(rowHeight float64, now func() time.Time) *Page {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if now == nil {
		now = time.Now
	}
	return &Page{
		vp:         viewport.New(0, 0),
		rowHeight:  rowHeight,
		now:        now,
		epoch:      now(),
		scrollSubs: map[int]func(marquee.Sample){},
		interSubs:  map[int]*intersectionSub{},
	}
}

// NewSlot reserves line for a marquee row.
func (p *Page) NewSlot(name string, line int) *Slot {
	return &Slot{name: name, line: line}
}

// PlaceSlot moves slot to line and re-evaluates visibility.
func (p *Page) PlaceSlot(s *Slot, line int) {
	if s.line == line {
		return
	}
	s.line = line
	p.notifyIntersections()
}

// SetSize resizes the viewport.
func (p *Page) SetSize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
	p.afterScroll()
	p.notifyIntersections()
}

// SetContent replaces the page lines.
func (p *Page) SetContent(lines []string) {
	p.vp.SetContent(strings.Join(lines, "\n"))
	p.afterScroll()
}

// Update forwards keys and mouse events to the viewport.
func (p *Page) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	p.afterScroll()
	return cmd
}

// ScrollBy moves the viewport by rows lines.
func (p *Page) ScrollBy(rows int) {
	p.vp.SetYOffset(p.vp.YOffset + rows)
	p.afterScroll()
}

// YOffset returns the first visible line.
func (p *Page) YOffset() int {
	return p.vp.YOffset
}

// ScrollPercent returns how far the page is scrolled.
func (p *Page) ScrollPercent() float64 {
	return p.vp.ScrollPercent()
}

// Epoch is the origin of scroll sample timestamps.
func (p *Page) Epoch() time.Time {
	return p.epoch
}

// Height returns the viewport height.
func (p *Page) Height() int {
	return p.vp.Height
}

// ViewRow returns the viewport row showing slot, or false when the slot is
// scrolled out.
func (p *Page) ViewRow(s *Slot) (int, bool) {
	row := s.line - p.vp.YOffset
	return row, row >= 0 && row < p.vp.Height
}

// View renders the visible lines.
func (p *Page) View() string {
	return p.vp.View()
}

// SubscribeScroll implements marquee.ScrollSource. The current offset is
// reported immediately as the baseline sample.
func (p *Page) SubscribeScroll(onSample func(marquee.Sample)) marquee.CancelFunc {
	if onSample == nil {
		return func() {}
	}
	id := p.register()
	p.scrollSubs[id] = onSample
	onSample(p.sample())
	return func() {
		delete(p.scrollSubs, id)
	}
}

// ObserveIntersection implements marquee.IntersectionObserver for slots.
// The margin is given in marquee units and rounded up to whole rows.
func (p *Page) ObserveIntersection(el marquee.Element, margin float64, onChange func(bool)) marquee.CancelFunc {
	slot, ok := el.(*Slot)
	if !ok || onChange == nil {
		return func() {}
	}
	id := p.register()
	sub := &intersectionSub{
		slot:       slot,
		marginRows: int(math.Ceil(margin / p.rowHeight)),
		onChange:   onChange,
	}
	p.interSubs[id] = sub
	sub.visible = p.intersects(sub)
	onChange(sub.visible)
	return func() {
		delete(p.interSubs, id)
	}
}

// Subscriptions returns the number of active scroll and intersection
// subscriptions.
func (p *Page) Subscriptions() int {
	return len(p.scrollSubs) + len(p.interSubs)
}

func (p *Page) register() int {
	id := p.nextID
	p.nextID++
	return id
}

func (p *Page) sample() marquee.Sample {
	return marquee.Sample{
		TimestampMs: durationMs(p.now().Sub(p.epoch)),
		OffsetPx:    float64(p.vp.YOffset) * p.rowHeight,
	}
}

func (p *Page) afterScroll() {
	if p.vp.YOffset == p.lastOffset {
		return
	}
	p.lastOffset = p.vp.YOffset
	s := p.sample()
	for _, fn := range p.scrollSubs {
		fn(s)
	}
	p.notifyIntersections()
}

func (p *Page) notifyIntersections() {
	for _, sub := range p.interSubs {
		visible := p.intersects(sub)
		if visible == sub.visible {
			continue
		}
		sub.visible = visible
		sub.onChange(visible)
	}
}

func (p *Page) intersects(sub *intersectionSub) bool {
	if p.vp.Height <= 0 {
		return false
	}
	top := p.vp.YOffset - sub.marginRows
	bottom := p.vp.YOffset + p.vp.Height + sub.marginRows
	return sub.slot.line >= top && sub.slot.line < bottom
}
