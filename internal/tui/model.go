// Package tui provides the Bubble Tea marquee page.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/marquee/internal/content"
	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/marquee"
	"github.com/verte-zerg/marquee/internal/model"
	"github.com/verte-zerg/marquee/internal/store"
)

const contentRatio = 0.70

var (
	rowStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
	}
	contentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type configMsg host.ConfigReload

type configClosedMsg struct{}

// Row is one marquee line on the page.
type Row struct {
	copy   *host.Copy
	slot   *host.Slot
	frames *host.TickScheduler
	engine *marquee.Engine
	strip  *marquee.Strip
	style  lipgloss.Style
}

// Engine returns the row's marquee engine.
func (r *Row) Engine() *marquee.Engine {
	return r.engine
}

// Options configures a Model.
type Options struct {
	Config model.Config
	// Store receives run telemetry on quit; nil disables it.
	Store  *store.Store
	Logger *zap.Logger
	// ConfigChanges delivers config reloads from outside the UI loop, such
	// as a config file watcher.
	ConfigChanges <-chan host.ConfigReload
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model implements the Bubble Tea marquee page.
type Model struct {
	config  model.Config
	store   *store.Store
	logger  *zap.Logger
	configC <-chan host.ConfigReload
	now     func() time.Time
	keys    keyMap

	page   *host.Page
	layout *host.Layout
	motion *host.MotionPreference
	rows   []*Row
	text   string

	width     int
	height    int
	debug     bool
	startedAt time.Time
	closed    bool
	err       error
}

// DefaultConfig returns the settings used when neither the config file nor
// flags set a value.
func DefaultConfig() model.Config {
	opts := marquee.DefaultOptions()
	return model.Config{
		Texts:     content.DefaultTexts,
		Velocity:  opts.BaseVelocity,
		Copies:    opts.CopyCount,
		Damping:   opts.Damping,
		Stiffness: opts.Stiffness,
		MapIn:     [2]float64{opts.Mapping.InMin, opts.Mapping.InMax},
		MapOut:    [2]float64{opts.Mapping.OutMin, opts.Mapping.OutMax},
		Clamp:     opts.Mapping.Clamp,
		Margin:    opts.VisibilityMargin,
		RowHeight: host.DefaultRowHeight,
	}
}

// RowOptions builds the engine options for the row at index. Rows alternate
// direction unless the config forces one.
func RowOptions(cfg model.Config, index int) marquee.Options {
	opts := marquee.DefaultOptions()
	opts.Name = fmt.Sprintf("row-%d", index)
	velocity := cfg.Velocity
	switch {
	case cfg.Direction != nil && *cfg.Direction:
		velocity = math.Abs(velocity)
	case cfg.Direction != nil:
		velocity = -math.Abs(velocity)
	case index%2 == 1:
		velocity = -velocity
	}
	opts.BaseVelocity = velocity
	opts.CopyCount = cfg.Copies
	opts.Damping = cfg.Damping
	opts.Stiffness = cfg.Stiffness
	opts.Mapping = marquee.Mapping{
		InMin:  cfg.MapIn[0],
		InMax:  cfg.MapIn[1],
		OutMin: cfg.MapOut[0],
		OutMax: cfg.MapOut[1],
		Clamp:  cfg.Clamp,
	}
	opts.VisibilityMargin = cfg.Margin
	return opts
}

// NewModel builds the page and mounts one engine per text.
func NewModel(opts Options) (*Model, error) {
	cfg := opts.Config
	if len(cfg.Texts) == 0 {
		return nil, fmt.Errorf("at least one text is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	text := strings.Join(cfg.ContentLines, "\n")
	if strings.TrimSpace(text) == "" {
		text = content.DefaultContent
	}

	m := &Model{
		config:    cfg,
		store:     opts.Store,
		logger:    logger,
		configC:   opts.ConfigChanges,
		now:       now,
		keys:      defaultKeyMap(),
		page:      host.NewPage(cfg.RowHeight, now),
		layout:    host.NewLayout(),
		motion:    host.NewMotionPreference(cfg.ReducedMotion),
		text:      text,
		startedAt: now(),
	}
	for i, t := range cfg.Texts {
		row, err := m.newRow(i, t)
		if err != nil {
			m.unmount()
			return nil, err
		}
		m.rows = append(m.rows, row)
	}
	for _, r := range m.rows {
		r.engine.Mount()
	}
	return m, nil
}

func (m *Model) newRow(index int, text string) (*Row, error) {
	name := fmt.Sprintf("row-%d", index)
	r := &Row{
		copy:   host.NewCopy(name, text),
		slot:   m.page.NewSlot(name, -1),
		frames: host.NewTickScheduler(host.DefaultFrameInterval),
		strip:  marquee.NewStrip(),
		style:  rowStyles[index%len(rowStyles)],
	}
	r.frames.SetOrigin(m.page.Epoch())
	engine, err := marquee.New(RowOptions(m.config, index), marquee.Host{
		Frames:        r.frames,
		Sizes:         m.layout,
		Intersections: m.page,
		Motion:        m.motion,
		Scroll:        m.page,
		Copy:          r.copy,
		Container:     r.slot,
	}, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	engine.OnStateChange(func(s marquee.RunState) {
		if !s.Running() {
			r.strip.Release()
		}
	})
	r.engine = engine
	return r, nil
}

// Rows returns the marquee rows in page order.
func (m *Model) Rows() []*Row {
	return m.rows
}

// Err returns the error from persisting the run, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.rows)+1)
	for _, r := range m.rows {
		cmds = append(cmds, r.frames.Tick())
	}
	cmds = append(cmds, waitForConfig(m.configC))
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case host.FrameMsg:
		for _, r := range m.rows {
			if r.frames.ID() == msg.ID {
				return m, r.frames.Update(msg)
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout.Resize(msg.Width, msg.Height)
		m.relayout()
		return m, nil
	case configMsg:
		m.applyConfig(host.ConfigReload(msg))
		return m, waitForConfig(m.configC)
	case configClosedMsg:
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Motion):
			m.motion.Toggle()
			return m, nil
		case key.Matches(msg, m.keys.Debug):
			m.debug = !m.debug
			m.relayout()
			return m, nil
		}
	}
	return m, m.page.Update(msg)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lines := strings.Split(m.page.View(), "\n")
	for _, r := range m.rows {
		idx, ok := m.page.ViewRow(r.slot)
		if !ok || idx >= len(lines) {
			continue
		}
		lines[idx] = m.renderRow(r)
	}
	return strings.Join(lines, "\n") + "\n" + m.renderFooter()
}

// Close unmounts every engine and stores the run. Later calls do nothing.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.unmount()
	if err := m.persist(); err != nil {
		m.err = err
		m.logger.Error("failed to save run", zap.Error(err))
	}
}

// applyConfig applies a config reload. New texts replace the rows' copy in
// order and are re-measured; the number of rows does not change.
func (m *Model) applyConfig(reload host.ConfigReload) {
	m.motion.Set(reload.ReducedMotion)
	for i, text := range reload.Texts {
		if i >= len(m.rows) {
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		m.layout.SetText(m.rows[i].copy, text)
	}
}

func (m *Model) unmount() {
	for _, r := range m.rows {
		r.engine.Unmount()
		r.strip.Release()
	}
}

func (m *Model) persist() error {
	if m.store == nil {
		return nil
	}
	endedAt := m.now()
	run := model.RunRecord{
		StartedAt:     m.startedAt,
		EndedAt:       endedAt,
		Rows:          len(m.rows),
		Velocity:      m.config.Velocity,
		Copies:        m.config.Copies,
		ReducedMotion: m.motion.ReducedMotion(),
		DurationMs:    endedAt.Sub(m.startedAt).Milliseconds(),
	}
	records := make([]model.RowRecord, 0, len(m.rows))
	for i, r := range m.rows {
		st := r.engine.Snapshot().Stats
		records = append(records, model.RowRecord{
			Row:            i,
			Text:           r.copy.Text(),
			Frames:         st.Frames,
			Processed:      st.Processed,
			Throttled:      st.Throttled,
			Dropped:        st.Dropped,
			Suspended:      st.Suspended,
			DirectionFlips: st.DirectionFlips,
			Distance:       st.Distance,
			Cycles:         st.Cycles,
		})
	}
	_, err := m.store.InsertRun(context.Background(), run, records)
	return err
}

// relayout rebuilds the page lines for the current size and moves each row
// slot to its new line. Nothing is laid out before the first size.
func (m *Model) relayout() {
	if m.width <= 0 {
		return
	}
	pageHeight := max(m.height-m.footerHeight(), 0)
	contentWidth := max(int(float64(m.width)*contentRatio), 1)
	indent := strings.Repeat(" ", max((m.width-contentWidth)/2, 0))

	block := content.Wrap(m.text, contentWidth)
	for i, line := range block {
		if line != "" {
			block[i] = indent + contentStyle.Render(line)
		}
	}

	var lines []string
	slots := make([]int, len(m.rows))
	for i := range m.rows {
		lines = append(lines, block...)
		lines = append(lines, "")
		slots[i] = len(lines)
		lines = append(lines, "", "")
	}
	lines = append(lines, block...)

	m.page.SetContent(lines)
	m.page.SetSize(m.width, pageHeight)
	for i, r := range m.rows {
		m.page.PlaceSlot(r.slot, slots[i])
	}
}

func (m *Model) renderRow(r *Row) string {
	text := m.layout.Typeset(r.copy.Text())
	line := r.strip.Render(text, r.engine.Options().CopyCount, r.engine.Position(), m.width, r.engine.State().Running())
	return r.style.Render(line)
}

func (m *Model) footerHeight() int {
	if m.debug {
		return 1 + len(m.rows)
	}
	return 1
}

func (m *Model) renderFooter() string {
	motion := "off"
	if m.motion.ReducedMotion() {
		motion = "on"
	}
	segments := []string{
		helpText(m.keys.Quit),
		fmt.Sprintf("%s: %s", helpText(m.keys.Motion), motion),
		helpText(m.keys.Debug),
		fmt.Sprintf("%s %d%%", helpText(m.keys.Scroll), int(math.Round(m.page.ScrollPercent()*100))),
	}
	lines := []string{footerStyle.Render(strings.Join(segments, " · "))}
	if m.debug {
		for _, r := range m.rows {
			lines = append(lines, footerStyle.Render(debugLine(r.engine.Snapshot())))
		}
	}
	return strings.Join(lines, "\n")
}

func debugLine(s marquee.Snapshot) string {
	return fmt.Sprintf("%-6s %-24s pos %8.1f  factor %+6.2f  scroll %+8.1f/s  cycles %.2f",
		s.Name, s.State, s.Position, s.Factor, s.Smoothed, s.Stats.Cycles)
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}

func waitForConfig(ch <-chan host.ConfigReload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		reload, ok := <-ch
		if !ok {
			return configClosedMsg{}
		}
		return configMsg(reload)
	}
}
