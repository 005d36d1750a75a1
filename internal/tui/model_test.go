package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/marquee/internal/host"
	"github.com/verte-zerg/marquee/internal/marquee"
	"github.com/verte-zerg/marquee/internal/model"
	"github.com/verte-zerg/marquee/internal/store"
)

func longContent() []string {
	return []string{strings.Repeat("lorem ipsum dolor sit amet ", 32)}
}

func newTestModel(t *testing.T, mutate func(*Options)) *Model {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Texts = []string{"alpha", "beta"}
	cfg.ContentLines = longContent()
	opts := Options{Config: cfg}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := NewModel(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func resize(m *Model, w, h int) {
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func keyPress(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func TestRowOptionsAlternateDirection(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100.0, RowOptions(cfg, 0).BaseVelocity)
	assert.Equal(t, -100.0, RowOptions(cfg, 1).BaseVelocity)

	forward := true
	cfg.Direction = &forward
	assert.Equal(t, 100.0, RowOptions(cfg, 1).BaseVelocity)

	backward := false
	cfg.Direction = &backward
	assert.Equal(t, -100.0, RowOptions(cfg, 0).BaseVelocity)
}

func TestNewModelRequiresTexts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Texts = nil
	_, err := NewModel(Options{Config: cfg})
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Copies = 1
	_, err = NewModel(Options{Config: cfg})
	require.Error(t, err)
}

func TestModelIdleUntilSized(t *testing.T) {
	m := newTestModel(t, nil)
	for _, r := range m.Rows() {
		assert.Equal(t, marquee.PhaseIdle, r.Engine().State().Phase)
	}
	assert.Empty(t, m.View())
}

func TestModelGatesRowsByVisibility(t *testing.T) {
	m := newTestModel(t, nil)
	resize(m, 80, 24)

	rows := m.Rows()
	require.Len(t, rows, 2)
	require.Less(t, rows[0].slot.Line(), m.page.Height())
	require.Greater(t, rows[1].slot.Line(), m.page.Height()+4)

	assert.Equal(t, marquee.PhaseRunning, rows[0].Engine().State().Phase)
	assert.Equal(t, marquee.RunState{Phase: marquee.PhaseSuspended, Reason: marquee.ReasonOffscreen}, rows[1].Engine().State())
	assert.Positive(t, rows[0].Engine().Width())

	m.page.ScrollBy(rows[1].slot.Line())
	assert.Equal(t, marquee.PhaseRunning, rows[1].Engine().State().Phase)
	assert.Equal(t, marquee.PhaseSuspended, rows[0].Engine().State().Phase)
}

func TestModelRendersRowInView(t *testing.T) {
	m := newTestModel(t, nil)
	resize(m, 80, 24)
	out := m.View()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "q quit")
	assert.Len(t, strings.Split(out, "\n"), 24)
}

func TestModelDispatchesFrames(t *testing.T) {
	m := newTestModel(t, nil)
	resize(m, 80, 24)
	row := m.Rows()[0]
	origin := m.page.Epoch()

	_, cmd := m.Update(host.FrameMsg{ID: row.frames.ID(), Gen: 1, Time: origin.Add(100 * time.Millisecond)})
	require.NotNil(t, cmd)
	m.Update(host.FrameMsg{ID: row.frames.ID(), Gen: 1, Time: origin.Add(116 * time.Millisecond)})
	assert.InDelta(t, 1.6, row.Engine().Snapshot().Offset, 1e-6)

	_, cmd = m.Update(host.FrameMsg{ID: -1, Gen: 1, Time: origin})
	assert.Nil(t, cmd)
}

func TestModelMotionToggleAndBridge(t *testing.T) {
	changes := make(chan host.ConfigReload, 1)
	m := newTestModel(t, func(o *Options) { o.ConfigChanges = changes })
	resize(m, 80, 24)

	keyPress(m, "m")
	for _, r := range m.Rows() {
		assert.Equal(t, marquee.ReasonReducedMotion, r.Engine().State().Reason)
		assert.Zero(t, r.Engine().Position())
	}
	assert.Contains(t, m.renderFooter(), "reduced motion: on")

	changes <- host.ConfigReload{ReducedMotion: false}
	msg := waitForConfig(changes)()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, marquee.PhaseRunning, m.Rows()[0].Engine().State().Phase)

	close(changes)
	assert.Equal(t, configClosedMsg{}, waitForConfig(changes)())
}

func TestModelReloadedTextsRemeasure(t *testing.T) {
	m := newTestModel(t, nil)
	resize(m, 80, 24)
	rows := m.Rows()
	// "alpha / " is eight cells.
	require.Equal(t, 8.0, rows[0].Engine().Width())
	require.Equal(t, 7.0, rows[1].Engine().Width())

	m.Update(configMsg(host.ConfigReload{Texts: []string{"longer text", "", "extra"}}))
	assert.Equal(t, "longer text", rows[0].copy.Text())
	assert.Equal(t, 14.0, rows[0].Engine().Width())
	assert.Equal(t, "beta", rows[1].copy.Text())
	assert.Equal(t, 7.0, rows[1].Engine().Width())
	assert.Len(t, m.Rows(), 2)
}

func TestModelDebugFooter(t *testing.T) {
	m := newTestModel(t, nil)
	resize(m, 80, 24)
	keyPress(m, "d")
	footer := m.renderFooter()
	assert.Contains(t, footer, "row-0")
	assert.Contains(t, footer, "row-1")
	assert.Contains(t, footer, "suspended(offscreen)")
	assert.Equal(t, 24-3, m.page.Height())
}

func TestModelQuitPersistsRun(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "marquee.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m := newTestModel(t, func(o *Options) { o.Store = st })
	resize(m, 80, 24)
	cmd := keyPress(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	for _, r := range m.Rows() {
		assert.Equal(t, marquee.PhaseIdle, r.Engine().State().Phase)
		assert.False(t, r.frames.Active())
	}
	require.NoError(t, m.Err())

	runs, err := st.ListRuns(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Rows)

	m.Close()
	runs, err = st.ListRuns(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
