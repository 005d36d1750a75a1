package stats

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/marquee/internal/model"
	"github.com/verte-zerg/marquee/internal/store"
)

const (
	terminalWidthBackup = 80
	minTextWidth        = 12
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs   []model.RunAggregate
	Rows   []model.RowTotal
	Window int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	totals, err := st.RowTotals(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	return Report{Runs: runs, Rows: totals, Window: cfg.Window}, nil
}

// WriteReport renders report to w, sized to the terminal when w is one.
func WriteReport(w io.Writer, report Report) error {
	width := terminalWidth(w)
	if shouldUseColor(w) {
		if _, err := io.WriteString(w, titleStyle.Render("marquee stats")+"\n\n"); err != nil {
			return err
		}
	}
	if err := RenderSummary(w, report.Runs); err != nil {
		return err
	}
	if len(report.Runs) == 0 {
		return nil
	}
	if err := RenderTrend(w, report.Runs, report.Window, width); err != nil {
		return err
	}
	if err := RenderRunTable(w, report.Runs); err != nil {
		return err
	}
	return RenderRowTable(w, report.Rows, max(minTextWidth, width/3))
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
