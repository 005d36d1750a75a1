package marquee

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	r     rune
	width int
}

// Strip lays out copies of the content end to end and cuts the visible
// window at the wrapped position. The laid-out strip is only kept between
// frames while the engine is running.
type Strip struct {
	content   string
	copies    int
	copyWidth int
	cells     []cell
	cached    bool
}

// NewStrip returns an empty strip.
func NewStrip() *Strip {
	return &Strip{}
}

// Cached reports whether a laid-out strip is being held.
func (s *Strip) Cached() bool {
	return s.cached
}

// Release drops the laid-out strip.
func (s *Strip) Release() {
	s.cells = nil
	s.cached = false
}

// Render returns viewWidth cells of the content repeated end to end,
// translated by position. position is expected in [-copyWidth, 0]. At
// least copies copies are laid out, and more when the view is wider than
// copies-1 of them, so the window never runs past the end of the strip.
func (s *Strip) Render(content string, copies int, position float64, viewWidth int, running bool) string {
	if viewWidth <= 0 || content == "" || copies <= 0 {
		return ""
	}
	cells := s.layout(content, copies, viewWidth, running)
	start := 0
	if finite(position) && position < 0 {
		start = int(math.Floor(-position))
	}
	return cut(cells, start, viewWidth)
}

func (s *Strip) layout(content string, copies, viewWidth int, running bool) []cell {
	if running && s.cached && s.content == content && s.copies == coverCopies(copies, s.copyWidth, viewWidth) {
		return s.cells
	}
	one := make([]cell, 0, len(content))
	copyWidth := 0
	for _, r := range content {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		one = append(one, cell{r: r, width: w})
		copyWidth += w
	}
	if copyWidth == 0 {
		s.Release()
		return nil
	}
	copies = coverCopies(copies, copyWidth, viewWidth)
	cells := make([]cell, 0, len(one)*copies)
	for i := 0; i < copies; i++ {
		cells = append(cells, one...)
	}
	if running {
		s.content, s.copies, s.copyWidth, s.cells, s.cached = content, copies, copyWidth, cells, true
	} else {
		s.Release()
	}
	return cells
}

// coverCopies returns how many copies fill viewWidth from any start column
// within the first copy.
func coverCopies(copies, copyWidth, viewWidth int) int {
	return max(copies, (viewWidth+copyWidth-1)/copyWidth+1)
}

// cut returns the columns [start, start+width) of cells. Wide runes split
// by either edge are replaced by spaces.
func cut(cells []cell, start, width int) string {
	var b strings.Builder
	col := 0
	written := 0
	for _, c := range cells {
		if written >= width {
			break
		}
		end := col + c.width
		switch {
		case end <= start:
		case col < start:
			for i := start; i < end && written < width; i++ {
				b.WriteByte(' ')
				written++
			}
		case written+c.width > width:
			for written < width {
				b.WriteByte(' ')
				written++
			}
		default:
			b.WriteRune(c.r)
			written += c.width
		}
		col = end
	}
	return b.String()
}
