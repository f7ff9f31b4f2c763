// Package render rasterizes a scene into terminal cells.
//
// One scene unit is one cell, with y growing downward from the top of the
// canvas. Boxes are filled with a block glyph shaded by their effective
// opacity, circles become a single dot glyph at their centre, polylines are
// traced cell by cell and text is laid out by grapheme cluster. Every cell
// remembers the leaf node painted last into it, so a mouse position can be
// mapped back to a scene node.
package render

import (
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zjrosen/tracks/internal/scene"
)

// Cell is one terminal cell.
type Cell struct {
	// Glyph is the grapheme drawn in the cell. Empty means blank; the right
	// half of a wide grapheme is marked by Cont.
	Glyph    string
	Cont     bool
	Fg       string
	Bg       string
	Selected bool
}

// Canvas is a fixed-size grid of cells plus a pick buffer.
type Canvas struct {
	width, height int
	cells         []Cell
	pick          []*scene.Node
	renderer      *lipgloss.Renderer
}

// Option configures a canvas.
type Option func(*Canvas)

// WithProfile sets the colour profile used by String. The default is
// termenv.Ascii, which emits no escape codes.
func WithProfile(p termenv.Profile) Option {
	return func(c *Canvas) { c.renderer.SetColorProfile(p) }
}

// NewCanvas allocates a blank canvas. Negative sizes are treated as zero.
func NewCanvas(width, height int, opts ...Option) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{
		width:    width,
		height:   height,
		cells:    make([]Cell, width*height),
		pick:     make([]*scene.Node, width*height),
		renderer: lipgloss.NewRenderer(io.Discard),
	}
	c.renderer.SetColorProfile(termenv.Ascii)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Clear blanks every cell and the pick buffer.
func (c *Canvas) Clear() {
	clear(c.cells)
	clear(c.pick)
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// At returns the cell at (x, y), or a blank cell outside the canvas.
func (c *Canvas) At(x, y int) Cell {
	if !c.inside(x, y) {
		return Cell{}
	}
	return c.cells[y*c.width+x]
}

// NodeAt returns the leaf painted last at (x, y), or nil.
func (c *Canvas) NodeAt(x, y int) *scene.Node {
	if !c.inside(x, y) {
		return nil
	}
	return c.pick[y*c.width+x]
}

func (c *Canvas) set(x, y int, cell Cell, n *scene.Node) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y*c.width+x] = cell
	c.pick[y*c.width+x] = n
}

// Plain returns the glyphs only, one line per row, trailing blanks trimmed.
func (c *Canvas) Plain() string {
	lines := make([]string, c.height)
	for y := range c.height {
		var b strings.Builder
		for x := range c.width {
			cell := c.cells[y*c.width+x]
			switch {
			case cell.Cont:
			case cell.Glyph == "":
				b.WriteByte(' ')
			default:
				b.WriteString(cell.Glyph)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// String returns the styled rows joined by newlines. Runs of cells sharing
// a style are rendered together.
func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// Lines returns the styled rows, each exactly Width cells wide.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.height)
	for y := range c.height {
		var (
			b     strings.Builder
			run   strings.Builder
			style Cell
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(c.style(style).Render(run.String()))
			run.Reset()
		}
		for x := range c.width {
			cell := c.cells[y*c.width+x]
			if cell.Cont {
				continue
			}
			key := Cell{Fg: cell.Fg, Bg: cell.Bg, Selected: cell.Selected}
			if key != style {
				flush()
				style = key
			}
			if cell.Glyph == "" {
				run.WriteByte(' ')
			} else {
				run.WriteString(cell.Glyph)
			}
		}
		flush()
		lines[y] = b.String()
	}
	return lines
}

func (c *Canvas) style(k Cell) lipgloss.Style {
	s := c.renderer.NewStyle()
	if k.Fg != "" {
		s = s.Foreground(lipgloss.Color(k.Fg))
	}
	if k.Bg != "" {
		s = s.Background(lipgloss.Color(k.Bg))
	}
	if k.Selected {
		s = s.Reverse(true)
	}
	return s
}

// cellSpan returns the cells [lo, hi) touched by the interval [a, b).
// A zero-width interval still touches the cell it falls in.
func cellSpan(a, b float64) (int, int) {
	lo := int(math.Floor(a))
	hi := int(math.Ceil(b))
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
