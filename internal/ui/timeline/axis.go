package timeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/tracks/internal/scale"
	"github.com/zjrosen/tracks/internal/ui/styles"
)

// axisRows is the height of the time axis.
const axisRows = 2

// tickSpacing is the preferred distance between ticks in columns.
const tickSpacing = 12

// renderAxis draws a tick line and labels for the times [t0, t1] laid over
// width columns.
func renderAxis(t0, t1 float64, width int) []string {
	if width <= 0 {
		return []string{"", ""}
	}
	line := []rune(strings.Repeat("─", width))
	labels := []rune(strings.Repeat(" ", width))

	s := scale.NewLinear(t0, t1, 0, float64(width))
	next := 0
	for _, t := range s.Ticks(max(width/tickSpacing, 2)) {
		col := int(math.Round(s.Map(t)))
		if col < 0 || col >= width {
			continue
		}
		line[col] = '┬'

		text := formatTick(t)
		if col < next || col+runewidth.StringWidth(text) > width {
			continue
		}
		copy(labels[col:], []rune(text))
		next = col + len(text) + 1
	}

	return []string{
		styles.AxisStyle.Render(string(line)),
		styles.AxisLabelStyle.Render(strings.TrimRight(string(labels), " ")),
	}
}

func formatTick(t float64) string {
	if math.Abs(t) < 1e-9 {
		t = 0
	}
	return strconv.FormatFloat(t, 'g', 6, 64)
}
