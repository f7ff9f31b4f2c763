package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most maxWidth cells, ending in an ellipsis
// when anything was cut. ANSI sequences are kept intact.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return truncate.StringWithTail(s, uint(maxWidth), Ellipsis) //nolint:gosec // maxWidth is positive
}
