// Package markdown renders the details overlay and `tracks inspect` output.
package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// noMarginStyle removes document margins so output lines up with the
// surrounding box.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer with a fixed wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at width. style is "dark", "light",
// "notty" or "auto"; anything else falls back to dark.
func New(width int, style string) (*Renderer, error) {
	r, err := glamour.NewTermRenderer(
		styleOption(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

func styleOption(style string) glamour.TermRendererOption {
	switch style {
	case "auto":
		return glamour.WithAutoStyle()
	case styles.LightStyle, styles.NoTTYStyle:
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStandardStyle(styles.DarkStyle)
	}
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
