// Package styles contains Lip Gloss style definitions for the viewer.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Timeline
	AxisColor          = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}
	AxisLabelColor     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"}
	LayerTitleColor    = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	EditableLayerColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	AxisStyle      = lipgloss.NewStyle().Foreground(AxisColor)
	AxisLabelStyle = lipgloss.NewStyle().Foreground(AxisLabelColor)

	LayerTitleStyle        = lipgloss.NewStyle().Foreground(LayerTitleColor)
	FocusedLayerTitleStyle = lipgloss.NewStyle().Foreground(BorderFocusColor).Bold(true)
	EditableMarkerStyle    = lipgloss.NewStyle().Foreground(EditableLayerColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)
