// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the timeline viewer.
type KeyMap struct {
	// Zoom
	ZoomIn       key.Binding
	ZoomOut      key.Binding
	LayerZoomIn  key.Binding
	LayerZoomOut key.Binding
	ResetZoom    key.Binding

	// Navigation
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	NextLayer   key.Binding
	PrevLayer   key.Binding
	NextItem    key.Binding
	PrevItem    key.Binding

	// Selection and editing
	Toggle       key.Binding
	SelectAll    key.Binding
	Clear        key.Binding
	MoveLeft     key.Binding
	MoveRight    key.Binding
	ResizeLeft   key.Binding
	ResizeRight  key.Binding
	EditContext  key.Binding
	CycleOpacity key.Binding
	Details      key.Binding

	// General
	Reload  key.Binding
	Save    key.Binding
	ShowLog key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		LayerZoomIn: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "zoom layer in"),
		),
		LayerZoomOut: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "zoom layer out"),
		),
		ResetZoom: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),

		ScrollLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "scroll back"),
		),
		ScrollRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "scroll forward"),
		),
		NextLayer: key.NewBinding(
			key.WithKeys("tab", "j", "down"),
			key.WithHelp("tab/j", "next layer"),
		),
		PrevLayer: key.NewBinding(
			key.WithKeys("shift+tab", "k", "up"),
			key.WithHelp("S-tab/k", "previous layer"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next item"),
		),
		PrevItem: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous item"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle selection"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move selection back"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move selection forward"),
		),
		ResizeLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "drag left handle"),
		),
		ResizeRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "drag right handle"),
		),
		EditContext: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit layer extent"),
		),
		CycleOpacity: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle opacity"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload datasets"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save layer settings"),
		),
		ShowLog: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "toggle log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.ScrollLeft, k.ScrollRight, k.NextLayer, k.Toggle, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.LayerZoomIn, k.LayerZoomOut, k.ResetZoom},
		{k.ScrollLeft, k.ScrollRight, k.NextLayer, k.PrevLayer, k.NextItem, k.PrevItem},
		{k.Toggle, k.SelectAll, k.Clear, k.MoveLeft, k.MoveRight, k.ResizeLeft, k.ResizeRight},
		{k.EditContext, k.CycleOpacity, k.Details, k.Reload, k.Save, k.ShowLog, k.Help, k.Quit},
	}
}
