// Package timeline is the viewer's main pane: every configured layer
// stacked over a shared time axis, with keyboard and mouse zoom, scrolling,
// selection and editing.
//
// Layout, top to bottom: one block per track (a title row then the layer
// rows), the axis, the status bar and the help bar. Tracks draw into one
// shared canvas whose row 0 is the first row of the view, so mouse
// coordinates map straight onto canvas cells.
package timeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"

	"github.com/zjrosen/tracks/internal/behavior"
	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
	"github.com/zjrosen/tracks/internal/flags"
	"github.com/zjrosen/tracks/internal/keys"
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/metrics"
	"github.com/zjrosen/tracks/internal/pubsub"
	"github.com/zjrosen/tracks/internal/render"
	"github.com/zjrosen/tracks/internal/scale"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/timecontext"
	"github.com/zjrosen/tracks/internal/ui/markdown"
	"github.com/zjrosen/tracks/internal/ui/overlay"
	"github.com/zjrosen/tracks/internal/ui/styles"
)

const (
	zoneAxis = "timeline-axis"

	// scrollFraction of the visible span moved per scroll key.
	scrollFraction = 0.1
)

// opacitySteps are cycled through by the opacity key.
var opacitySteps = []float64{1, 0.75, 0.5, 0.25}

// EditMsg is a layer edit notification.
type EditMsg = pubsub.Event[layer.Edit[*dataset.Item]]

// Options configures the model.
type Options struct {
	Keys    keys.KeyMap
	Flags   *flags.Registry
	UI      config.UIConfig
	Offset  float64
	Profile termenv.Profile
}

type dragState struct {
	axis    bool
	context bool
	track   int
	handle  *scene.Node
	target  string
	startX  int
	startY  int
	lastX   int
	lastY   int
}

// Model is the timeline pane.
type Model struct {
	keys    keys.KeyMap
	flags   *flags.Registry
	ui      config.UIConfig
	profile termenv.Profile

	root   *timecontext.Context
	scene  *scene.Node
	tracks []*Track
	focus  int
	scroll float64

	width  int
	height int
	canvas *render.Canvas

	help        help.Model
	showHelp    bool
	showDetails bool
	md          *markdown.Renderer

	drag   *dragState
	edits  map[string]<-chan EditMsg
	edited int
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRoot creates the root time context spanning [0, duration]. Its pixel
// range is set when the model learns the screen width.
func NewRoot(duration float64) *timecontext.Context {
	root := timecontext.New(nil)
	root.Duration = duration
	// AssignScale only fails on a nil scale.
	_ = root.AssignScale(scale.NewLinear(0, duration, 0, 1))
	return root
}

// New creates the pane over tracks, which must be children of root.
func New(root *timecontext.Context, tracks []*Track, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		keys:    opts.Keys,
		flags:   opts.Flags,
		ui:      opts.UI,
		profile: opts.Profile,
		root:    root,
		scene:   scene.NewGroup("timeline"),
		tracks:  tracks,
		scroll:  opts.Offset,
		help:    help.New(),
		edits:   make(map[string]<-chan EditMsg, len(tracks)),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, t := range tracks {
		m.scene.AppendChild(t.Layer.Node())
		m.edits[t.Config.Name] = t.Layer.Events(ctx)
	}
	return m
}

// Init starts listening for layer edits.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.edits))
	for _, ch := range m.edits {
		cmds = append(cmds, pubsub.ListenCmd(m.ctx, ch))
	}
	return tea.Batch(cmds...)
}

// Close stops the edit listeners and closes every layer.
func (m Model) Close() {
	m.cancel()
	for _, t := range m.tracks {
		t.Layer.Close()
	}
}

// Tracks returns the tracks top to bottom.
func (m Model) Tracks() []*Track { return m.tracks }

// Focused returns the index of the focused track.
func (m Model) Focused() int { return m.focus }

// Scroll returns the time at the left edge of the view.
func (m Model) Scroll() float64 { return m.scroll }

// Root returns the root time context.
func (m Model) Root() *timecontext.Context { return m.root }

// Canvas returns the last drawn canvas, nil before the first resize.
func (m Model) Canvas() *render.Canvas { return m.canvas }

// Edited returns the number of item edits seen since start.
func (m Model) Edited() int { return m.edited }

// SetSize lays the pane out for a width x height screen.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.md = nil
	m.Refresh()
}

// Refresh re-lays out every track and redraws the canvas.
func (m *Model) Refresh() {
	if m.width <= 0 {
		return
	}
	m.root.SetPixelRange(0, float64(m.width))

	row := 0
	for _, t := range m.tracks {
		t.Layer.SetTop(float64(row + 1))
		t.Context.Offset = -m.scroll
		if err := t.Layer.Update(); err != nil {
			log.ErrorErr(log.CatUI, "layer update failed", err, "layer", t.Config.Name)
		}
		row += t.Rows()
	}

	m.canvas = render.NewCanvas(m.width, row, render.WithProfile(m.profile))
	m.canvas.Draw(m.scene)
}

// Stats sums the reconciliation counters of every track.
func (m Model) Stats() metrics.RenderStats {
	var s metrics.RenderStats
	for _, t := range m.tracks {
		s = s.Add(t.Layer.Stats())
	}
	return s
}

// Update handles keys, mouse and layer edit events.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case EditMsg:
		m.edited++
		log.Debug(log.CatUI, "item edited", "layer", msg.Payload.LayerID, "target", msg.Payload.Target)
		if ch, ok := m.edits[msg.Payload.LayerID]; ok {
			return m, pubsub.ListenCmd(m.ctx, ch)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) focused() *Track {
	if m.focus < 0 || m.focus >= len(m.tracks) {
		return nil
	}
	return m.tracks[m.focus]
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showDetails || m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Details), key.Matches(msg, m.keys.Help):
			m.showDetails, m.showHelp = false, false
		}
		return m, nil
	}

	t := m.focused()
	switch {
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(zoomStep, float64(m.width)/2)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1/zoomStep, float64(m.width)/2)
	case key.Matches(msg, m.keys.ResetZoom):
		m.resetZoom()
	case key.Matches(msg, m.keys.LayerZoomIn):
		m.zoomTrack(t, zoomStep)
	case key.Matches(msg, m.keys.LayerZoomOut):
		m.zoomTrack(t, 1/zoomStep)

	case key.Matches(msg, m.keys.ScrollLeft):
		m.scroll -= visibleSpan(m.root, float64(m.width)) * scrollFraction
	case key.Matches(msg, m.keys.ScrollRight):
		m.scroll += visibleSpan(m.root, float64(m.width)) * scrollFraction

	case key.Matches(msg, m.keys.NextLayer):
		if len(m.tracks) > 0 {
			m.focus = (m.focus + 1) % len(m.tracks)
		}
	case key.Matches(msg, m.keys.PrevLayer):
		if len(m.tracks) > 0 {
			m.focus = (m.focus - 1 + len(m.tracks)) % len(m.tracks)
		}
	case key.Matches(msg, m.keys.NextItem):
		if t != nil {
			t.MoveCursor(1)
			m.revealCursor(t)
		}
	case key.Matches(msg, m.keys.PrevItem):
		if t != nil {
			t.MoveCursor(-1)
			m.revealCursor(t)
		}

	case key.Matches(msg, m.keys.Toggle):
		if h := t.Cursor(); h != nil {
			t.Layer.ToggleSelection(h)
		}
	case key.Matches(msg, m.keys.SelectAll):
		if t != nil {
			t.Layer.Select()
		}
	case key.Matches(msg, m.keys.Clear):
		if t != nil {
			t.Layer.Unselect()
		}

	case key.Matches(msg, m.keys.MoveLeft):
		m.nudge(t, -1, "")
	case key.Matches(msg, m.keys.MoveRight):
		m.nudge(t, 1, "")
	case key.Matches(msg, m.keys.ResizeLeft):
		m.nudge(t, -1, behavior.TargetLeft)
	case key.Matches(msg, m.keys.ResizeRight):
		m.nudge(t, 1, behavior.TargetRight)

	case key.Matches(msg, m.keys.EditContext):
		if t != nil {
			t.Layer.SetContextEditable(!t.Layer.ContextEditable())
		}
	case key.Matches(msg, m.keys.CycleOpacity):
		if t != nil {
			t.Config.Opacity = nextOpacity(t.Config.Opacity)
			t.Layer.SetOpacity(t.Config.Opacity)
		}
	case key.Matches(msg, m.keys.Details):
		m.showDetails = t != nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	default:
		return m, nil
	}
	m.Refresh()
	return m, nil
}

func nextOpacity(current float64) float64 {
	for i, v := range opacitySteps {
		if math.Abs(v-current) < 1e-9 {
			return opacitySteps[(i+1)%len(opacitySteps)]
		}
	}
	return opacitySteps[0]
}

// zoom stretches the root context around column anchor.
func (m *Model) zoom(factor, anchor float64) {
	scroll, err := zoomAt(m.root, m.scroll, factor, anchor)
	if err != nil {
		log.ErrorErr(log.CatContext, "zoom failed", err)
		return
	}
	m.scroll = scroll
}

func (m *Model) zoomTrack(t *Track, factor float64) {
	if t == nil {
		return
	}
	ratio := clampRatio(t.Context.StretchRatio() * factor)
	if math.Abs(ratio-1) < 1e-9 {
		ratio = 1
	}
	if err := t.Context.SetStretchRatio(ratio); err != nil {
		log.ErrorErr(log.CatContext, "layer zoom failed", err, "layer", t.Config.Name)
	}
}

func (m *Model) resetZoom() {
	for _, t := range m.tracks {
		if err := t.Context.SetStretchRatio(1); err != nil {
			log.ErrorErr(log.CatContext, "reset zoom failed", err, "layer", t.Config.Name)
		}
	}
	if err := m.root.SetStretchRatio(1); err != nil {
		log.ErrorErr(log.CatContext, "reset zoom failed", err)
	}
	m.scroll = 0
}

// revealCursor scrolls so the focused item's start is on screen.
func (m *Model) revealCursor(t *Track) {
	it := t.CursorItem()
	if it == nil {
		return
	}
	span := visibleSpan(m.root, float64(m.width))
	if it.X < m.scroll || it.X > m.scroll+span {
		m.scroll = it.X - span*scrollFraction
	}
}

// nudge moves the selection (or the cursor item) of an editable track one
// column. With the context region shown it moves or resizes the track's
// context instead.
func (m *Model) nudge(t *Track, dx float64, target string) {
	if t == nil {
		return
	}
	if t.Layer.ContextEditable() {
		m.editContext(t, dx, target)
		return
	}
	if !t.Config.Editable || (target != "" && t.Config.Shape != config.ShapeSegments) {
		return
	}
	handles := t.Selected()
	if len(handles) == 0 {
		if h := t.Cursor(); h != nil {
			handles = []*scene.Node{h}
		}
	}
	t.Layer.Edit(handles, dx, 0, target)
}

func (m *Model) editContext(t *Track, dx float64, target string) {
	step := visibleSpan(m.root, 1) * dx
	tc := t.Context
	switch target {
	case behavior.TargetLeft:
		tc.Start += step
		tc.Duration = max(tc.Duration-step, visibleSpan(m.root, 1))
	case behavior.TargetRight:
		tc.Duration = max(tc.Duration+step, visibleSpan(m.root, 1))
	default:
		tc.Start += step
	}
	log.Debug(log.CatContext, "context edited", "layer", t.Config.Name, "start", tc.Start, "duration", tc.Duration)
}

// trackAt returns the track under the pointer.
func (m Model) trackAt(msg tea.MouseMsg) int {
	for i := range m.tracks {
		if z := zone.Get(trackZoneID(i)); z != nil && z.InBounds(msg) {
			return i
		}
	}
	return -1
}

func trackZoneID(i int) string {
	return fmt.Sprintf("timeline-track-%d", i)
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			m.wheel(msg)
		case tea.MouseButtonLeft:
			m.press(msg)
		default:
			return m, nil
		}
	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		m.motion(msg)
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		m.release(msg)
	}
	m.Refresh()
	return m, nil
}

func (m *Model) wheel(msg tea.MouseMsg) {
	in := msg.Button == tea.MouseButtonWheelUp
	if m.flags.Enabled(flags.FlagWheelZoom) {
		factor := zoomStep
		if !in {
			factor = 1 / zoomStep
		}
		m.zoom(factor, float64(msg.X))
		return
	}
	step := visibleSpan(m.root, float64(m.width)) * scrollFraction
	if in {
		step = -step
	}
	m.scroll += step
}

func (m *Model) press(msg tea.MouseMsg) {
	if z := zone.Get(zoneAxis); z != nil && z.InBounds(msg) {
		m.drag = &dragState{axis: true, startX: msg.X, startY: msg.Y, lastX: msg.X, lastY: msg.Y}
		return
	}
	i := m.trackAt(msg)
	if i < 0 {
		return
	}
	m.focus = i
	t := m.tracks[i]
	d := &dragState{track: i, startX: msg.X, startY: msg.Y, lastX: msg.X, lastY: msg.Y}

	var node *scene.Node
	if m.canvas != nil {
		node = m.canvas.NodeAt(msg.X, msg.Y)
	}
	if h := t.Layer.ItemFromNode(node); h != nil {
		if !msg.Shift && !h.HasClass(behavior.SelectedClass) {
			t.Layer.Unselect()
		}
		t.Layer.Select(h)
		t.SetCursorTo(h)
		d.handle = h
		d.target = handleTarget(node)
	} else if t.Layer.ContextEditable() && inContextRegion(node) {
		d.context = true
		d.target = handleTarget(node)
	} else if !msg.Shift {
		t.Layer.Unselect()
	}
	m.drag = d
}

// handleTarget names the segment end a grab handle node belongs to.
func handleTarget(n *scene.Node) string {
	switch {
	case n.HasClass(behavior.TargetLeft):
		return behavior.TargetLeft
	case n.HasClass(behavior.TargetRight):
		return behavior.TargetRight
	}
	return ""
}

func inContextRegion(n *scene.Node) bool {
	return n != nil && n.Parent() != nil && n.Parent().HasClass("context-region")
}

func (m *Model) motion(msg tea.MouseMsg) {
	d := m.drag
	dx, dy := msg.X-d.lastX, msg.Y-d.lastY
	d.lastX, d.lastY = msg.X, msg.Y
	if dx == 0 && dy == 0 {
		return
	}
	if d.axis {
		m.zoom(dragFactor(dy), float64(d.startX))
		return
	}
	t := m.tracks[d.track]
	if d.context {
		if dx != 0 {
			m.editContext(t, float64(dx), d.target)
		}
		return
	}
	if d.handle == nil || !t.Config.Editable {
		return
	}
	t.Layer.Edit(t.Selected(), float64(dx), float64(dy), d.target)
}

func (m *Model) release(msg tea.MouseMsg) {
	d := m.drag
	m.drag = nil
	if d.axis || d.context || d.handle != nil {
		return
	}
	if msg.X == d.startX && msg.Y == d.startY {
		return
	}
	t := m.tracks[d.track]
	area := layer.Area{
		Left:   float64(min(d.startX, msg.X)),
		Top:    float64(min(d.startY, msg.Y)),
		Width:  float64(abs(msg.X-d.startX) + 1),
		Height: float64(abs(msg.Y-d.startY) + 1),
	}
	handles := t.Layer.HandlesInArea(area)
	if len(handles) > 0 {
		t.Layer.Select(handles...)
	}
	log.Debug(log.CatUI, "area selected", "layer", t.Config.Name, "items", len(handles))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// View renders the tracks, axis, status and help bars.
func (m Model) View() string {
	if m.canvas == nil || m.width <= 0 {
		return ""
	}
	lines := m.canvas.Lines()

	parts := make([]string, 0, len(m.tracks)+3)
	row := 0
	for i, t := range m.tracks {
		block := make([]string, 0, t.Rows())
		block = append(block, m.title(i, t))
		block = append(block, lines[row+1:row+t.Rows()]...)
		parts = append(parts, zone.Mark(trackZoneID(i), strings.Join(block, "\n")))
		row += t.Rows()
	}

	if m.ui.ShowAxis {
		span := visibleSpan(m.root, float64(m.width))
		parts = append(parts, zone.Mark(zoneAxis, strings.Join(renderAxis(m.scroll, m.scroll+span, m.width), "\n")))
	}
	parts = append(parts, m.statusBar())
	if m.ui.ShowHelpBar {
		parts = append(parts, styles.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}
	view := strings.Join(parts, "\n")

	switch {
	case m.showDetails:
		view = overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.detailsBox(), view)
	case m.showHelp:
		full := m.help.FullHelpView(m.keys.FullHelp())
		box := styles.RenderWithTitleBorder(full, "Keys", min(m.width-4, 100), lipgloss.Height(full)+2,
			styles.OverlayBorderColor, styles.OverlayTitleColor)
		view = overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, box, view)
	}
	return view
}

func (m Model) title(i int, t *Track) string {
	style := styles.LayerTitleStyle
	marker := "  "
	if i == m.focus {
		style = styles.FocusedLayerTitleStyle
		marker = "▸ "
	}
	text := marker + t.Config.Name
	if n := len(t.Layer.SelectedItems()); n > 0 {
		text += fmt.Sprintf(" (%d selected)", n)
	}
	if it := t.CursorItem(); it != nil {
		label := it.Label
		if label == "" {
			label = it.ID
		}
		text += fmt.Sprintf("  [%d/%d %s]", t.cursor+1, len(t.Layer.Items()), label)
	}
	out := style.Render(styles.Truncate(text, m.width-2))
	if t.Layer.ContextEditable() {
		out += " " + styles.EditableMarkerStyle.Render("✎")
	}
	return out
}

func (m Model) statusBar() string {
	left := "no layers"
	if t := m.focused(); t != nil {
		left = fmt.Sprintf("%s · %s · opacity %.2g", t.Config.Name, t.Config.Shape, t.Config.Opacity)
		if r := t.Context.StretchRatio(); r != 1 {
			left += fmt.Sprintf(" · layer ×%.3g", r)
		}
	}
	stats := m.Stats()
	right := fmt.Sprintf("×%.3g · t=%.4g · %s · %s", m.root.StretchRatio(), m.scroll, stats.FormatItemsDisplay(), stats.FormatRenderDisplay())

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.StatusBarStyle.Render(styles.Truncate(left+strings.Repeat(" ", gap)+right, m.width))
}

func (m *Model) markdownRenderer(width int) *markdown.Renderer {
	if m.md != nil && m.md.Width() == width {
		return m.md
	}
	r, err := markdown.New(width, m.ui.MarkdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer", err)
		return nil
	}
	m.md = r
	return r
}

func (m Model) detailsBox() string {
	t := m.focused()
	if t == nil {
		return ""
	}
	width := max(min(m.width-4, 72), 20)
	doc := Details(t)
	body := doc
	if r := m.markdownRenderer(width - 4); r != nil {
		if out, err := r.Render(doc); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}
	height := min(lipgloss.Height(body)+2, max(m.height-2, 3))
	return styles.RenderWithTitleBorder(body, t.Config.Name, width, height, styles.OverlayBorderColor, styles.OverlayTitleColor)
}

// Details returns a markdown description of the track's cursor item, or of
// the track itself when no item is focused.
func Details(t *Track) string {
	var b strings.Builder
	if it := t.CursorItem(); it != nil {
		title := it.Label
		if title == "" {
			title = it.ID
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		b.WriteString("| field | value |\n|---|---|\n")
		fmt.Fprintf(&b, "| id | `%s` |\n", it.ID)
		fmt.Fprintf(&b, "| x | %g |\n", it.X)
		fmt.Fprintf(&b, "| y | %g |\n", it.Y)
		if it.Width != 0 {
			fmt.Fprintf(&b, "| width | %g |\n", it.Width)
		}
		if it.Height != 0 {
			fmt.Fprintf(&b, "| height | %g |\n", it.Height)
		}
		if it.Color != "" {
			fmt.Fprintf(&b, "| color | %s |\n", it.Color)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", t.Config.Name)
	fmt.Fprintf(&b, "- **file**: `%s`\n", t.Config.File)
	fmt.Fprintf(&b, "- **shape**: %s\n", t.Config.Shape)
	fmt.Fprintf(&b, "- **items**: %d\n", len(t.Items()))
	fmt.Fprintf(&b, "- **selected**: %d\n", len(t.Layer.SelectedItems()))
	if lo, hi, ok := dataset.Span(t.Items()); ok {
		fmt.Fprintf(&b, "- **span**: %g – %g\n", lo, hi)
	}
	fmt.Fprintf(&b, "- **stretch**: %g\n", t.Context.StretchRatio())
	return b.String()
}
