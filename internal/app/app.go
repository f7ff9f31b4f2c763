// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
	"github.com/zjrosen/tracks/internal/flags"
	"github.com/zjrosen/tracks/internal/identity"
	"github.com/zjrosen/tracks/internal/keys"
	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/pubsub"
	"github.com/zjrosen/tracks/internal/ui/logoverlay"
	"github.com/zjrosen/tracks/internal/ui/timeline"
	"github.com/zjrosen/tracks/internal/ui/toaster"
	"github.com/zjrosen/tracks/internal/watcher"
)

// Options are what the CLI hands to the model.
type Options struct {
	// Config is the document as read, before Normalize. Saving writes its
	// layers back with only the viewer's tweaks applied.
	Config     config.Config
	ConfigPath string
	Loader     *dataset.Loader
	Tracer     trace.Tracer
	DebugMode  bool
	Profile    termenv.Profile
}

// Model is the root application state.
type Model struct {
	timeline timeline.Model
	keys     keys.KeyMap

	cfg        config.Config
	rawLayers  []config.LayerConfig
	configPath string
	loader     *dataset.Loader

	width  int
	height int

	toaster toaster.Model

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	// startup notices shown once the program runs
	loadErrors []string

	ctx    context.Context
	cancel context.CancelFunc

	// File watcher for auto-reload (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.ReloadEvent]
}

// New loads every layer's dataset and builds the viewer. A dataset that
// fails to load yields an empty layer and a notice rather than an error;
// a layer that cannot be built at all is an error.
func New(opts Options) (Model, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := opts.Config.Normalize(opts.ConfigPath)

	loader := opts.Loader
	if loader == nil {
		loader = dataset.NewLoader(dataset.WithTracer(opts.Tracer))
	}

	reg := flags.New(cfg.Flags)
	root := timeline.NewRoot(cfg.Timeline.Duration)
	trackOpts := timeline.TrackOptions{
		Registry:     identity.New[*dataset.Item](),
		Tracer:       opts.Tracer,
		DebugContext: reg.Enabled(flags.FlagDebugContext),
	}

	var (
		tracks     []*timeline.Track
		files      []string
		loadErrors []string
	)
	top := 1
	for _, lc := range cfg.Layers {
		items, err := loader.Load(ctx, lc.File)
		if err != nil {
			log.ErrorErr(log.CatDataset, "load failed", err, "layer", lc.Name, "path", lc.File)
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", lc.Name, err))
			items = nil
		}
		t, err := timeline.NewTrack(lc, items, root, float64(top), trackOpts)
		if err != nil {
			cancel()
			return Model{}, err
		}
		tracks = append(tracks, t)
		top += t.Rows()
		if !slices.Contains(files, lc.File) {
			files = append(files, lc.File)
		}
	}

	m := Model{
		timeline: timeline.New(root, tracks, timeline.Options{
			Keys:    keys.DefaultKeyMap(),
			Flags:   reg,
			UI:      cfg.UI,
			Offset:  cfg.Timeline.Offset,
			Profile: opts.Profile,
		}),
		keys:       keys.DefaultKeyMap(),
		cfg:        cfg,
		rawLayers:  slices.Clone(opts.Config.Layers),
		configPath: opts.ConfigPath,
		loader:     loader,
		toaster:    toaster.New(),
		debugMode:  opts.DebugMode,
		logOverlay: logoverlay.New(logoverlay.DefaultCapacity),
		loadErrors: loadErrors,
		ctx:        ctx,
		cancel:     cancel,
	}

	if opts.DebugMode {
		m.logListener = log.NewListener(ctx)
	}

	if cfg.AutoReload && len(files) > 0 {
		w, err := m.startWatcher(files)
		if err != nil {
			// r still reloads by hand
			log.Warn(log.CatWatcher, "auto-reload disabled", "error", err)
		} else {
			m.watcherHandle = w
			m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
		}
	}

	log.Info(log.CatUI, "viewer ready", "layers", len(tracks), "auto_reload", m.watcherHandle != nil)
	return m, nil
}

func (m Model) startWatcher(files []string) (*watcher.Watcher, error) {
	w, err := watcher.New(watcher.Config{Paths: files, DebounceDur: m.cfg.ReloadDebounce})
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timeline.Init(),
		m.watcherListener.Listen(),
		m.logListener.Listen(),
		m.startupToast(),
	)
}

// startupToast reports datasets that failed to load.
func (m Model) startupToast() tea.Cmd {
	if len(m.loadErrors) == 0 {
		return nil
	}
	msg := m.loadErrors[0]
	if n := len(m.loadErrors) - 1; n > 0 {
		msg += fmt.Sprintf(" (+%d more)", n)
	}
	return func() tea.Msg { return showToastMsg{message: msg, style: toaster.StyleError} }
}

type showToastMsg struct {
	message string
	style   toaster.Style
}

// Timeline returns the timeline pane.
func (m Model) Timeline() timeline.Model { return m.timeline }

// Toast returns the toast currently shown, or "".
func (m Model) Toast() string {
	if !m.toaster.Visible() {
		return ""
	}
	return m.toaster.Message()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timeline.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			return m, nil
		}

	case log.LogEvent:
		m.logOverlay.Append(msg.Payload)
		return m, m.logListener.Listen()

	case tea.KeyMsg:
		if m.debugMode && key.Matches(msg, m.keys.ShowLog) {
			m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			return m.reloadAll()
		case key.Matches(msg, m.keys.Save):
			return m.save()
		}

	case pubsub.Event[watcher.ReloadEvent]:
		var cmd tea.Cmd
		m, cmd = m.reload(msg.Payload.Path)
		return m, tea.Batch(cmd, m.watcherListener.Listen())

	case showToastMsg:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(msg.message, msg.style, toaster.DefaultDuration)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.timeline, cmd = m.timeline.Update(msg)
	return m, cmd
}

// reload merges the new contents of path into every track drawing it.
func (m Model) reload(path string) (Model, tea.Cmd) {
	var (
		notes []string
		style = toaster.StyleSuccess
	)
	for _, t := range m.timeline.Tracks() {
		if t.Config.File != path {
			continue
		}
		merged, res, err := m.loader.Reload(m.ctx, path, t.Items())
		if err != nil {
			log.ErrorErr(log.CatDataset, "reload failed", err, "layer", t.Config.Name)
			notes = append(notes, fmt.Sprintf("%s: %v", t.Config.Name, err))
			style = toaster.StyleError
			continue
		}
		if err := t.SetItems(merged); err != nil {
			log.ErrorErr(log.CatLayer, "render after reload failed", err, "layer", t.Config.Name)
			notes = append(notes, fmt.Sprintf("%s: %v", t.Config.Name, err))
			style = toaster.StyleError
			continue
		}
		if style == toaster.StyleSuccess {
			notes = append(notes, fmt.Sprintf("Reloaded %s (+%d ~%d -%d)", t.Config.Name, res.Added, res.Updated, res.Removed))
		}
	}
	if len(notes) == 0 {
		return m, nil
	}
	m.timeline.Refresh()

	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(notes[len(notes)-1], style, toaster.DefaultDuration)
	return m, cmd
}

func (m Model) reloadAll() (tea.Model, tea.Cmd) {
	var (
		cmds []tea.Cmd
		seen []string
	)
	for _, t := range m.timeline.Tracks() {
		if slices.Contains(seen, t.Config.File) {
			continue
		}
		seen = append(seen, t.Config.File)
		var cmd tea.Cmd
		m, cmd = m.reload(t.Config.File)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// save writes the viewer's per-layer tweaks back to the config file.
func (m Model) save() (tea.Model, tea.Cmd) {
	if m.configPath == "" {
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("No config file to save to", toaster.StyleWarn, toaster.DefaultDuration)
		return m, cmd
	}

	layers := slices.Clone(m.rawLayers)
	for i, t := range m.timeline.Tracks() {
		if i >= len(layers) {
			break
		}
		if t.Config.Opacity != layers[i].WithDefaults().Opacity {
			layers[i].Opacity = t.Config.Opacity
		}
	}

	var cmd tea.Cmd
	if err := config.SaveLayers(m.configPath, layers); err != nil {
		log.ErrorErr(log.CatConfig, "save failed", err, "path", m.configPath)
		m.toaster, cmd = m.toaster.Show("Save failed: "+err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}
	m.rawLayers = layers
	log.Info(log.CatConfig, "layers saved", "path", m.configPath, "layers", len(layers))
	m.toaster, cmd = m.toaster.Show("Saved layers", toaster.StyleSuccess, toaster.DefaultDuration)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.timeline.View()

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.cancel()
	m.timeline.Close()

	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
