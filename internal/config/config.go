// Package config provides configuration types, defaults and validation for
// tracks. Values are read through viper in cmd; this package only knows the
// shape of the document.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/paths"
	"github.com/zjrosen/tracks/internal/tracing"
)

// Shape names accepted in layers[].shape.
const (
	ShapeDots        = "dots"
	ShapeSegments    = "segments"
	ShapeBreakpoints = "breakpoints"
	ShapeMarkers     = "markers"
)

// Layer defaults applied to zero values.
const (
	DefaultLayerHeight    = 8
	DefaultLayerOpacity   = 1.0
	DefaultDuration       = 60
	DefaultReloadDebounce = 250 * time.Millisecond
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// TimelineConfig sets the visible window of the root time context.
type TimelineConfig struct {
	Duration float64 `mapstructure:"duration" yaml:"duration"`
	Offset   float64 `mapstructure:"offset" yaml:"offset"`
}

// LayerConfig describes one dataset layer. Height is in terminal rows.
type LayerConfig struct {
	Name     string    `mapstructure:"name" yaml:"name"`
	File     string    `mapstructure:"file" yaml:"file"`
	Shape    string    `mapstructure:"shape" yaml:"shape"`
	Height   float64   `mapstructure:"height" yaml:"height,omitempty"`
	YDomain  []float64 `mapstructure:"y_domain" yaml:"y_domain,omitempty,flow"`
	Opacity  float64   `mapstructure:"opacity" yaml:"opacity,omitempty"`
	Color    string    `mapstructure:"color" yaml:"color,omitempty"`
	Editable bool      `mapstructure:"editable" yaml:"editable,omitempty"`
}

// Domain returns the y-domain, [0,1] when unset.
func (l LayerConfig) Domain() (lo, hi float64) {
	if len(l.YDomain) != 2 {
		return 0, 1
	}
	return l.YDomain[0], l.YDomain[1]
}

// WithDefaults fills zero height and opacity and derives a missing name
// from the file name.
func (l LayerConfig) WithDefaults() LayerConfig {
	if l.Height == 0 {
		l.Height = DefaultLayerHeight
	}
	if l.Opacity == 0 {
		l.Opacity = DefaultLayerOpacity
	}
	if l.Name == "" && l.File != "" {
		base := filepath.Base(l.File)
		l.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return l
}

// UIConfig holds viewer options.
type UIConfig struct {
	ShowAxis      bool   `mapstructure:"show_axis" yaml:"show_axis"`
	ShowHelpBar   bool   `mapstructure:"show_help_bar" yaml:"show_help_bar"`
	MarkdownStyle string `mapstructure:"markdown_style" yaml:"markdown_style"` // "dark" (default), "light" or "auto"
}

// Config holds all configuration options for tracks.
type Config struct {
	Timeline       TimelineConfig  `mapstructure:"timeline"`
	Layers         []LayerConfig   `mapstructure:"layers"`
	AutoReload     bool            `mapstructure:"auto_reload"`
	ReloadDebounce time.Duration   `mapstructure:"reload_debounce"`
	UI             UIConfig        `mapstructure:"ui"`
	Tracing        tracing.Config  `mapstructure:"tracing"`
	Flags          map[string]bool `mapstructure:"flags"`
}

// Defaults returns a Config with default values and no layers.
func Defaults() Config {
	return Config{
		Timeline:       TimelineConfig{Duration: DefaultDuration},
		AutoReload:     true,
		ReloadDebounce: DefaultReloadDebounce,
		UI: UIConfig{
			ShowAxis:      true,
			ShowHelpBar:   true,
			MarkdownStyle: "dark",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Normalize applies layer defaults and resolves dataset files against the
// directory of the config file.
func (c Config) Normalize(configPath string) Config {
	base := ""
	if configPath != "" {
		base = filepath.Dir(configPath)
	}
	layers := make([]LayerConfig, len(c.Layers))
	for i, l := range c.Layers {
		l = l.WithDefaults()
		l.File = paths.Resolve(base, l.File)
		layers[i] = l
	}
	c.Layers = layers
	if c.Tracing.Enabled && c.Tracing.Exporter == "file" && c.Tracing.FilePath == "" {
		c.Tracing.FilePath = DefaultTracesFilePath()
	}
	c.Tracing.FilePath = paths.ExpandHome(c.Tracing.FilePath)
	return c
}

// DefaultTracesFilePath is where the file exporter writes when no path is
// configured.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tracks", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "tracks", "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(c Config) error {
	if c.Timeline.Duration <= 0 {
		return fmt.Errorf("%w: timeline.duration must be positive, got %v", ErrInvalidConfig, c.Timeline.Duration)
	}
	if c.ReloadDebounce < 0 {
		return fmt.Errorf("%w: reload_debounce must not be negative", ErrInvalidConfig)
	}
	if err := ValidateLayers(c.Layers); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateLayers checks each layer. Zero heights and opacities are filled
// by WithDefaults before validation.
func ValidateLayers(layers []LayerConfig) error {
	for i, l := range layers {
		if l.File == "" {
			return fmt.Errorf("%w: layer %d: file is required", ErrInvalidConfig, i)
		}
		switch l.Shape {
		case ShapeDots, ShapeSegments, ShapeBreakpoints, ShapeMarkers:
		default:
			return fmt.Errorf("%w: layer %d: unknown shape %q", ErrInvalidConfig, i, l.Shape)
		}
		if l.Height <= 0 {
			return fmt.Errorf("%w: layer %d: height must be positive, got %v", ErrInvalidConfig, i, l.Height)
		}
		if l.Opacity < 0 || l.Opacity > 1 {
			return fmt.Errorf("%w: layer %d: opacity must be between 0 and 1, got %v", ErrInvalidConfig, i, l.Opacity)
		}
		if len(l.YDomain) != 0 {
			if len(l.YDomain) != 2 {
				return fmt.Errorf("%w: layer %d: y_domain needs two values", ErrInvalidConfig, i)
			}
			if l.YDomain[0] >= l.YDomain[1] {
				return fmt.Errorf("%w: layer %d: y_domain is inverted [%v, %v]", ErrInvalidConfig, i, l.YDomain[0], l.YDomain[1])
			}
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration. Empty values use defaults.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("%w: tracing.sample_rate must be between 0.0 and 1.0, got %v", ErrInvalidConfig, t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", ErrInvalidConfig, t.Exporter)
	}

	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("%w: tracing.file_path is required when exporter is \"file\"", ErrInvalidConfig)
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("%w: tracing.otlp_endpoint is required when exporter is \"otlp\"", ErrInvalidConfig)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# tracks configuration

# Visible window of the timeline, in dataset time units
timeline:
  duration: 60
  offset: 0

# One layer per dataset file. Paths are relative to this file.
#
# Layer options:
#   name: label shown in the layer header (default: file name)
#   file: YAML dataset with an items list (required)
#   shape: dots, segments, breakpoints or markers (required)
#   height: rows (default: 8)
#   y_domain: [lo, hi] value range mapped onto the layer height (default: [0, 1])
#   opacity: 0.0-1.0 (default: 1)
#   color: hex colour for items without their own
#   editable: allow moving and resizing items with keys or the mouse
#
# Dataset format:
#   items:
#     - {id: intro, x: 0, y: 0.5, width: 12, height: 0.25, label: Intro}
layers: []
#  - name: events
#    file: events.yaml
#    shape: segments
#    height: 6
#  - name: level
#    file: level.yaml
#    shape: breakpoints
#    y_domain: [0, 100]

# Reload datasets when their files change
auto_reload: true
reload_debounce: 250ms

ui:
  show_axis: true
  show_help_bar: true
  # markdown_style: dark  # "dark" (default), "light" or "auto"

# Experimental features
# flags:
#   debug-context: true   # outline every layer
#   wheel-zoom: true       # mouse wheel zooms instead of scrolling

# Span export for layer renders and dataset loads
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/tracks/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
