// Package cmd wires the tracks CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tracks/internal/app"
	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/tracing"
)

func init() {
	// Query the terminal background before any program starts so the OSC 11
	// reply does not race with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultConfigPath = ".tracks/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tracks",
	Short: "A terminal timeline viewer for time-based datasets",
	Long: `tracks draws YAML datasets as stacked timeline layers: dots, segments,
breakpoint curves and markers over a shared, zoomable time axis.

Layers are declared in the config file. Datasets reload when their files
change; items in editable layers can be moved and resized.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .tracks/config.yaml, then ~/.config/tracks/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log and enable the log overlay (ctrl+o)")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"do not reload datasets when their files change")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("timeline.duration", defaults.Timeline.Duration)
	viper.SetDefault("timeline.offset", defaults.Timeline.Offset)
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("reload_debounce", defaults.ReloadDebounce)
	viper.SetDefault("ui.show_axis", defaults.UI.ShowAxis)
	viper.SetDefault("ui.show_help_bar", defaults.UI.ShowHelpBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .tracks/config.yaml (current directory)
		// 2. ~/.config/tracks/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "tracks"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .tracks/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configPath is the file settings are read from and saved to.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return defaultConfigPath
}

// setupLogging enables the debug log for --debug or TRACKS_DEBUG. The
// returned cleanup is never nil.
func setupLogging(prefix string) (func(), error) {
	if !debugEnabled() {
		return func() {}, nil
	}
	logPath := os.Getenv("TRACKS_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "tracks starting", "version", version, "config", configPath(), "logPath", logPath)
	return cleanup, nil
}

func debugEnabled() bool {
	return debugFlag || os.Getenv("TRACKS_DEBUG") != ""
}

// prepare validates the loaded config and starts tracing. The caller owns
// the provider.
func prepare() (*tracing.Provider, error) {
	normalized := cfg.Normalize(configPath())
	if err := config.Validate(normalized); err != nil {
		return nil, err
	}
	provider, err := tracing.NewProvider(normalized.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	return provider, nil
}

func shutdownTracing(p *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "tracing shutdown", err)
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	cleanup, err := setupLogging("tracks")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := prepare()
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	// Handle --no-auto-reload flag (negated logic)
	if noAutoReload, _ := cmd.Flags().GetBool("no-auto-reload"); noAutoReload {
		cfg.AutoReload = false
	}

	zone.NewGlobal()
	defer zone.Close()

	model, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: configPath(),
		Loader:     dataset.NewLoader(dataset.WithTracer(provider.Tracer())),
		Tracer:     provider.Tracer(),
		DebugMode:  debugEnabled(),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
