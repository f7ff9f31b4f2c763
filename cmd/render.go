package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/tracks/internal/app"
	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print one frame of the timeline and exit",
	Long: `Render loads every configured layer and prints a single frame to stdout,
without starting the interactive viewer.

Example:
  tracks render                  # styled frame, 80 columns
  tracks render --width 120      # wider frame
  tracks render --plain          # layers only, no colour, no bars`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var (
	renderWidth  int
	renderHeight int
	renderPlain  bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 80, "frame width in columns")
	renderCmd.Flags().IntVar(&renderHeight, "height", 40, "frame height in rows, used to place overlays")
	renderCmd.Flags().BoolVar(&renderPlain, "plain", false, "print the layer canvas as plain text")
}

func runRender(cmd *cobra.Command, _ []string) error {
	cleanup, err := setupLogging("tracks-render")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := prepare()
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	profile := termenv.EnvColorProfile()
	if renderPlain {
		profile = termenv.Ascii
	}
	return renderFrame(cmd.OutOrStdout(), cfg, configPath(), renderWidth, renderHeight, renderPlain, profile)
}

// renderFrame builds the viewer for c without watching files and writes a
// single frame to w.
func renderFrame(w io.Writer, c config.Config, path string, width, height int, plain bool, profile termenv.Profile) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", width, height)
	}
	c.AutoReload = false

	if zone.DefaultManager == nil {
		zone.NewGlobal()
	}

	m, err := app.New(app.Options{
		Config:     c,
		ConfigPath: path,
		Loader:     dataset.NewLoader(dataset.WithoutCache()),
		Profile:    profile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	m = updated.(app.Model)

	var frame string
	if plain {
		canvas := m.Timeline().Canvas()
		if canvas != nil {
			frame = canvas.Plain()
		}
	} else {
		frame = m.View()
	}
	_, err = fmt.Fprintln(w, frame)
	return err
}
