package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tracks/internal/app"
	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
	"github.com/zjrosen/tracks/internal/ui/markdown"
	"github.com/zjrosen/tracks/internal/ui/timeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the configured layers",
	Long: `Inspect loads every configured layer and prints a markdown summary of
each: its dataset file, shape, item count and time span.

Example:
  tracks inspect          # rendered for the terminal
  tracks inspect --raw    # markdown source`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

var (
	inspectRaw   bool
	inspectWidth int
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "print markdown without rendering it")
	inspectCmd.Flags().IntVarP(&inspectWidth, "width", "w", 80, "wrap width of the rendered summary")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cleanup, err := setupLogging("tracks-inspect")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := config.Validate(cfg.Normalize(configPath())); err != nil {
		return err
	}
	return inspect(cmd.OutOrStdout(), cfg, configPath(), inspectWidth, inspectRaw)
}

// inspect writes the layer summary of c to w.
func inspect(w io.Writer, c config.Config, path string, width int, raw bool) error {
	c.AutoReload = false
	m, err := app.New(app.Options{
		Config:     c,
		ConfigPath: path,
		Loader:     dataset.NewLoader(dataset.WithoutCache()),
	})
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	doc := summary(path, m.Timeline().Tracks())
	if raw {
		_, err = io.WriteString(w, doc)
		return err
	}

	r, err := markdown.New(width, c.UI.MarkdownStyle)
	if err != nil {
		return err
	}
	out, err := r.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func summary(path string, tracks []*timeline.Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", path)
	if len(tracks) == 0 {
		b.WriteString("No layers configured.\n")
		return b.String()
	}
	for _, t := range tracks {
		b.WriteString(timeline.Details(t))
		b.WriteString("\n")
	}
	return b.String()
}
