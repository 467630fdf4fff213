// Package cli implements the memlayout command-line interface.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/memlayout/pkg/buildinfo"
	"github.com/matzehuels/memlayout/pkg/cache"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "memlayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag, shared by every command.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Memlayout draws program memory as a stack and heap graph",
		Long:         `Memlayout turns the output of a static memory analyzer into a graph of stack frames, heap blocks and the pointers between them, and keeps that graph stable while the program is being edited.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file with layout, viewport and format defaults")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options
// =============================================================================

// layoutFlags are the flags shared by every command that builds a graph.
// Zero values mean "not set" so the config file and defaults show through,
// except for split where zero is a real value and the flag set is asked.
type layoutFlags struct {
	theme  string
	width  float64
	height float64
	split  float64
	seed   uint64

	flags *pflag.FlagSet
}

// splitSet reports whether --split was given on the command line.
func (f *layoutFlags) splitSet() bool {
	return f.flags != nil && f.flags.Changed("split")
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	f.flags = cmd.Flags()
	cmd.Flags().StringVar(&f.theme, "theme", "", "edge palette: dark (default), light")
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height in pixels")
	cmd.Flags().Float64Var(&f.split, "split", 0, "fraction of the viewport taken by the editor panel")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "edge color seed (0 picks a random seed)")
}

func (f *layoutFlags) options() (pipeline.Options, error) {
	var opts pipeline.Options
	if f.theme != "" {
		theme, err := layout.ParseTheme(f.theme)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Layout.Theme = theme
	}
	opts.Viewport = layout.Geometry{Width: f.width, Height: f.height, Split: f.split}
	opts.Seed = f.seed
	return opts, nil
}

// loadOptions reads the config file, if any, and overlays the flags on it.
func (c *CLI) loadOptions(flags *layoutFlags) (pipeline.Options, error) {
	var opts pipeline.Options
	if c.configPath != "" {
		loaded, err := pipeline.LoadConfig(c.configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts = loaded
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	if flags != nil {
		override, err := flags.options()
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Merge(override)
		if flags.splitSet() {
			opts.Viewport.Split = flags.split
		}
	}
	opts.Logger = c.Logger
	return opts, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. One-shot commands pass
// noCache; long-lived ones keep rendered exports in memory.
func (c *CLI) newRunner(opts pipeline.Options, noCache bool) (*pipeline.Runner, error) {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		store = cache.NewMemoryCache(pipeline.DefaultCacheEntries)
	}
	return pipeline.NewRunner(opts, store, c.Logger)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// An empty string yields nil so the configured formats apply.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout when path is empty or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
