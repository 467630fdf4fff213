package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file (single format) or base path (multiple)
	formats []string
	source  string // path of the analyzed source file
	layout  layoutFlags
}

// renderCommand creates the render command, which draws one analyzer result.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [analysis.json]",
		Short: "Render an analyzer result as JSON, DOT or SVG",
		Long: `Render builds the memory graph for one analyzer result and writes it in
the requested formats.

The source file is optional. Without it the result is drawn as if the
editor held a non-empty program.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.source, "source", "", "analyzed source file")
	opts.layout.register(cmd)

	return cmd
}

// basePath derives the base output path. A known format extension on
// output is stripped; without output the input name is used.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// sourceText returns the text the graph is built against. A result
// rendered on its own stands for a non-empty program, so the input path is
// used as a placeholder.
func sourceText(sourcePath, input string) (string, error) {
	if sourcePath == "" {
		return input, nil
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	pipeOpts, err := c.loadOptions(&opts.layout)
	if err != nil {
		return err
	}
	if len(opts.formats) > 0 {
		pipeOpts.Formats = opts.formats
	}
	runner, err := c.newRunner(pipeOpts, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := analysis.ReadFile(input)
	if err != nil {
		return err
	}
	src, err := sourceText(opts.source, input)
	if err != nil {
		return err
	}

	st := runner.Apply(ctx, src, res, nil)
	if st.Err != nil {
		printWarning("analysis failed: %v", st.Err)
	}
	prog.done("Built graph", "decision", st.Decision, "nodes", len(st.Graph.Nodes), "edges", len(st.Graph.Edges))

	artifacts, err := runner.Render(ctx, nil)
	if err != nil {
		return err
	}
	return writeArtifacts(ctx, artifacts, runner.Options().Formats, basePath(opts.output, input), opts.output)
}

// writeArtifacts writes each export. A single format goes to output as
// given (stdout for "-"); several formats go to base.<format>.
func writeArtifacts(ctx context.Context, artifacts *pipeline.Artifacts, formats []string, base, output string) error {
	logger := loggerFromContext(ctx)

	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}

		out, err := openOutput(path)
		if err != nil {
			return err
		}
		_, werr := out.Write(artifacts.Data[format])
		cerr := out.Close()
		if werr != nil {
			return fmt.Errorf("write %s: %w", path, werr)
		}
		if cerr != nil {
			return fmt.Errorf("close %s: %w", path, cerr)
		}

		logger.Debugf("Generated %s: %d bytes", format, len(artifacts.Data[format]))
		if path != "-" {
			printFile(path)
		}
	}
	return nil
}
