package cli

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/memlayout/pkg/pipeline"
	"github.com/matzehuels/memlayout/pkg/stabilizer"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	output  string
	formats []string
	tui     bool
	layout  layoutFlags
}

// replayCommand creates the replay command, which feeds a recorded editing
// session through the engine frame by frame.
func (c *CLI) replayCommand() *cobra.Command {
	var formatsStr string
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [frames.jsonl]",
		Short: "Replay a recorded editing session",
		Long: `Replay reads a JSON Lines file of {"source": ..., "result": ...} frames and
runs each through the engine in order, printing which rule every frame
applied. With --output the final graph is rendered as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runReplay(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "render the final graph to this file or base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s) for --output: json (default), dot, svg")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "step through frames interactively")
	opts.layout.register(cmd)

	return cmd
}

// replayStep is the outcome of one replayed frame.
type replayStep struct {
	Index    int
	Response pipeline.Response
}

func (c *CLI) runReplay(ctx context.Context, input string, opts *replayOpts) error {
	logger := loggerFromContext(ctx)

	frames, err := pipeline.ReadFramesFile(input)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		printWarning("%s contains no frames", input)
		return nil
	}

	pipeOpts, err := c.loadOptions(&opts.layout)
	if err != nil {
		return err
	}
	if len(opts.formats) > 0 {
		pipeOpts.Formats = opts.formats
	}
	runner, err := c.newRunner(pipeOpts, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	steps, err := replayFrames(ctx, runner, frames)
	if err != nil {
		return err
	}
	prog.done("Replayed frames", "frames", len(steps))

	if opts.tui {
		if _, err := tea.NewProgram(newReplayModel(input, steps), tea.WithContext(ctx)).Run(); err != nil {
			return err
		}
	} else {
		fmt.Println(replayTable(steps))
		printSummary(steps)
	}

	if opts.output == "" {
		return nil
	}
	artifacts, err := runner.Render(ctx, nil)
	if err != nil {
		return err
	}
	return writeArtifacts(ctx, artifacts, runner.Options().Formats, basePath(opts.output, input), opts.output)
}

// replayFrames applies frames in order and stops early if ctx is cancelled.
func replayFrames(ctx context.Context, runner *pipeline.Runner, frames []pipeline.Frame) ([]replayStep, error) {
	steps := make([]replayStep, 0, len(frames))
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		steps = append(steps, replayStep{Index: i + 1, Response: runner.Recompute(ctx, f)})
	}
	return steps, nil
}

// =============================================================================
// Output
// =============================================================================

var decisionStyles = map[stabilizer.Decision]lipgloss.Style{
	stabilizer.DecisionRebuild:  lipgloss.NewStyle().Foreground(colorFresh),
	stabilizer.DecisionReuse:    lipgloss.NewStyle().Foreground(colorMuted),
	stabilizer.DecisionRelayout: lipgloss.NewStyle().Foreground(colorAccent),
	stabilizer.DecisionFreeze:   lipgloss.NewStyle().Foreground(colorFrozen),
	stabilizer.DecisionClear:    lipgloss.NewStyle().Foreground(colorFault),
	stabilizer.DecisionEmpty:    lipgloss.NewStyle().Foreground(colorFaint),
}

func renderDecision(d stabilizer.Decision) string {
	if s, ok := decisionStyles[d]; ok {
		return s.Render(string(d))
	}
	return string(d)
}

// shortGeneration trims a generation id to its first block.
func shortGeneration(gen string) string {
	if len(gen) > 8 {
		return gen[:8]
	}
	if gen == "" {
		return "-"
	}
	return gen
}

// stepError returns the one-line error of a step, or "".
func stepError(r pipeline.Response) string {
	if r.Error == nil {
		return ""
	}
	if r.Error.Line != nil {
		return fmt.Sprintf("%d: %s", *r.Error.Line, r.Error.Message)
	}
	return r.Error.Message
}

func replayRows(steps []replayStep) [][]string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		r := s.Response
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			string(r.Decision),
			shortGeneration(r.Generation),
			strconv.Itoa(len(r.Graph.Nodes)),
			strconv.Itoa(len(r.Graph.Edges)),
			strconv.Itoa(len(r.Diagnostics)),
			stepError(r),
		})
	}
	return rows
}

// replayTable lays the steps out as a bordered table.
func replayTable(steps []replayStep) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	rows := replayRows(steps)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("#", "Decision", "Generation", "Nodes", "Edges", "Skipped", "Error").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(steps) {
				return base
			}
			switch col {
			case 1:
				if s, ok := decisionStyles[steps[row].Response.Decision]; ok {
					return s.Padding(0, 1)
				}
			case 6:
				return base.Foreground(colorFault)
			}
			return base
		}).
		String()
}

// decisionCounts tallies how often each rule fired.
func decisionCounts(steps []replayStep) map[stabilizer.Decision]int {
	counts := make(map[stabilizer.Decision]int)
	for _, s := range steps {
		counts[s.Response.Decision]++
	}
	return counts
}

func printSummary(steps []replayStep) {
	counts := decisionCounts(steps)
	for _, d := range []stabilizer.Decision{
		stabilizer.DecisionRebuild,
		stabilizer.DecisionReuse,
		stabilizer.DecisionRelayout,
		stabilizer.DecisionFreeze,
		stabilizer.DecisionClear,
		stabilizer.DecisionEmpty,
	} {
		if counts[d] > 0 {
			printKeyValue(string(d), strconv.Itoa(counts[d]))
		}
	}
	last := steps[len(steps)-1].Response
	printStats(len(last.Graph.Nodes), len(last.Graph.Edges), last.Decision)
}
