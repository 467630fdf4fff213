package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/pipeline"
	"github.com/matzehuels/memlayout/pkg/stabilizer"
)

const testPayload = `{
	"stack": [
		{"Variable": {"vtype": "Integer", "name": "x", "value": "12", "size": 4}},
		{"Pointer": {"ptype": "Integer", "name": "p",
			"value": {"Variable": {"vtype": "Integer", "name": "x", "value": "12", "size": 4}},
			"heap_pointer": null, "allocation_type": "Stack", "pointer_size": 4, "value_size": 4}}
	],
	"heap": []
}`

const testErrorPayload = `{"stack": [], "heap": [], "error": {"message": "expected ';'", "line_number": 2, "column_number": 9}}`

func newTestCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "replay", "serve", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q (have %v)", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing persistent --config flag")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty uses configured formats", "", nil},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "json,dot,svg", []string{"json", "dot", "svg"}},
		{"spaces and empties dropped", " json, ,svg ", []string{"json", "svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "testdata/analysis.json", "testdata/analysis"},
		{"out.svg", "analysis.json", "out"},
		{"out.dot", "analysis.json", "out"},
		{"out", "analysis.json", "out"},
		{"out.png", "analysis.json", "out.png"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestLayoutFlagsOptions(t *testing.T) {
	f := layoutFlags{theme: "light", width: 800, seed: 7}
	opts, err := f.options()
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if opts.Layout.Theme != layout.ThemeLight {
		t.Errorf("Theme = %q, want light", opts.Layout.Theme)
	}
	if opts.Viewport.Width != 800 || opts.Viewport.Height != 0 {
		t.Errorf("Viewport = %+v", opts.Viewport)
	}
	if opts.Seed != 7 {
		t.Errorf("Seed = %d, want 7", opts.Seed)
	}

	if _, err := (&layoutFlags{theme: "sepia"}).options(); err == nil {
		t.Error("options() accepted unknown theme")
	}
}

func TestLoadOptionsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memlayout.toml")
	config := `formats = ["dot"]

[layout]
theme = "light"

[viewport]
width = 1000.0
`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI()
	c.configPath = path
	opts, err := c.loadOptions(&layoutFlags{width: 640})
	if err != nil {
		t.Fatalf("loadOptions() error: %v", err)
	}
	if opts.Viewport.Width != 640 {
		t.Errorf("Width = %g, want flag value 640", opts.Viewport.Width)
	}
	if opts.Layout.Theme != layout.ThemeLight {
		t.Errorf("Theme = %q, want config value light", opts.Layout.Theme)
	}
	if !slices.Equal(opts.Formats, []string{"dot"}) {
		t.Errorf("Formats = %v, want [dot]", opts.Formats)
	}
	if opts.Logger != c.Logger {
		t.Error("loadOptions() did not attach the CLI logger")
	}
}

func TestLoadOptionsZeroSplitOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memlayout.toml")
	if err := os.WriteFile(path, []byte("[viewport]\nsplit = 0.35\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newTestCLI()
	c.configPath = path

	var flags layoutFlags
	cmd := &cobra.Command{Use: "render"}
	flags.register(cmd)

	opts, err := c.loadOptions(&flags)
	if err != nil {
		t.Fatalf("loadOptions() error: %v", err)
	}
	if opts.Viewport.Split != 0.35 {
		t.Errorf("Split without flag = %g, want config value 0.35", opts.Viewport.Split)
	}

	if err := cmd.Flags().Set("split", "0"); err != nil {
		t.Fatal(err)
	}
	opts, err = c.loadOptions(&flags)
	if err != nil {
		t.Fatalf("loadOptions() error: %v", err)
	}
	if opts.Viewport.Split != 0 {
		t.Errorf("Split with --split 0 = %g, want 0", opts.Viewport.Split)
	}
}

func TestLoadOptionsMissingConfig(t *testing.T) {
	c := newTestCLI()
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := c.loadOptions(nil); err == nil {
		t.Error("loadOptions() succeeded with a missing config file")
	}
}

func TestRunRenderWritesFormats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "analysis.json")
	if err := os.WriteFile(input, []byte(testPayload), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI()
	ctx := withLogger(context.Background(), c.Logger)
	opts := &renderOpts{formats: []string{"json", "dot"}, output: filepath.Join(dir, "graph")}
	if err := c.runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "graph.json"))
	if err != nil {
		t.Fatalf("read json export: %v", err)
	}
	var g struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("json export: %v", err)
	}
	if len(g.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges))
	}

	dot, err := os.ReadFile(filepath.Join(dir, "graph.dot"))
	if err != nil {
		t.Fatalf("read dot export: %v", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(dot), []byte("digraph")) {
		t.Errorf("dot export does not start with digraph: %q", dot[:min(len(dot), 40)])
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	c := newTestCLI()
	ctx := withLogger(context.Background(), c.Logger)
	err := c.runRender(ctx, filepath.Join(t.TempDir(), "nope.json"), &renderOpts{})
	if err == nil {
		t.Fatal("runRender() succeeded with missing input")
	}
}

func TestSourceText(t *testing.T) {
	got, err := sourceText("", "analysis.json")
	if err != nil || got != "analysis.json" {
		t.Errorf("sourceText without source = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "main.rs")
	if err := os.WriteFile(path, []byte("fn main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = sourceText(path, "analysis.json")
	if err != nil || got != "fn main() {}" {
		t.Errorf("sourceText(%s) = %q, %v", path, got, err)
	}
}

func TestReplayFrames(t *testing.T) {
	c := newTestCLI()
	runner, err := c.newRunner(pipeline.Options{Seed: 1}, true)
	if err != nil {
		t.Fatal(err)
	}
	defer runner.Close()

	frames := []pipeline.Frame{
		{Source: "fn main() { let x = 12; }", Result: json.RawMessage(testPayload)},
		{Source: "fn main() { let x = 12; } ", Result: json.RawMessage(testPayload)},
		{Source: "fn main() { let x = }", Result: json.RawMessage(testErrorPayload)},
		{Source: ""},
	}
	steps, err := replayFrames(context.Background(), runner, frames)
	if err != nil {
		t.Fatalf("replayFrames() error: %v", err)
	}

	want := []stabilizer.Decision{
		stabilizer.DecisionRebuild,
		stabilizer.DecisionReuse,
		stabilizer.DecisionFreeze,
		stabilizer.DecisionClear,
	}
	for i, s := range steps {
		if s.Response.Decision != want[i] {
			t.Errorf("frame %d decision = %s, want %s", s.Index, s.Response.Decision, want[i])
		}
	}

	if msg := stepError(steps[2].Response); !strings.Contains(msg, "expected ';'") || !strings.HasPrefix(msg, "2:") {
		t.Errorf("stepError(freeze) = %q", msg)
	}
	if len(steps[2].Response.Graph.Nodes) != len(steps[0].Response.Graph.Nodes) {
		t.Error("frozen frame should keep the last valid graph")
	}

	counts := decisionCounts(steps)
	if counts[stabilizer.DecisionRebuild] != 1 || counts[stabilizer.DecisionFreeze] != 1 {
		t.Errorf("decisionCounts() = %v", counts)
	}

	rows := replayRows(steps)
	if len(rows) != 4 || rows[0][1] != "rebuild" || rows[3][3] != "0" {
		t.Errorf("replayRows() = %v", rows)
	}
}

func TestReplayFramesCancelled(t *testing.T) {
	c := newTestCLI()
	runner, err := c.newRunner(pipeline.Options{}, true)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := replayFrames(ctx, runner, []pipeline.Frame{{Source: "x"}})
	if err == nil || len(steps) != 0 {
		t.Errorf("replayFrames() = %d steps, %v; want cancellation", len(steps), err)
	}
}

func TestShortGeneration(t *testing.T) {
	tests := map[string]string{
		"":                                     "-",
		"abc":                                  "abc",
		"0f8fad5b-d9cb-469f-a165-70867728950e": "0f8fad5b",
	}
	for in, want := range tests {
		if got := shortGeneration(in); got != want {
			t.Errorf("shortGeneration(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReplayExampleSession(t *testing.T) {
	frames, err := pipeline.ReadFramesFile(filepath.Join("..", "..", "examples", "session.jsonl"))
	if err != nil {
		t.Fatalf("ReadFramesFile: %v", err)
	}

	c := newTestCLI()
	c.configPath = filepath.Join("..", "..", "examples", "memlayout.toml")
	opts, err := c.loadOptions(nil)
	if err != nil {
		t.Fatalf("loadOptions: %v", err)
	}
	runner, err := c.newRunner(opts, true)
	if err != nil {
		t.Fatal(err)
	}
	defer runner.Close()

	steps, err := replayFrames(context.Background(), runner, frames)
	if err != nil {
		t.Fatal(err)
	}
	var got []stabilizer.Decision
	for _, s := range steps {
		got = append(got, s.Response.Decision)
	}
	want := []stabilizer.Decision{
		stabilizer.DecisionRebuild,
		stabilizer.DecisionRebuild,
		stabilizer.DecisionFreeze,
		stabilizer.DecisionReuse,
		stabilizer.DecisionClear,
	}
	if !slices.Equal(got, want) {
		t.Errorf("decisions = %v, want %v", got, want)
	}
}

func TestStatsLine(t *testing.T) {
	got := statsLine(4, 2, stabilizer.DecisionFreeze)
	for _, want := range []string{"4 nodes", "2 edges", "freeze"} {
		if !strings.Contains(got, want) {
			t.Errorf("statsLine() = %q, missing %q", got, want)
		}
	}
}
