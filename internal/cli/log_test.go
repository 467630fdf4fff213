package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     log.Level
		debugSeen bool
	}{
		{LogInfo, false},
		{LogDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			logger.Debug("snapshot retained", "generation", "abc")
			logger.Info("graph built", "nodes", 4)

			out := buf.String()
			if !strings.Contains(out, "graph built") {
				t.Errorf("info line missing: %q", out)
			}
			if got := strings.Contains(out, "snapshot retained"); got != tt.debugSeen {
				t.Errorf("debug line present = %v, want %v", got, tt.debugSeen)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output after SetLogLevel: %q", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))

	prog.done("replayed frames", "frames", 3)

	for _, want := range []string{"replayed frames", "frames=3", "elapsed="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("progress.done() output %q missing %q", buf.String(), want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	custom := newLogger(&bytes.Buffer{}, LogInfo)

	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("empty context should yield log.Default()")
	}
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
	//nolint:staticcheck // SA1012
	if got := loggerFromContext(withLogger(nil, custom)); got != custom {
		t.Error("withLogger(nil, l) should fall back to a background context")
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	c := newTestCLI()
	root := c.RootCommand()
	root.SetContext(context.Background())

	if err := root.PersistentPreRunE(root, nil); err != nil {
		t.Fatalf("PersistentPreRunE: %v", err)
	}
	if got := loggerFromContext(root.Context()); got != c.Logger {
		t.Error("root command context does not carry the CLI logger")
	}
}
