package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, apperr.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should validate: %v", err)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}
	if opts.Viewport.Width != layout.DefaultWidth || opts.Viewport.Height != layout.DefaultHeight {
		t.Errorf("Viewport = %+v", opts.Viewport)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperr.Code
	}{
		{"bad theme", Options{Layout: layout.Config{Theme: "neon"}}, apperr.ErrCodeInvalidTheme},
		{"bad split", Options{Viewport: layout.Geometry{Split: 1.5}}, apperr.ErrCodeInvalidViewport},
		{"bad unit", Options{Layout: layout.Config{UnitHeight: -3}}, apperr.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !apperr.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	bad := Options{Formats: []string{"png"}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memlayout.toml")
	content := `
formats = ["json", "svg"]
seed = 7

[layout]
unit_height = 12.0
theme = "light"
max_memory = 128

[viewport]
width = 1440.0
split = 0.35
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Layout.UnitHeight != 12 || opts.Layout.Theme != layout.ThemeLight || opts.Layout.MaxMemory != 128 {
		t.Errorf("Layout = %+v", opts.Layout)
	}
	if opts.Viewport.Width != 1440 || opts.Viewport.Split != 0.35 {
		t.Errorf("Viewport = %+v", opts.Viewport)
	}
	if strings.Join(opts.Formats, ",") != "json,svg" || opts.Seed != 7 {
		t.Errorf("Formats = %v Seed = %d", opts.Formats, opts.Seed)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("loaded options invalid: %v", err)
	}
	if opts.Layout.NodeWidth != layout.DefaultNodeWidth {
		t.Error("missing keys should keep defaults")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	_ = os.WriteFile(unknown, []byte("[layout]\nunit_heigth = 3.0\n"), 0o644)
	_, err := LoadConfig(unknown)
	if !apperr.Is(err, apperr.ErrCodeInvalidConfig) || !strings.Contains(err.Error(), "unit_heigth") {
		t.Errorf("unknown key: %v", err)
	}

	broken := filepath.Join(dir, "broken.toml")
	_ = os.WriteFile(broken, []byte("formats = [\n"), 0o644)
	if _, err := LoadConfig(broken); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("broken file: %v", err)
	}
}

func TestMerge(t *testing.T) {
	base := Options{
		Layout:   layout.Config{UnitHeight: 12, Theme: layout.ThemeLight},
		Viewport: layout.Geometry{Width: 1000},
		Formats:  []string{"json"},
	}
	base.Merge(Options{
		Layout:   layout.Config{Theme: layout.ThemeDark},
		Viewport: layout.Geometry{Height: 500},
		Formats:  []string{"svg"},
	})

	if base.Layout.UnitHeight != 12 || base.Layout.Theme != layout.ThemeDark {
		t.Errorf("Layout = %+v", base.Layout)
	}
	if base.Viewport.Width != 1000 || base.Viewport.Height != 500 {
		t.Errorf("Viewport = %+v", base.Viewport)
	}
	if base.Formats[0] != "svg" {
		t.Errorf("Formats = %v", base.Formats)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Layout: layout.Config{Theme: layout.ThemeLight}}
	k := opts.ArtifactKeyOpts("svg")
	if k.Format != "svg" || k.Theme != "light" {
		t.Errorf("ArtifactKeyOpts = %+v", k)
	}
}
