package layout

import (
	"math"

	apperr "github.com/matzehuels/memlayout/pkg/errors"
)

// Theme selects the palette family for edge colors.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme validates a theme name. The empty string selects [DefaultTheme].
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case "":
		return DefaultTheme, nil
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidTheme, "invalid theme %q (must be one of: dark, light)", s)
}

// Default configuration values.
const (
	DefaultUnitHeight       = 10.0
	DefaultNodeWidth        = 180.0
	DefaultLayerOffset      = 40.0
	DefaultLabelGap         = 30.0
	DefaultStackBaseAddress = 0x7FFC0000
	DefaultHeapBaseAddress  = 0x1000
	DefaultMaxMemory        = 64
	DefaultTheme            = ThemeDark
)

// Config holds the layout constants of the engine.
type Config struct {
	UnitHeight       float64 `json:"unit_height" toml:"unit_height"`   // pixels per size unit
	NodeWidth        float64 `json:"node_width" toml:"node_width"`     // fixed node width in pixels
	LayerOffset      float64 `json:"layer_offset" toml:"layer_offset"` // bottom margin
	LabelGap         float64 `json:"label_gap" toml:"label_gap"`       // space between a layer's top node and its label
	StackBaseAddress uint64  `json:"stack_base_address" toml:"stack_base_address"`
	HeapBaseAddress  uint64  `json:"heap_base_address" toml:"heap_base_address"`
	MaxMemory        int     `json:"max_memory" toml:"max_memory"`
	Theme            Theme   `json:"theme" toml:"theme"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.UnitHeight == 0 {
		c.UnitHeight = DefaultUnitHeight
	}
	if c.NodeWidth == 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.LayerOffset == 0 {
		c.LayerOffset = DefaultLayerOffset
	}
	if c.LabelGap == 0 {
		c.LabelGap = DefaultLabelGap
	}
	if c.StackBaseAddress == 0 {
		c.StackBaseAddress = DefaultStackBaseAddress
	}
	if c.HeapBaseAddress == 0 {
		c.HeapBaseAddress = DefaultHeapBaseAddress
	}
	if c.MaxMemory == 0 {
		c.MaxMemory = DefaultMaxMemory
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
		min   float64
	}{
		{"unit_height", c.UnitHeight, math.SmallestNonzeroFloat64},
		{"node_width", c.NodeWidth, math.SmallestNonzeroFloat64},
		{"layer_offset", c.LayerOffset, 0},
		{"label_gap", c.LabelGap, 0},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < f.min {
			return apperr.New(apperr.ErrCodeInvalidConfig, "%s out of range: %v", f.name, f.value)
		}
	}
	if c.MaxMemory < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "max_memory must not be negative: %d", c.MaxMemory)
	}
	if _, err := ParseTheme(string(c.Theme)); err != nil {
		return err
	}
	return nil
}
