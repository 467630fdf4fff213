package pipeline

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/memlayout/pkg/errors"
)

// LoadConfig reads Options from a TOML file:
//
//	formats = ["json", "svg"]
//
//	[layout]
//	unit_height = 12.0
//	theme = "light"
//
//	[viewport]
//	width = 1440.0
//	split = 0.35
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
// Missing keys keep their defaults.
func LoadConfig(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Options{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Options{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, apperr.New(apperr.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// Merge overlays the non-zero fields of override onto o. Flags use it to
// take precedence over a config file. A zero Viewport.Split cannot be told
// apart from "unset" here; callers that know it was given set it directly.
func (o *Options) Merge(override Options) {
	l, ol := &o.Layout, override.Layout
	if ol.UnitHeight != 0 {
		l.UnitHeight = ol.UnitHeight
	}
	if ol.NodeWidth != 0 {
		l.NodeWidth = ol.NodeWidth
	}
	if ol.LayerOffset != 0 {
		l.LayerOffset = ol.LayerOffset
	}
	if ol.LabelGap != 0 {
		l.LabelGap = ol.LabelGap
	}
	if ol.StackBaseAddress != 0 {
		l.StackBaseAddress = ol.StackBaseAddress
	}
	if ol.HeapBaseAddress != 0 {
		l.HeapBaseAddress = ol.HeapBaseAddress
	}
	if ol.MaxMemory != 0 {
		l.MaxMemory = ol.MaxMemory
	}
	if ol.Theme != "" {
		l.Theme = ol.Theme
	}

	if override.Viewport.Width != 0 {
		o.Viewport.Width = override.Viewport.Width
	}
	if override.Viewport.Height != 0 {
		o.Viewport.Height = override.Viewport.Height
	}
	if override.Viewport.Split != 0 {
		o.Viewport.Split = override.Viewport.Split
	}
	if len(override.Formats) > 0 {
		o.Formats = override.Formats
	}
	if override.Seed != 0 {
		o.Seed = override.Seed
	}
	if override.Logger != nil {
		o.Logger = override.Logger
	}
	o.validated = false
}
