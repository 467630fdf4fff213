// Package pipeline runs the memory-layout engine end to end: decode an
// analyzer payload, stabilize it against the retained snapshot, build the
// graph and render exports.
//
// The CLI, the HTTP server and the Redis subscriber all drive the same
// [Runner], so defaults and validation live here.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(pipeline.Options{}, cache.NewMemoryCache(0), logger)
//	if err != nil {
//	    return err
//	}
//	resp := runner.Recompute(ctx, pipeline.Frame{Source: src, Result: payload})
//	artifacts, err := runner.Render(ctx, []string{"svg"})
package pipeline

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memlayout/pkg/cache"
	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/layout"
)

const (
	// DefaultSeed seeds edge colors. Zero draws a random seed per runner.
	DefaultSeed = uint64(0)

	// DefaultCacheEntries bounds the artifact cache of a server runner.
	DefaultCacheEntries = 64
)

// Export formats understood by [Runner.Render].
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultFormats is used when no format is requested.
var DefaultFormats = []string{FormatJSON}

// ValidFormats is keyed by format name.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options configures a [Runner]. [LoadConfig] decodes it from TOML and
// command-line flags are layered on top with [Options.Merge].
type Options struct {
	Layout   layout.Config   `json:"layout" toml:"layout"`
	Viewport layout.Geometry `json:"viewport" toml:"viewport"`

	Formats []string `json:"formats,omitempty" toml:"formats"`
	Seed    uint64   `json:"seed,omitempty" toml:"seed"`

	Logger *log.Logger `json:"-" toml:"-"`

	validated bool
}

// ValidateFormat returns an INVALID_FORMAT error unless format is one of
// [ValidFormats]. Names are case-sensitive.
func ValidateFormat(format string) error {
	if ValidFormats[format] {
		return nil
	}
	return apperr.New(apperr.ErrCodeInvalidFormat, "format %q (want one of %s)", format, formatList())
}

// ValidateFormats stops at the first invalid entry. An empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the
// result. Calling it again is a no-op until [Options.Merge] changes o.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Layout.SetDefaults()
	o.Viewport.SetDefaults()
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	for _, check := range []func() error{
		o.Layout.Validate,
		o.Viewport.Validate,
		func() error { return ValidateFormats(o.Formats) },
	} {
		if err := check(); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the part of o that changes the bytes of a
// format's export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Theme: string(o.Layout.Theme)}
}
