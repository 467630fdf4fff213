package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/memlayout/pkg/cache"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
	"github.com/matzehuels/memlayout/pkg/observability"
)

// Artifacts holds rendered exports keyed by format.
type Artifacts struct {
	GraphHash string
	Data      map[string][]byte
	CacheHit  bool // whether every export came from the cache
}

// Render exports the current graph in the given formats. Nil formats use
// the runner's configured formats. Exports are cached by graph content hash,
// so re-rendering an unchanged graph is free.
func (r *Runner) Render(ctx context.Context, formats []string) (*Artifacts, error) {
	g, opts := r.snapshot()
	if len(formats) == 0 {
		formats = opts.Formats
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	return RenderGraph(ctx, g, formats, opts, r.Cache)
}

// RenderGraph exports g in the given formats, consulting c first.
func RenderGraph(ctx context.Context, g memgraph.Graph, formats []string, opts Options, c cache.Cache) (*Artifacts, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	out, err := renderGraph(ctx, g, formats, opts, c)
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	return out, err
}

func renderGraph(ctx context.Context, g memgraph.Graph, formats []string, opts Options, c cache.Cache) (*Artifacts, error) {
	graphHash, err := memgraph.Hash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}

	out := &Artifacts{GraphHash: graphHash, Data: make(map[string][]byte, len(formats)), CacheHit: true}
	for _, format := range formats {
		key := cache.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			out.Data[format] = data
			continue
		}

		out.CacheHit = false
		data, err := renderFormat(ctx, g, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out.Data[format] = data
		_ = c.Set(ctx, key, data, cache.TTLArtifact)
	}
	return out, nil
}

func renderFormat(ctx context.Context, g memgraph.Graph, format string, opts Options) ([]byte, error) {
	dotOpts := memgraph.DOTOptions{Dark: opts.Layout.Theme == layout.ThemeDark}
	switch format {
	case FormatJSON:
		return memgraph.Marshal(g)
	case FormatDOT:
		return []byte(memgraph.ToDOT(g, dotOpts)), nil
	case FormatSVG:
		return memgraph.RenderSVG(ctx, memgraph.ToDOT(g, dotOpts))
	}
	return nil, ValidateFormat(format)
}
