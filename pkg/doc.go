// Package pkg provides the core libraries for memlayout memory visualization.
//
// # Overview
//
// Memlayout turns the output of a static memory analyzer (stack symbols,
// heap blocks and the pointers between them) into a two-column graph: stack
// frames on the left, the heap on the right, pointer edges across. While a
// program is being edited the analyzer reruns on every keystroke, so the
// engine also decides when a new result should replace what is on screen
// and when the last good graph should stay frozen.
//
// # Architecture
//
// The data flow through memlayout:
//
//	Analyzer JSON
//	     ↓
//	[analysis] package (decode, skip malformed entries)
//	     ↓
//	[stabilizer] package (rebuild, reuse, relayout, freeze or clear)
//	     ↓
//	[builder] package (stack and heap layers, pointer edges, labels)
//	     ↓
//	[memgraph] package (graph model, JSON, DOT and SVG export)
//
// # Quick Start
//
//	res, _ := analysis.ReadFile("analysis.json")
//	g := builder.Build(res, builder.Params{
//	    Config:   layout.DefaultConfig(),
//	    Geometry: layout.DefaultGeometry(),
//	})
//	svg, _ := memgraph.RenderSVG(ctx, memgraph.ToDOT(g, memgraph.DOTOptions{}))
//
// Most callers should go through [pipeline.Runner] instead, which keeps the
// retained snapshot between calls and caches exports.
//
// # Main Packages
//
// ## Engine
//
// [analysis] - Analyzer payload types and decoding. Unknown stack entries
// and invalid heap blocks are skipped and reported as diagnostics.
//
// [layout] - Layout parameters, viewport geometry, address assignment and
// edge color policy.
//
// [builder] - Pure graph construction from one analysis result.
//
// [stabilizer] - The recomputation rules that keep the graph stable while
// the source is being edited.
//
// [memgraph] - The graph model shared by every consumer, with capacity
// checks and exporters.
//
// ## Infrastructure
//
// [pipeline] - Options, TOML config and the [pipeline.Runner] used by the
// CLI, the HTTP server and the Redis relay.
//
// [cache] - Artifact cache for rendered exports (LRU memory and null backends).
//
// [transport] - Transport error sentinel and retry with backoff.
//
// [server] - HTTP API over a runner.
//
// [transport/redisbus] - Redis pub/sub relay over a runner.
//
// [observability] - Hooks for metrics and tracing, no-ops by default.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/builder/...   # Specific package
//	go test -run Example ./...  # Examples only
//
// [analysis]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/analysis
// [layout]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/layout
// [builder]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/builder
// [stabilizer]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/stabilizer
// [memgraph]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/memgraph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/server
// [transport]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/transport
// [transport/redisbus]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/transport/redisbus
// [observability]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/memlayout/pkg/errors
package pkg
