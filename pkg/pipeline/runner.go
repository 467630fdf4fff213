package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/cache"
	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
	"github.com/matzehuels/memlayout/pkg/observability"
	"github.com/matzehuels/memlayout/pkg/stabilizer"
)

// Runner owns the engine state: the retained snapshot and the current
// graph. It is the single writer of that state; concurrent callers are
// serialized and the last writer wins.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	opts Options
	stab *stabilizer.Stabilizer

	mu     sync.Mutex
	state  stabilizer.State
	source string
}

// NewRunner creates a runner. If cache is nil, a NullCache is used
// (caching disabled). If logger is nil, output is discarded.
func NewRunner(opts Options, c cache.Cache, logger *log.Logger) (*Runner, error) {
	if logger != nil && opts.Logger == nil {
		opts.Logger = logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	colors := layout.NewEdgeColorPolicy(opts.Layout.Theme, opts.Seed)
	return &Runner{
		Cache:  c,
		Logger: opts.Logger,
		opts:   opts,
		stab:   stabilizer.New(opts.Layout, colors),
	}, nil
}

// Options returns the runner's options, including the viewport last set
// with SetViewport.
func (r *Runner) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// snapshot returns the graph and the options it was laid out with, read
// under one lock so a concurrent SetViewport cannot split them.
func (r *Runner) snapshot() (memgraph.Graph, Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Graph, r.opts
}

// State returns the current engine state.
func (r *Runner) State() stabilizer.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Graph returns the current graph.
func (r *Runner) Graph() memgraph.Graph {
	return r.State().Graph
}

// Recompute decodes the frame's result and applies it. An undecodable
// payload is treated like an analysis error, so a live stream freezes on the
// last valid graph instead of failing.
func (r *Runner) Recompute(ctx context.Context, f Frame) Response {
	var (
		res       *analysis.Result
		decodeErr error
	)
	if f.HasResult() {
		res, decodeErr = analysis.Decode(f.Result)
		if decodeErr != nil {
			r.Logger.Warn("undecodable analysis result", "err", decodeErr)
		}
	}
	st := r.Apply(ctx, f.Source, res, decodeErr)

	var diags []error
	if res != nil {
		diags = res.Diagnostics
	}
	return NewResponse(st, diags)
}

// Apply runs one recomputation over an already decoded result.
func (r *Runner) Apply(ctx context.Context, source string, res *analysis.Result, decodeErr error) stabilizer.State {
	start := time.Now()
	if res != nil {
		r.reportDiagnostics(ctx, res.Diagnostics)
	}

	r.mu.Lock()
	next := r.stab.Recompute(r.state, stabilizer.Input{
		SourceText: source,
		Result:     res,
		Err:        decodeErr,
		Geometry:   r.opts.Viewport,
	})
	r.state = next
	r.source = source
	r.mu.Unlock()

	r.report(ctx, next, time.Since(start))
	return next
}

// SetViewport changes the viewport and re-lays out the current snapshot.
// Frozen graphs stay frozen; their error is kept.
func (r *Runner) SetViewport(ctx context.Context, geo layout.Geometry) (stabilizer.State, error) {
	geo.SetDefaults()
	if err := geo.Validate(); err != nil {
		return stabilizer.State{}, err
	}

	start := time.Now()
	r.mu.Lock()
	r.opts.Viewport = geo
	prev := r.state
	in := stabilizer.Input{SourceText: r.source, Result: prev.LastValid, Geometry: geo}
	if prev.Decision == stabilizer.DecisionFreeze {
		in.Result, in.Err = nil, prev.Err
	}
	next := r.stab.Recompute(prev, in)
	r.state = next
	r.mu.Unlock()

	r.report(ctx, next, time.Since(start))
	return next, nil
}

// Reset forgets the retained snapshot and the current graph.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = stabilizer.State{}
	r.source = ""
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) reportDiagnostics(ctx context.Context, diags []error) {
	for _, d := range diags {
		code := apperr.GetCode(d)
		r.Logger.Warn("skipped malformed entry", "code", code, "err", d)
		observability.Engine().OnMalformed(ctx, string(code), d)
	}
}

func (r *Runner) report(ctx context.Context, st stabilizer.State, elapsed time.Duration) {
	hooks := observability.Engine()
	nodes, edges := len(st.Graph.Nodes), len(st.Graph.Edges)

	switch st.Decision {
	case stabilizer.DecisionRebuild:
		r.Logger.Info("rebuilt graph", "generation", st.Generation, "nodes", nodes, "edges", edges, "duration", elapsed)
		hooks.OnRebuild(ctx, st.Generation)
	case stabilizer.DecisionFreeze:
		msg := ""
		if st.Err != nil {
			msg = st.Err.Error()
		}
		r.Logger.Warn("analysis failed, keeping last graph", "err", msg)
		hooks.OnFreeze(ctx, msg)
	case stabilizer.DecisionClear:
		var ae *analysis.AnalysisError
		if errors.As(st.Err, &ae) {
			r.Logger.Info("cleared graph", "err", ae)
		} else {
			r.Logger.Info("cleared graph")
		}
	default:
		r.Logger.Debug("recomputed", "decision", st.Decision, "nodes", nodes, "edges", edges)
	}
	hooks.OnRecompute(ctx, string(st.Decision), nodes, edges, elapsed)
}
