// Package stabilizer decides, for every recomputation, which analyzer
// snapshot the graph is built from and whether the previous graph can be
// kept.
//
// Source edits arrive far faster than a graph should be torn down and
// redrawn, and most of them leave the program momentarily unparsable. The
// stabilizer keeps the last valid snapshot and applies four rules in order:
//
//  1. Empty source and no retained snapshot: nothing is drawn.
//  2. A valid result is retained. A different snapshot rebuilds the graph
//     from scratch under a new generation id; the same snapshot keeps the
//     previous graph, re-laid out if only the viewport changed.
//  3. An invalid result while source is present and a snapshot is retained
//     freezes the graph of that snapshot and surfaces the error.
//  4. Anything else clears the graph and forgets the retained snapshot.
//
// [Stabilizer.Recompute] is a pure function of its inputs apart from the
// generation ids and fresh edge colors it mints.
package stabilizer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/builder"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// Decision names the rule a recomputation applied.
type Decision string

const (
	DecisionEmpty    Decision = "empty"
	DecisionRebuild  Decision = "rebuild"
	DecisionReuse    Decision = "reuse"
	DecisionRelayout Decision = "relayout"
	DecisionFreeze   Decision = "freeze"
	DecisionClear    Decision = "clear"
)

// Input is one recomputation request.
type Input struct {
	SourceText string
	Result     *analysis.Result

	// Err is a failure to obtain Result at all, such as an undecodable
	// payload. It is treated like an analysis error.
	Err error

	Geometry layout.Geometry
}

// State is everything that survives between recomputations.
type State struct {
	// LastValid is the retained snapshot, the only input that outlives a
	// recomputation.
	LastValid *analysis.Result

	Graph      memgraph.Graph
	Decision   Decision
	Generation string

	// Geometry is the viewport Graph was laid out for.
	Geometry layout.Geometry

	// Err is the analysis error behind a freeze or clear, unchanged.
	Err error
}

// Stabilizer applies the recomputation rules with a fixed configuration.
type Stabilizer struct {
	Config layout.Config

	// Colors mints edge colors. Nil uses a randomly seeded policy.
	Colors *layout.EdgeColorPolicy

	// NewGeneration mints generation ids. Nil uses random UUIDs.
	NewGeneration func() string
}

// New creates a stabilizer for cfg.
func New(cfg layout.Config, colors *layout.EdgeColorPolicy) *Stabilizer {
	return &Stabilizer{Config: cfg, Colors: colors}
}

// Recompute applies the rules to prev and in and returns the next state.
// prev is not modified.
func (s *Stabilizer) Recompute(prev State, in Input) State {
	sourceEmpty := strings.TrimSpace(in.SourceText) == ""
	valid := in.Err == nil && in.Result.Valid()

	switch {
	case sourceEmpty && prev.LastValid == nil:
		return State{Decision: DecisionEmpty, Geometry: in.Geometry}

	case valid:
		if analysis.SameSnapshot(prev.LastValid, in.Result) {
			next, moved := s.relayout(prev, in.Geometry)
			next.Decision = DecisionReuse
			if moved {
				next.Decision = DecisionRelayout
			}
			next.Err = nil
			return next
		}
		return State{
			LastValid:  in.Result,
			Graph:      s.build(in.Result, in.Geometry, nil),
			Decision:   DecisionRebuild,
			Generation: s.generation(),
			Geometry:   in.Geometry,
		}

	case !sourceEmpty && prev.LastValid != nil:
		next, _ := s.relayout(prev, in.Geometry)
		next.Decision = DecisionFreeze
		next.Err = inputError(in)
		return next
	}

	return State{Decision: DecisionClear, Geometry: in.Geometry, Err: inputError(in)}
}

// relayout returns prev unchanged when geometry matches, otherwise rebuilds
// the retained snapshot for the new viewport keeping edge colors. moved
// reports whether a rebuild happened.
func (s *Stabilizer) relayout(prev State, geo layout.Geometry) (next State, moved bool) {
	if prev.Geometry == geo {
		return prev, false
	}
	next = prev
	next.Graph = s.build(prev.LastValid, geo, prev.Graph.EdgeColors())
	next.Geometry = geo
	return next, true
}

func (s *Stabilizer) build(r *analysis.Result, geo layout.Geometry, carry map[string]string) memgraph.Graph {
	if s.Colors == nil {
		s.Colors = layout.NewEdgeColorPolicy(s.Config.Theme, 0)
	}
	return builder.Build(r, builder.Params{
		Config:   s.Config,
		Geometry: geo,
		Colors:   s.Colors,
		Carry:    carry,
	})
}

func (s *Stabilizer) generation() string {
	if s.NewGeneration != nil {
		return s.NewGeneration()
	}
	return uuid.NewString()
}

// inputError returns the error carried by in, if any. The analysis error is
// returned as reported.
func inputError(in Input) error {
	if in.Err != nil {
		return in.Err
	}
	if in.Result != nil && in.Result.Error != nil {
		return in.Result.Error
	}
	return nil
}
