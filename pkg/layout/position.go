package layout

import (
	"strconv"

	"github.com/matzehuels/memlayout/pkg/analysis"
)

// Stacker computes vertical positions for one layer. The first node sits
// LayerOffset above the bottom of the viewport; each following node sits
// directly on top of the previous one.
type Stacker struct {
	viewportHeight float64
	unitHeight     float64
	offset         float64

	top     float64
	started bool
}

// NewStacker creates a stacker for a viewport of the given height.
func NewStacker(viewportHeight float64, cfg Config) *Stacker {
	return &Stacker{
		viewportHeight: viewportHeight,
		unitHeight:     cfg.UnitHeight,
		offset:         cfg.LayerOffset,
	}
}

// Height returns the pixel height of an entry of the given size.
func (s *Stacker) Height(size int) float64 {
	return float64(size) * s.unitHeight
}

// Next returns the y-coordinate and height of the next node.
func (s *Stacker) Next(size int) (y, height float64) {
	height = s.Height(size)
	if !s.started {
		y = s.viewportHeight - height - s.offset
		s.started = true
	} else {
		y = s.top - height
	}
	s.top = y
	return y, height
}

// Top returns the y-coordinate of the most recently placed node and whether
// any node has been placed.
func (s *Stacker) Top() (float64, bool) {
	return s.top, s.started
}

// HeapNodeID returns the node id of the heap block at index i. Ids are
// positional: inserting or removing a block renumbers every block after it.
// Analyzer identifiers never start with a digit, so "<i>" cannot equal a
// stack symbol name.
func HeapNodeID(i int, state analysis.BlockState) string {
	idx := strconv.Itoa(i)
	switch state {
	case analysis.StateFree:
		return "free-" + idx
	case analysis.StateUnallocated:
		return "unallocated-" + idx
	}
	return idx
}
