package builder

import (
	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// Display strings.
const (
	Uninitialized = "Uninitialized"
	NullValue     = "null"
	PointerTag    = "Pointer"
	LeakedTag     = "LB"
)

// Label node ids. Analyzer identifiers never contain '-', so these cannot
// collide with stack symbols.
const (
	StackLabelID = "stack-label"
	HeapLabelID  = "heap-label"
)

// Params carries everything a build needs besides the snapshot.
type Params struct {
	Config   layout.Config
	Geometry layout.Geometry

	// Colors picks fresh edge colors. Nil creates a randomly seeded policy
	// for the configured theme.
	Colors *layout.EdgeColorPolicy

	// Carry maps edge ids to colors that must be kept, typically the colors
	// of a previous build of the same snapshot.
	Carry map[string]string
}

func (p *Params) colors() *layout.EdgeColorPolicy {
	if p.Colors == nil {
		p.Colors = layout.NewEdgeColorPolicy(p.Config.Theme, 0)
	}
	return p.Colors
}

// Layer is the node and edge set of one memory region.
type Layer struct {
	Nodes []memgraph.Node
	Edges []memgraph.Edge
}

// index returns the position of the node with the given id, or -1.
func (l *Layer) index(id string) int {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Build runs the stack, heap and assembly steps for one snapshot. A nil
// result yields an empty graph.
func Build(r *analysis.Result, p Params) memgraph.Graph {
	if r == nil {
		return memgraph.Graph{}
	}
	stack := BuildStack(r.Stack, p)
	heap := BuildHeap(r.Heap, &stack, p)
	return Assemble(stack, heap, p.Config)
}
