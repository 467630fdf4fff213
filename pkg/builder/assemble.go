package builder

import (
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// Assemble merges the stack and heap layers into one graph. Each non-empty
// layer gets a title node placed cfg.LabelGap above its topmost node. The
// result's lists are unordered sets keyed by id.
func Assemble(stack, heap Layer, cfg layout.Config) memgraph.Graph {
	g := memgraph.Graph{
		Nodes: make([]memgraph.Node, 0, len(stack.Nodes)+len(heap.Nodes)+2),
		Edges: make([]memgraph.Edge, 0, len(stack.Edges)+len(heap.Edges)),
	}
	g.Nodes = append(g.Nodes, stack.Nodes...)
	g.Nodes = append(g.Nodes, heap.Nodes...)

	if n, ok := titleNode(StackLabelID, "Stack", stack.Nodes, cfg); ok {
		g.Nodes = append(g.Nodes, n)
	}
	if n, ok := titleNode(HeapLabelID, "Heap", heap.Nodes, cfg); ok {
		g.Nodes = append(g.Nodes, n)
	}

	g.Edges = append(g.Edges, stack.Edges...)
	g.Edges = append(g.Edges, heap.Edges...)
	g.SetCapacity(cfg.MaxMemory)
	return g
}

func titleNode(id, text string, nodes []memgraph.Node, cfg layout.Config) (memgraph.Node, bool) {
	if len(nodes) == 0 {
		return memgraph.Node{}, false
	}
	top := nodes[0].Position
	for _, n := range nodes[1:] {
		if n.Position.Y < top.Y {
			top = n.Position
		}
	}
	return memgraph.Node{
		ID:       id,
		Kind:     memgraph.KindLabel,
		Position: memgraph.Position{X: top.X, Y: top.Y - cfg.LabelGap},
		Width:    cfg.NodeWidth,
		Height:   cfg.LabelGap,
		Label:    text,
	}, true
}
