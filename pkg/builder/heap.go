package builder

import (
	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// BuildHeap creates the heap layer and the stack-to-heap edges. Stack nodes
// referencing a block are annotated in place: the current pointer records the
// block's address, a dangling pointer is marked [memgraph.DanglingPointer].
//
// The heap is never drawn without a stack frame: an empty stack layer yields
// an empty heap layer.
func BuildHeap(blocks []analysis.HeapBlock, stack *Layer, p Params) Layer {
	var layer Layer
	if stack == nil || len(stack.Nodes) == 0 {
		return layer
	}

	cfg := p.Config
	_, x := p.Geometry.LayerX(cfg.NodeWidth)
	addrs := layout.NewAddresser(cfg.HeapBaseAddress)
	stacker := layout.NewStacker(p.Geometry.Height, cfg)
	colors := p.colors()

	// queued holds the colors of edges created in this pass, by edge id.
	queued := make(map[string]string)

	for i, b := range blocks {
		y, h := stacker.Next(b.Size)
		n := memgraph.Node{
			ID:       layout.HeapNodeID(i, b.State),
			Kind:     memgraph.KindHeap,
			Position: memgraph.Position{X: x, Y: y},
			Size:     b.Size,
			Width:    cfg.NodeWidth,
			Height:   h,
			Label:    NullValue,
			Extra: memgraph.ExtraInfo{
				Address:    addrs.Next(b.Size),
				IsFree:     b.State == analysis.StateFree,
				BlockState: string(b.State),
			},
			Draggable:  true,
			Selectable: true,
		}
		if b.Metadata != nil {
			n.Label = *b.Metadata
		}
		if b.State == analysis.StateLeaked {
			n.TypeTag = LeakedTag
		}

		if b.State != analysis.StateUnallocated {
			connect(b, &n, stack, &layer, colors, p.Carry, queued)
		}
		layer.Nodes = append(layer.Nodes, n)
	}
	return layer
}

// connect creates the edges from stack nodes to one heap node, visiting
// stack nodes in build order. A stack id listed as dangling gets the
// warning edge even when the block also names it as current pointer.
func connect(b analysis.HeapBlock, n *memgraph.Node, stack, heap *Layer,
	colors *layout.EdgeColorPolicy, carry, queued map[string]string) {
	for j := range stack.Nodes {
		src := &stack.Nodes[j]
		id := memgraph.EdgeID(src.ID, n.ID)

		switch {
		case b.IsDanglingPointer(src.ID):
			if _, seen := queued[id]; !seen {
				color := colors.Color(memgraph.EdgeDangling, "")
				queued[id] = color
				heap.Edges = append(heap.Edges, memgraph.NewEdge(src.ID, n.ID, memgraph.EdgeDangling, color))
			}
			src.Extra.Metadata = memgraph.DanglingPointer
			src.Extra.Handles.SourceRight = true
			n.Extra.Handles.TargetLeft = true

		case b.IsCurrentPointer(src.ID):
			existing, seen := queued[id]
			if existing == "" {
				existing = carry[id]
			}
			color := colors.Color(memgraph.EdgeActive, existing)
			if !seen {
				queued[id] = color
				heap.Edges = append(heap.Edges, memgraph.NewEdge(src.ID, n.ID, memgraph.EdgeActive, color))
			}
			src.Extra.TargetAddress = n.Extra.Address
			src.Extra.Handles.SourceRight = true
			n.Extra.Handles.TargetLeft = true
		}
	}
}
