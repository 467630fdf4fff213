package builder

import (
	"github.com/matzehuels/memlayout/pkg/analysis"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// BuildStack creates the stack layer. Nodes are stacked upward from the
// bottom of the viewport in symbol order, and addresses increase from
// Config.StackBaseAddress. Pointer edges are resolved once every node exists,
// so a pointer may reference a symbol declared after it.
func BuildStack(symbols []analysis.StackSymbol, p Params) Layer {
	cfg := p.Config
	x, _ := p.Geometry.LayerX(cfg.NodeWidth)
	addrs := layout.NewAddresser(cfg.StackBaseAddress)
	stacker := layout.NewStacker(p.Geometry.Height, cfg)

	var layer Layer
	targets := make(map[int]string)
	for _, sym := range symbols {
		size := sym.SymbolSize()
		y, h := stacker.Next(size)
		n := memgraph.Node{
			ID:         sym.SymbolName(),
			Kind:       memgraph.KindStack,
			Position:   memgraph.Position{X: x, Y: y},
			Size:       size,
			Width:      cfg.NodeWidth,
			Height:     h,
			Extra:      memgraph.ExtraInfo{Address: addrs.Next(size)},
			Draggable:  true,
			Selectable: true,
		}

		switch s := sym.(type) {
		case analysis.Variable:
			n.Label = s.Name
			n.Value = Uninitialized
			if s.Value != nil {
				n.Value = *s.Value
			}
			n.TypeTag = s.VType
		case analysis.Pointer:
			n.Label = "*" + s.Name
			n.Value = NullValue
			n.TypeTag = PointerTag
			n.Extra.Handles.SourceRight = true
			if s.TargetName != nil {
				targets[len(layer.Nodes)] = *s.TargetName
			}
		}
		layer.Nodes = append(layer.Nodes, n)
	}

	colors := p.colors()
	for i := range layer.Nodes {
		target, ok := targets[i]
		if !ok {
			continue
		}
		j := layer.index(target)
		if j < 0 || j == i {
			continue
		}
		src, tgt := &layer.Nodes[i], &layer.Nodes[j]

		id := memgraph.EdgeID(src.ID, tgt.ID)
		color := colors.Color(memgraph.EdgePointer, p.Carry[id])
		layer.Edges = append(layer.Edges, memgraph.NewEdge(src.ID, tgt.ID, memgraph.EdgePointer, color))

		src.Value = "&" + tgt.ID
		src.Extra.TargetAddress = tgt.Extra.Address
		tgt.Extra.Handles.SourceRight = true
		tgt.Extra.Handles.TargetRight = true
	}
	return layer
}
