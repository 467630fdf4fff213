package memgraph

// Capacity reports whether each layer's occupied size reaches maxMemory.
// Occupied size sums the sizes of stack and heap nodes, ignoring free and
// unallocated heap blocks and label nodes. A non-positive maxMemory
// disables the check.
func Capacity(nodes []Node, maxMemory int) (stackFull, heapFull bool) {
	if maxMemory <= 0 {
		return false, false
	}
	var stack, heap int
	for _, n := range nodes {
		switch n.Kind {
		case KindStack:
			stack += n.Size
		case KindHeap:
			if n.occupied() {
				heap += n.Size
			}
		}
	}
	return stack >= maxMemory, heap >= maxMemory
}

// SetCapacity fills StackFull and HeapFull from the graph's nodes.
func (g *Graph) SetCapacity(maxMemory int) {
	g.StackFull, g.HeapFull = Capacity(g.Nodes, maxMemory)
}

func (n Node) occupied() bool {
	return !n.Extra.IsFree && n.Extra.BlockState != "Unallocated"
}
