package memgraph_test

import (
	"fmt"

	"github.com/matzehuels/memlayout/pkg/memgraph"
)

func ExampleCapacity() {
	nodes := []memgraph.Node{
		{ID: "x", Kind: memgraph.KindStack, Size: 4},
		{ID: "p", Kind: memgraph.KindStack, Size: 8},
		{ID: "free-0", Kind: memgraph.KindHeap, Size: 32, Extra: memgraph.ExtraInfo{IsFree: true}},
	}
	stackFull, heapFull := memgraph.Capacity(nodes, 12)
	fmt.Println("stack full:", stackFull)
	fmt.Println("heap full:", heapFull)
	// Output:
	// stack full: true
	// heap full: false
}

func ExampleEdgeID() {
	fmt.Println(memgraph.EdgeID("p", "x"))
	fmt.Println(memgraph.EdgeID("p", "free-1"))
	// Output:
	// ep-x
	// ep-free-1
}
