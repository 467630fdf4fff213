package memgraph

// Kind distinguishes stack, heap and label nodes.
type Kind string

const (
	KindStack Kind = "stack"
	KindHeap  Kind = "heap"
	KindLabel Kind = "label"
)

// EdgeKind classifies an edge by the relation it draws.
type EdgeKind string

const (
	// EdgePointer links a stack pointer to another stack symbol.
	EdgePointer EdgeKind = "pointer"
	// EdgeActive links a stack symbol to the heap block it currently references.
	EdgeActive EdgeKind = "active"
	// EdgeDangling links a stale stack pointer to a freed heap block.
	EdgeDangling EdgeKind = "dangling"
)

// WarningColor is the fixed color of dangling edges and leaked blocks.
const WarningColor = "#ff4d4f"

// DanglingPointer is the metadata recorded on a stack node with a dangling edge.
const DanglingPointer = "Dangling Pointer"

// Position is a top-left screen coordinate in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Handles records which sides of a node carry edge anchors.
type Handles struct {
	SourceRight bool `json:"sourceRight,omitempty"`
	TargetRight bool `json:"targetRight,omitempty"`
	TargetLeft  bool `json:"targetLeft,omitempty"`
}

// ExtraInfo carries annotations that do not affect layout.
type ExtraInfo struct {
	Address       string  `json:"address,omitempty"`
	TargetAddress string  `json:"targetAddress,omitempty"`
	Metadata      string  `json:"metadata,omitempty"`
	IsFree        bool    `json:"isFree,omitempty"`
	BlockState    string  `json:"blockState,omitempty"`
	Handles       Handles `json:"handles"`
}

// Node is one positioned box.
type Node struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Position   Position  `json:"position"`
	Size       int       `json:"size"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Label      string    `json:"label"`
	Value      string    `json:"value,omitempty"`
	TypeTag    string    `json:"typeTag,omitempty"`
	Extra      ExtraInfo `json:"extra"`
	Draggable  bool      `json:"draggable"`
	Selectable bool      `json:"selectable"`
}

// Edge is a directed relation between two nodes.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Color  string   `json:"color"`
	Kind   EdgeKind `json:"kind"`
}

// Graph is the renderable output of one recomputation.
type Graph struct {
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`
	StackFull bool   `json:"stackFull"`
	HeapFull  bool   `json:"heapFull"`
}

// EdgeID returns the deterministic id of the edge from source to target.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}

// NewEdge builds an edge with its deterministic id.
func NewEdge(source, target string, kind EdgeKind, color string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target, Color: color, Kind: kind}
}

// Empty reports whether the graph has no nodes and no edges.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// Node returns the node with the given id, searching stack and heap nodes
// before labels.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id && n.Kind != KindLabel {
			return n, true
		}
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// NodesOf returns the nodes of one kind, in list order.
func (g Graph) NodesOf(kind Kind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgeColors indexes edge colors by edge id.
func (g Graph) EdgeColors() map[string]string {
	colors := make(map[string]string, len(g.Edges))
	for _, e := range g.Edges {
		colors[e.ID] = e.Color
	}
	return colors
}
