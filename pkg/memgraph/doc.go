// Package memgraph defines the positioned node/edge graph handed to the
// rendering collaborator, together with its exports.
//
// A [Graph] is a plain value: two unordered lists keyed by id plus the
// per-layer capacity flags. Consumers must not depend on list order.
//
// # Nodes
//
// Three kinds of nodes exist. Stack nodes are keyed by the symbol name, heap
// nodes by the index-based scheme of the layout package ("0", "free-1",
// "unallocated-2"), and label nodes ("Stack", "Heap") title each layer. The
// synthesized address of a stack or heap node is [ExtraInfo.Address].
//
// # Edges
//
// Edge ids are deterministic, "e<source>-<target>", so re-creating the same
// relation always yields the same id (see [EdgeID]).
//
// # Exports
//
// [Marshal] produces the JSON consumed by the rendering collaborator,
// [ToDOT] a Graphviz description with pinned node positions, and [RenderSVG]
// renders that description through Graphviz.
package memgraph
