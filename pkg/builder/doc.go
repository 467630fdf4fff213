// Package builder turns an analyzer snapshot into a positioned memory graph.
//
// Building runs in three steps, each rebuilding its output from scratch:
//
//  1. [BuildStack] creates one node per stack symbol and the pointer edges
//     between stack symbols.
//  2. [BuildHeap] creates one node per heap block and the edges from stack
//     symbols to the blocks they reference, current or dangling. It needs the
//     finished stack layer to resolve those references and annotates it.
//  3. [Assemble] merges both layers, adds a title node above each non-empty
//     layer and computes the capacity flags.
//
// [Build] runs all three.
//
// Identifiers in the analyzer's heap relations that match no stack node are
// expected while frames unwind and produce no edge.
package builder
