// Package layout computes the geometry of the memory graph: synthetic
// addresses, vertical stacking, per-layer x-coordinates, heap node ids and
// edge colors.
//
// Everything here is deterministic given its inputs. The only source of
// variation is [EdgeColorPolicy], whose random source is injected.
//
// # Addresses
//
// [Addresser] hands out display-only addresses. The stack cursor starts at
// [Config.StackBaseAddress], the heap cursor at [Config.HeapBaseAddress], and
// each advances by the size of the entry it just labelled:
//
//	a := layout.NewAddresser(0x7FFC0000)
//	a.Next(4) // "0x7FFC0000"
//	a.Next(8) // "0x7FFC0004"
//
// # Positions
//
// [Stacker] anchors the first node of a layer near the bottom of the viewport
// and stacks each following node directly above the previous one. Heights
// scale linearly with size.
package layout
