// Package analysis defines the input contract of the memory-layout engine:
// the stack symbols and heap blocks reported by the upstream analyzer for
// one snapshot of the edited program.
//
// # Wire Format
//
// The analyzer emits externally tagged JSON. Every stack entry is an object
// with a single key naming its variant:
//
//	{
//	  "stack": [
//	    {"Variable": {"vtype": "Integer", "name": "x", "value": "12", "size": 4}},
//	    {"Pointer": {"ptype": "Integer", "name": "p", "pointer_size": 4,
//	                 "value": {"Variable": {"name": "x"}}}}
//	  ],
//	  "heap": [
//	    {"block_state": "Allocated", "current_pointer_identifier": "p",
//	     "dangling_pointer_identifiers": null, "size": 4, "metadata": "0"}
//	  ]
//	}
//
// An analysis failure replaces the payload with an error object:
//
//	{"error": {"message": "Variable `y` not found!", "line_number": 3, "column_number": 5}}
//
// The normalized spellings target_name, state, current_pointer_id and
// dangling_pointer_ids are accepted as well.
//
// # Malformed Input
//
// Entries the engine cannot interpret (unknown variants, empty names,
// non-positive sizes, duplicate names, unknown block states) never fail the
// decode. They are skipped and reported in [Result.Diagnostics] as
// MALFORMED_SYMBOL or MALFORMED_BLOCK errors so callers can count and log them.
//
// # Snapshot Identity
//
// [Decode] fingerprints the raw payload. Two results with the same
// fingerprint describe the same snapshot, see [SameSnapshot].
package analysis
