package analysis

import (
	"fmt"
	"slices"
)

// StackSymbol is one declared variable or pointer in the analyzed scope.
// The concrete types are [Variable] and [Pointer].
type StackSymbol interface {
	// SymbolName returns the identifier, unique within one snapshot.
	SymbolName() string
	// SymbolSize returns the size in bytes used for addresses and heights.
	SymbolSize() int

	isStackSymbol()
}

// Variable is a plain stack variable.
type Variable struct {
	Name  string
	Size  int
	Value *string // nil when declared without assignment
	VType string  // declared type, e.g. "Integer"
}

// Pointer is a stack pointer. TargetName names another stack symbol when the
// pointer references the stack; heap relations are carried by [HeapBlock].
type Pointer struct {
	Name        string
	PointerSize int
	TargetName  *string
}

func (v Variable) SymbolName() string { return v.Name }
func (v Variable) SymbolSize() int    { return v.Size }
func (Variable) isStackSymbol()       {}

func (p Pointer) SymbolName() string { return p.Name }
func (p Pointer) SymbolSize() int    { return p.PointerSize }
func (Pointer) isStackSymbol()       {}

// BlockState is the lifecycle state of a heap block.
type BlockState string

// Block states. They are mutually exclusive.
const (
	StateAllocated   BlockState = "Allocated"
	StateFree        BlockState = "Free"
	StateUnallocated BlockState = "Unallocated"
	StateLeaked      BlockState = "Leaked"
)

// ParseBlockState converts the analyzer's spelling of a block state.
func ParseBlockState(s string) (BlockState, error) {
	switch st := BlockState(s); st {
	case StateAllocated, StateFree, StateUnallocated, StateLeaked:
		return st, nil
	}
	return "", fmt.Errorf("unknown block state %q", s)
}

// HeapBlock is one contiguous simulated allocation unit.
// Blocks have no natural key; their identity is their position in [Result.Heap].
type HeapBlock struct {
	Size               int
	State              BlockState
	Metadata           *string  // display label, nil renders as "null"
	CurrentPointerID   *string  // stack pointer currently referencing the block
	DanglingPointerIDs []string // stack pointers that referenced the block after it was freed
}

// IsCurrentPointer reports whether id is the block's current pointer.
func (b HeapBlock) IsCurrentPointer(id string) bool {
	return b.CurrentPointerID != nil && *b.CurrentPointerID == id
}

// IsDanglingPointer reports whether id is recorded as a dangling pointer.
func (b HeapBlock) IsDanglingPointer(id string) bool {
	return slices.Contains(b.DanglingPointerIDs, id)
}

// AnalysisError is a parse or analysis failure reported by the analyzer.
type AnalysisError struct {
	Message string `json:"message"`
	Line    *int   `json:"line_number,omitempty"`
	Column  *int   `json:"column_number,omitempty"`
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Line != nil && e.Column != nil {
		return fmt.Sprintf("%s (line %d, column %d)", e.Message, *e.Line, *e.Column)
	}
	return e.Message
}

// Result is one decoded analyzer snapshot.
type Result struct {
	Stack []StackSymbol
	Heap  []HeapBlock
	Error *AnalysisError

	// Fingerprint is the content hash of the payload the result was decoded
	// from. Empty for results built in code.
	Fingerprint string

	// Diagnostics lists entries that were skipped while decoding.
	Diagnostics []error
}

// Valid reports whether the result can drive a rebuild: the analyzer
// reported no error and at least one stack or heap entry survived decoding.
func (r *Result) Valid() bool {
	return r != nil && r.Error == nil && (len(r.Stack) > 0 || len(r.Heap) > 0)
}

// SameSnapshot reports whether a and b describe the same snapshot: the
// same pointer, or equal non-empty fingerprints.
func SameSnapshot(a, b *Result) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	return a.Fingerprint != "" && a.Fingerprint == b.Fingerprint
}

// StringPtr returns a pointer to s. It keeps literals in tests and examples short.
func StringPtr(s string) *string { return &s }
