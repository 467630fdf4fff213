package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperr "github.com/matzehuels/memlayout/pkg/errors"
)

const analyzerPayload = `{
	"stack": [
		{"Variable": {"vtype": "Integer", "name": "x", "value": "12", "size": 4}},
		{"Pointer": {"ptype": "Integer", "name": "p",
			"value": {"Variable": {"vtype": "Integer", "name": "x", "value": "12", "size": 4}},
			"heap_pointer": null, "allocation_type": "Stack", "pointer_size": 4, "value_size": 4}},
		{"Pointer": {"ptype": "Integer", "name": "h",
			"value": {"Literal": {"value": "0"}},
			"heap_pointer": 0, "allocation_type": "Heap", "pointer_size": 4, "value_size": 4}},
		{"Variable": {"vtype": "Bool", "name": "flag", "value": null, "size": 1}}
	],
	"heap": [
		{"block_state": "Allocated", "current_pointer_identifier": "h",
		 "dangling_pointer_identifiers": null, "size": 4, "metadata": "0", "pointer": 0},
		{"block_state": "Unallocated", "current_pointer_identifier": null,
		 "dangling_pointer_identifiers": null, "size": 16, "metadata": "Unallocated Block", "pointer": 4}
	]
}`

func TestDecodeAnalyzerPayload(t *testing.T) {
	r, err := Decode([]byte(analyzerPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(r.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", r.Diagnostics)
	}
	if got := len(r.Stack); got != 4 {
		t.Fatalf("stack = %d, want 4", got)
	}
	if got := len(r.Heap); got != 2 {
		t.Fatalf("heap = %d, want 2", got)
	}

	x, ok := r.Stack[0].(Variable)
	if !ok {
		t.Fatalf("stack[0] = %T, want Variable", r.Stack[0])
	}
	if x.Name != "x" || x.Size != 4 || x.VType != "Integer" || x.Value == nil || *x.Value != "12" {
		t.Errorf("x = %+v", x)
	}

	p, ok := r.Stack[1].(Pointer)
	if !ok {
		t.Fatalf("stack[1] = %T, want Pointer", r.Stack[1])
	}
	if p.PointerSize != 4 {
		t.Errorf("PointerSize = %d, want 4", p.PointerSize)
	}
	if p.TargetName == nil || *p.TargetName != "x" {
		t.Errorf("TargetName = %v, want x", p.TargetName)
	}

	h := r.Stack[2].(Pointer)
	if h.TargetName != nil {
		t.Errorf("heap pointer TargetName = %q, want nil", *h.TargetName)
	}

	flag := r.Stack[3].(Variable)
	if flag.Value != nil {
		t.Errorf("uninitialized value = %q, want nil", *flag.Value)
	}

	b := r.Heap[0]
	if b.State != StateAllocated || !b.IsCurrentPointer("h") || b.Size != 4 {
		t.Errorf("heap[0] = %+v", b)
	}
	if r.Heap[1].State != StateUnallocated {
		t.Errorf("heap[1].State = %s, want Unallocated", r.Heap[1].State)
	}

	if !r.Valid() {
		t.Error("Valid() = false, want true")
	}
	if r.Fingerprint == "" {
		t.Error("Fingerprint should be set")
	}
}

func TestDecodeNormalizedSpelling(t *testing.T) {
	payload := `{
		"stack": [{"Pointer": {"name": "p", "pointer_size": 8, "target_name": null}}],
		"heap": [{"size": 4, "state": "Free", "current_pointer_id": null, "dangling_pointer_ids": ["p"]}]
	}`
	r, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(r.Stack) != 1 || len(r.Heap) != 1 {
		t.Fatalf("stack=%d heap=%d, want 1/1", len(r.Stack), len(r.Heap))
	}
	b := r.Heap[0]
	if b.State != StateFree {
		t.Errorf("State = %s, want Free", b.State)
	}
	if !b.IsDanglingPointer("p") {
		t.Error("p should be a dangling pointer")
	}
	if b.CurrentPointerID != nil {
		t.Errorf("CurrentPointerID = %q, want nil", *b.CurrentPointerID)
	}
	if b.Metadata != nil {
		t.Errorf("Metadata = %q, want nil", *b.Metadata)
	}
}

func TestDecodeMalformedEntries(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantStack int
		wantHeap  int
		wantCode  apperr.Code
	}{
		{
			name:      "UnknownVariant",
			payload:   `{"stack": [{"Literal": {"value": "3"}}, {"Variable": {"name": "a", "size": 4, "vtype": "Integer"}}]}`,
			wantStack: 1,
			wantCode:  apperr.ErrCodeMalformedSymbol,
		},
		{
			name:     "NotTagged",
			payload:  `{"stack": [{"name": "a", "size": 4}]}`,
			wantCode: apperr.ErrCodeMalformedSymbol,
		},
		{
			name:     "NullEntry",
			payload:  `{"stack": [null]}`,
			wantCode: apperr.ErrCodeMalformedSymbol,
		},
		{
			name:     "EmptyName",
			payload:  `{"stack": [{"Variable": {"name": "", "size": 4}}]}`,
			wantCode: apperr.ErrCodeMalformedSymbol,
		},
		{
			name:     "ZeroSize",
			payload:  `{"stack": [{"Pointer": {"name": "p", "pointer_size": 0}}]}`,
			wantCode: apperr.ErrCodeMalformedSymbol,
		},
		{
			name:      "DuplicateName",
			payload:   `{"stack": [{"Variable": {"name": "a", "size": 4}}, {"Variable": {"name": "a", "size": 1}}]}`,
			wantStack: 1,
			wantCode:  apperr.ErrCodeMalformedSymbol,
		},
		{
			name: "DigitName",
			payload: `{"stack": [{"Variable": {"name": "0", "size": 4}}, {"Pointer": {"name": "p", "pointer_size": 8}}],
				"heap": [{"block_state": "Allocated", "current_pointer_identifier": "0", "size": 4}]}`,
			wantStack: 1,
			wantHeap:  1,
			wantCode:  apperr.ErrCodeMalformedSymbol,
		},
		{
			name:     "UnknownBlockState",
			payload:  `{"heap": [{"block_state": "Borrowed", "size": 4}]}`,
			wantCode: apperr.ErrCodeMalformedBlock,
		},
		{
			name:     "ZeroSizeBlock",
			payload:  `{"heap": [{"block_state": "Allocated", "size": 0}]}`,
			wantCode: apperr.ErrCodeMalformedBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := len(r.Stack); got != tt.wantStack {
				t.Errorf("stack = %d, want %d", got, tt.wantStack)
			}
			if got := len(r.Heap); got != tt.wantHeap {
				t.Errorf("heap = %d, want %d", got, tt.wantHeap)
			}
			if got := apperr.Count(r.Diagnostics, tt.wantCode); got != 1 {
				t.Errorf("diagnostics with %s = %d, want 1 (%v)", tt.wantCode, got, r.Diagnostics)
			}
		})
	}
}

func TestDecodeAnalysisError(t *testing.T) {
	payload := `{"error": {"message": "Variable ` + "`y`" + ` not found!", "line_number": 3, "column_number": 5}}`
	r, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Error == nil {
		t.Fatal("Error should be set")
	}
	if r.Valid() {
		t.Error("erroring result should not be valid")
	}
	if got := r.Error.Error(); !strings.Contains(got, "line 3, column 5") {
		t.Errorf("Error() = %q, want line/column", got)
	}

	noPos := AnalysisError{Message: "Insufficient memory"}
	if got := noPos.Error(); got != "Insufficient memory" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{invalid json}`))
	if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want %s", err, apperr.ErrCodeInvalidInput)
	}
}

func TestFingerprintIdentity(t *testing.T) {
	a, _ := Decode([]byte(analyzerPayload))
	b, _ := Decode([]byte(analyzerPayload + "\n"))
	c, _ := Decode([]byte(`{"stack": [{"Variable": {"name": "z", "size": 4}}]}`))

	if !SameSnapshot(a, b) {
		t.Error("identical payloads should be the same snapshot")
	}
	if SameSnapshot(a, c) {
		t.Error("different payloads should not be the same snapshot")
	}

	built := &Result{Stack: []StackSymbol{Variable{Name: "z", Size: 4}}}
	rebuilt := &Result{Stack: []StackSymbol{Variable{Name: "z", Size: 4}}}
	if SameSnapshot(built, rebuilt) {
		t.Error("unfingerprinted results compare by pointer")
	}
	if !SameSnapshot(built, built) {
		t.Error("a result is the same snapshot as itself")
	}
	if SameSnapshot(nil, built) || !SameSnapshot(nil, nil) {
		t.Error("nil handling")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		r    *Result
		want bool
	}{
		{"Nil", nil, false},
		{"Empty", &Result{}, false},
		{"StackOnly", &Result{Stack: []StackSymbol{Variable{Name: "a", Size: 4}}}, true},
		{"HeapOnly", &Result{Heap: []HeapBlock{{Size: 4, State: StateAllocated}}}, true},
		{"Errored", &Result{Stack: []StackSymbol{Variable{Name: "a", Size: 4}}, Error: &AnalysisError{Message: "x"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	if err := os.WriteFile(path, []byte(analyzerPayload), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(r.Stack) != 4 {
		t.Errorf("stack = %d, want 4", len(r.Stack))
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want %s", err, apperr.ErrCodeFileNotFound)
	}
}

func TestParseBlockState(t *testing.T) {
	for _, s := range []string{"Allocated", "Free", "Unallocated", "Leaked"} {
		if _, err := ParseBlockState(s); err != nil {
			t.Errorf("ParseBlockState(%q) error = %v", s, err)
		}
	}
	if _, err := ParseBlockState("allocated"); err == nil {
		t.Error("block states are case-sensitive")
	}
}
