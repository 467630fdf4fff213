package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/memlayout/pkg/cache"
	apperr "github.com/matzehuels/memlayout/pkg/errors"
)

// =============================================================================
// Decoding API
// =============================================================================

// Decode parses an analyzer payload. The returned error is non-nil only when
// the payload is not a JSON object of the expected shape; malformed entries
// are skipped and listed in [Result.Diagnostics].
func Decode(data []byte) (*Result, error) {
	var w wireResult
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode analysis result")
	}

	r := &Result{Fingerprint: cache.Hash(bytes.TrimSpace(data))}
	if w.Error != nil {
		r.Error = w.Error
	}

	seen := make(map[string]bool, len(w.Stack))
	for i, raw := range w.Stack {
		sym, err := decodeSymbol(raw)
		if err == nil {
			err = validateSymbol(sym, seen)
		}
		if err != nil {
			r.Diagnostics = append(r.Diagnostics, fmt.Errorf("stack[%d]: %w", i, err))
			continue
		}
		seen[sym.SymbolName()] = true
		r.Stack = append(r.Stack, sym)
	}

	for i, wb := range w.Heap {
		b, err := wb.block()
		if err != nil {
			r.Diagnostics = append(r.Diagnostics, fmt.Errorf("heap[%d]: %w", i, err))
			continue
		}
		r.Heap = append(r.Heap, b)
	}

	return r, nil
}

// Read decodes an analyzer payload from r.
func Read(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ReadFile decodes an analyzer payload stored in a JSON file.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Decode(data)
}

// =============================================================================
// Wire Types
// =============================================================================

type wireResult struct {
	Stack []json.RawMessage `json:"stack"`
	Heap  []wireBlock       `json:"heap"`
	Error *AnalysisError    `json:"error"`
}

type wireVariable struct {
	VType string  `json:"vtype"`
	Name  string  `json:"name"`
	Value *string `json:"value"`
	Size  int     `json:"size"`
}

type wirePointer struct {
	Name        string          `json:"name"`
	PointerSize int             `json:"pointer_size"`
	Value       json.RawMessage `json:"value"`
	TargetName  *string         `json:"target_name"`
}

// wireNamed picks the name out of a nested symbol referenced by a pointer.
type wireNamed struct {
	Name string `json:"name"`
}

type wireBlock struct {
	BlockState        string   `json:"block_state"`
	State             string   `json:"state"`
	CurrentPointer    *string  `json:"current_pointer_identifier"`
	CurrentPointerID  *string  `json:"current_pointer_id"`
	DanglingPointers  []string `json:"dangling_pointer_identifiers"`
	DanglingPointerID []string `json:"dangling_pointer_ids"`
	Size              int      `json:"size"`
	Metadata          *string  `json:"metadata"`
}

const (
	variantVariable = "Variable"
	variantPointer  = "Pointer"
)

// decodeSymbol unpacks one externally tagged stack entry.
func decodeSymbol(raw json.RawMessage) (StackSymbol, error) {
	variant, body, err := splitTagged(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeMalformedSymbol, err, "stack entry is not a tagged variant")
	}

	switch variant {
	case variantVariable:
		var v wireVariable
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeMalformedSymbol, err, "decode variable")
		}
		return Variable{Name: v.Name, Size: v.Size, Value: v.Value, VType: v.VType}, nil

	case variantPointer:
		var p wirePointer
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeMalformedSymbol, err, "decode pointer")
		}
		target := p.TargetName
		if target == nil {
			target = pointeeName(p.Value)
		}
		return Pointer{Name: p.Name, PointerSize: p.PointerSize, TargetName: target}, nil
	}

	return nil, apperr.New(apperr.ErrCodeMalformedSymbol, "unknown stack entry variant %q", variant)
}

// pointeeName returns the name of the stack symbol a pointer's value refers
// to. Literal values (heap contents) and null have no name.
func pointeeName(raw json.RawMessage) *string {
	variant, body, err := splitTagged(raw)
	if err != nil || (variant != variantVariable && variant != variantPointer) {
		return nil
	}
	var n wireNamed
	if err := json.Unmarshal(body, &n); err != nil || n.Name == "" {
		return nil
	}
	return &n.Name
}

// splitTagged splits {"Variant": {...}} into its tag and body.
func splitTagged(raw json.RawMessage) (string, json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", nil, fmt.Errorf("empty entry")
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected exactly one variant key, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, fmt.Errorf("empty entry")
}

func validateSymbol(sym StackSymbol, seen map[string]bool) error {
	name := sym.SymbolName()
	if err := apperr.ValidateSymbolName(name); err != nil {
		return err
	}
	if err := apperr.ValidateSize(apperr.ErrCodeMalformedSymbol, sym.SymbolSize()); err != nil {
		return apperr.Wrap(apperr.ErrCodeMalformedSymbol, err, "symbol %q", name)
	}
	if seen[name] {
		return apperr.New(apperr.ErrCodeMalformedSymbol, "duplicate symbol name %q", name)
	}
	return nil
}

func (w wireBlock) block() (HeapBlock, error) {
	stateName := w.BlockState
	if stateName == "" {
		stateName = w.State
	}
	state, err := ParseBlockState(stateName)
	if err != nil {
		return HeapBlock{}, apperr.Wrap(apperr.ErrCodeMalformedBlock, err, "decode heap block")
	}
	if err := apperr.ValidateSize(apperr.ErrCodeMalformedBlock, w.Size); err != nil {
		return HeapBlock{}, err
	}

	current := w.CurrentPointer
	if current == nil {
		current = w.CurrentPointerID
	}
	dangling := w.DanglingPointers
	if dangling == nil {
		dangling = w.DanglingPointerID
	}

	return HeapBlock{
		Size:               w.Size,
		State:              state,
		Metadata:           w.Metadata,
		CurrentPointerID:   current,
		DanglingPointerIDs: dangling,
	}, nil
}
