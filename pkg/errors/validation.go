package errors

import (
	"math"
	"regexp"
)

// maxSymbolNameLength bounds identifiers accepted from the analyzer.
const maxSymbolNameLength = 256

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// ValidateSymbolName checks a stack symbol name reported by the analyzer.
// Names become node ids, so they must follow the analyzer's identifier
// grammar ^([A-Za-z]|_)([A-Za-z]|_|\d)* and stay under 256 bytes. A name
// starting with a digit could otherwise collide with a heap block id.
func ValidateSymbolName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeMalformedSymbol, "symbol name cannot be empty")
	case len(name) > maxSymbolNameLength:
		return New(ErrCodeMalformedSymbol, "symbol name too long (max %d characters)", maxSymbolNameLength)
	case !identifierPattern.MatchString(name):
		return New(ErrCodeMalformedSymbol, "symbol name %q is not an identifier", name)
	}
	return nil
}

// ValidateSize validates the byte size of a stack symbol or heap block.
func ValidateSize(code Code, size int) error {
	if size <= 0 {
		return New(code, "size must be positive, got %d", size)
	}
	return nil
}

// ValidateViewport validates viewport dimensions and the panel split ratio.
// The split is the fraction of the viewport taken by the editor panel, so it
// must lie in [0, 1).
func ValidateViewport(width, height, split float64) error {
	for _, v := range []float64{width, height, split} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidViewport, "viewport values must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidViewport, "viewport must have positive size, got %gx%g", width, height)
	}
	if split < 0 || split >= 1 {
		return New(ErrCodeInvalidViewport, "panel split must be in [0, 1), got %g", split)
	}
	return nil
}
