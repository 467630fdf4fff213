// Package errors defines the coded errors memlayout reports.
//
// Every failure that crosses a package boundary carries a [Code]. The HTTP
// server maps codes to status codes, the frame relay copies them into
// response bodies, and the builder counts MALFORMED_* diagnostics instead
// of failing the whole graph:
//
//	if errors.Is(err, errors.ErrCodeMalformedSymbol) {
//	    skipped++
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	// Caller input.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidTheme    Code = "INVALID_THEME"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"

	// Analyzer output. MALFORMED_* entries are skipped, not fatal.
	ErrCodeMalformedSymbol Code = "MALFORMED_SYMBOL"
	ErrCodeMalformedBlock  Code = "MALFORMED_BLOCK"
	ErrCodeAnalysis        Code = "ANALYSIS_ERROR"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeTransport Code = "TRANSPORT_ERROR"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a [Code] with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is New with a cause. errors.Is and errors.As see through it.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause.
// Errors without a code are returned as they print.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Count returns how many errors in errs carry the given code.
func Count(errs []error, code Code) int {
	n := 0
	for _, err := range errs {
		if Is(err, code) {
			n++
		}
	}
	return n
}
