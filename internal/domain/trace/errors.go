package trace

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers;
// errors.As reaches the concrete types below for field-level detail.
var (
	ErrDecode     = errors.New("decode failed")
	ErrValidation = errors.New("validation failed")
	ErrParse      = errors.New("parse failed")
)

// DecodeError reports a malformed encoded string.
type DecodeError struct {
	Field  string // which fixed-width field or structure failed
	Input  string // offending fragment
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q: %s", e.Field, e.Input, e.Reason)
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ValidationError reports input that violates the point or trace contract.
type ValidationError struct {
	Field    string
	Expected string
	Got      any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: expected %s, got %v", e.Field, e.Expected, e.Got)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ParseError is the umbrella returned by Parse. It wraps a DecodeError, a
// ValidationError, or a JSON syntax error.
type ParseError struct {
	State State // envelope state being parsed, "" for bare input
	Err   error
}

func (e *ParseError) Error() string {
	if e.State == "" {
		return "parse trace: " + e.Err.Error()
	}
	return fmt.Sprintf("parse %s trace: %v", e.State, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Kind classifies a parse failure for logging and metrics.
func (e *ParseError) Kind() string {
	var de *DecodeError
	var ve *ValidationError
	switch {
	case errors.As(e.Err, &de):
		return "decode"
	case errors.As(e.Err, &ve):
		return "validation"
	default:
		return "syntax"
	}
}
