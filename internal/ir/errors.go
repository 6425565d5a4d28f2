package ir

import (
	"errors"
	"fmt"
)

// FormatError reports a statement, formula or query that does not match
// its expected shape.
//
// Kind names what was being parsed ("statement", "formula", "query", or a
// statement keyword such as "causes"). Field names the part that was
// wrong ("keyword", "if", "duration", "effect", ...).
type FormatError struct {
	Kind    string
	Field   string
	Message string
	Input   string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %s: %s (in %q)", e.Kind, e.Field, e.Message, e.Input)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// NewFormatError creates a FormatError.
func NewFormatError(kind, field, input, format string, args ...any) *FormatError {
	return &FormatError{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Input:   input,
	}
}

// InternalError reports a broken invariant inside actiongraph itself, for
// example a formula literal whose fluent is missing from the assignment it
// is evaluated against. Callers should never see one.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

// NewInternalError creates an InternalError.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// IsFormatError returns true if err is or wraps a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsInternalError returns true if err is or wraps an InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
