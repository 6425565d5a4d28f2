package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Located is a parsed statement with the source position it came from.
type Located struct {
	Statement Statement
	Pos       token.Pos
}

// CompileCUE reads the "statements" list of a CUE value and parses each
// entry. Entries are either plain strings or structs with a "text" field:
//
//	statements: [
//		"initially p",
//		{text: "a causes ~p if p"},
//	]
func CompileCUE(v cue.Value) ([]Located, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	list := v.LookupPath(cue.ParsePath("statements"))
	if !list.Exists() {
		return nil, &CompileError{
			Field:   "statements",
			Message: "statements list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Located
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		text, err := statementText(item)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("statements[%d]", i),
				Message: err.Error(),
				Pos:     item.Pos(),
			}
		}
		st, err := Parse(text)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("statements[%d]", i),
				Message: err.Error(),
				Pos:     item.Pos(),
				Err:     err,
			}
		}
		out = append(out, Located{Statement: st, Pos: item.Pos()})
	}
	return out, nil
}

// statementText accepts a string or a struct with a "text" field.
func statementText(v cue.Value) (string, error) {
	if s, err := v.String(); err == nil {
		return s, nil
	}
	textVal := v.LookupPath(cue.ParsePath("text"))
	if !textVal.Exists() {
		return "", fmt.Errorf("statement must be a string or have a text field")
	}
	return textVal.String()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
