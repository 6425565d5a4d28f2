package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	errs := Validate(parseAll(t,
		"initially alive and ~loaded",
		"load causes loaded",
		"shoot causes ~alive if loaded",
		"impossible load if loaded",
		"shoot lasts 2",
		"~alive after load, shoot",
	))
	assert.Empty(t, errs)
}

func TestValidate_Duplicate(t *testing.T) {
	errs := Validate(parseAll(t, "a causes p", "a  CAUSES p"))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateStatement, errs[0].Code)
	assert.Equal(t, 2, errs[0].Line)
	assert.Contains(t, errs[0].Message, "line 1")
}

func TestValidate_ContradictoryEffect(t *testing.T) {
	errs := Validate(parseAll(t, "a causes p and ~p or q"))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrContradictoryLaw, errs[0].Code)
	assert.Equal(t, "causes.effect[0]", errs[0].Field)
}

func TestValidate_EmptyEffect(t *testing.T) {
	errs := Validate(parseAll(t, "a causes false"))
	assert.Equal(t, []string{ErrContradictoryLaw, ErrEmptyEffect}, codes(errs))
}

func TestValidate_ReleaseOfContradictionIsFine(t *testing.T) {
	errs := Validate(parseAll(t, "a releases p and ~p"))
	assert.Empty(t, errs)
}

func TestValidate_UnknownActions(t *testing.T) {
	errs := Validate(parseAll(t,
		"a causes p",
		"b lasts 3",
		"impossible c",
		"p after a, d",
	))
	assert.Equal(t, []string{ErrUnknownLastsAction, ErrUnknownImpossibleAction, ErrUnknownObservedAction}, codes(errs))
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, 3, errs[1].Line)
	assert.Equal(t, 4, errs[2].Line)
	assert.Contains(t, errs[2].Message, `"d"`)
}

func TestValidate_UnsatisfiableInitial(t *testing.T) {
	errs := Validate(parseAll(t, "a causes q", "initially p", "p initially false"))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsatisfiableInitial, errs[0].Code)
	assert.Equal(t, 2, errs[0].Line)
}

func TestValidate_UnsatisfiableInvariant(t *testing.T) {
	errs := Validate(parseAll(t, "always p and ~p", "always p or ~p"))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsatisfiableInvariant, errs[0].Code)
	assert.Equal(t, 1, errs[0].Line)
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "lasts", Message: "boom", Code: ErrUnknownLastsAction, Line: 4}
	assert.Equal(t, "[E110] line 4: lasts: boom", e.Error())

	e.Line = 0
	assert.Equal(t, "[E110] lasts: boom", e.Error())
}
