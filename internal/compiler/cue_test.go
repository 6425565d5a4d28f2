package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actiongraph/internal/ir"
)

func TestCompileCUE_StringsAndStructs(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
statements: [
	"initially p",
	{text: "a causes ~p if p"},
	"a lasts 2",
]
`)
	require.NoError(t, v.Err())

	got, err := CompileCUE(v)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, KindInitially, got[0].Statement.Kind())
	assert.Equal(t, "a causes ~p if p", got[1].Statement.Text())
	assert.Equal(t, Lasts{Raw: "a lasts 2", Action: "a", Duration: 2}, got[2].Statement)
	assert.Equal(t, 3, got[0].Pos.Line())
}

func TestCompileCUE_MissingList(t *testing.T) {
	v := cuecontext.New().CompileString(`name: "x"`)

	_, err := CompileCUE(v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "statements", ce.Field)
}

func TestCompileCUE_BadStatementWrapsFormatError(t *testing.T) {
	v := cuecontext.New().CompileString(`statements: ["initially p", "foo bar baz"]`)

	_, err := CompileCUE(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "statements[1]", ce.Field)
	assert.True(t, ir.IsFormatError(err))
}

func TestCompileCUE_BadEntryType(t *testing.T) {
	v := cuecontext.New().CompileString(`statements: [42]`)

	_, err := CompileCUE(v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "statements[0]", ce.Field)
	assert.False(t, ir.IsFormatError(err))
}
