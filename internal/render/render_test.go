package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/ir"
)

func compile(t *testing.T, texts ...string) *engine.Aggregator {
	t.Helper()
	a := engine.New()
	require.NoError(t, a.AddStatements(context.Background(), texts))
	return a
}

func model(t *testing.T, a *engine.Aggregator) ir.Model {
	t.Helper()
	m, err := a.Model()
	require.NoError(t, err)
	return m
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var toggle = []string{
	"p initially true",
	"a causes p if ~p",
	"a causes ~p if p",
	"a lasts 3",
}

func TestDOT_Toggle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DOT(&buf, model(t, compile(t, toggle...))))
	newGoldie(t).Assert(t, "toggle_dot", buf.Bytes())
}

func TestDOT_InvalidStateDashed(t *testing.T) {
	a := compile(t, "always p or q", "initially p and q", "a causes ~p if p")

	var buf bytes.Buffer
	require.NoError(t, DOT(&buf, model(t, a)))
	newGoldie(t).Assert(t, "invariant_dot", buf.Bytes())
}

func TestMermaid_Toggle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Mermaid(&buf, model(t, compile(t, toggle...))))
	newGoldie(t).Assert(t, "toggle_mermaid", buf.Bytes())
}

func TestText_Toggle(t *testing.T) {
	a := compile(t, append(toggle, "~p after a")...)
	sys := a.System()

	var cycles []string
	for _, c := range sys.Cycles() {
		cycles = append(cycles, c.String(sys))
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, model(t, a), cycles))
	newGoldie(t).Assert(t, "toggle_text", buf.Bytes())
}

func TestText_EmptyModel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, model(t, engine.New()), nil))
	assert.Equal(t, "fluents: (none)\nstates (1):\n  s0  true\ninitial: (none)\nedges (0):\n", buf.String())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"p\nq"`, quote("p\nq"))
	assert.Equal(t, `"say \"hi\" \\ bye"`, quote(`say "hi" \ bye`))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", YesNo(true))
	assert.Equal(t, "no", YesNo(false))
}
