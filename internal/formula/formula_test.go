package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actiongraph/internal/ir"
)

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"single", "p", Lit{Name: "p"}},
		{"negated tilde", "~p", Not{X: Lit{Name: "p"}}},
		{"negated bang", "!p", Not{X: Lit{Name: "p"}}},
		{"negated word", "not p", Not{X: Lit{Name: "p"}}},
		{"true", "true", Const{Value: true}},
		{"False capitalized", "False", Const{Value: false}},
		{"and", "p and ~q", And{Terms: []Expr{Lit{Name: "p"}, Not{X: Lit{Name: "q"}}}}},
		{"symbolic and", "p && q", And{Terms: []Expr{Lit{Name: "p"}, Lit{Name: "q"}}}},
		{"or", "p or q", Or{Terms: []Expr{Lit{Name: "p"}, Lit{Name: "q"}}}},
		{"precedence", "a and b or c", Or{Terms: []Expr{
			And{Terms: []Expr{Lit{Name: "a"}, Lit{Name: "b"}}},
			Lit{Name: "c"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"p and",
		"or q",
		"p q",
		"~",
		"p and (q)",
		"p = q",
		"~~p",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, ir.IsFormatError(err), "want FormatError, got %T", err)
		})
	}
}

func TestEvaluate_Examples(t *testing.T) {
	ok, err := Eval("p and ~q", Assignment{"p": true, "q": false})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval("p or q", Assignment{"p": false, "q": false})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Eval("", Assignment{})
	require.NoError(t, err)
	assert.True(t, ok, "empty formula is vacuously true")
}

func TestEvaluate_Table(t *testing.T) {
	state := Assignment{"p": true, "q": false, "r": true}
	tests := []struct {
		formula string
		want    bool
	}{
		{"p", true},
		{"q", false},
		{"~q", true},
		{"p and r", true},
		{"p and q", false},
		{"q or r", true},
		{"q or ~p", false},
		{"q and p or r and ~q", true},
		{"true", true},
		{"false", false},
		{"false or p", true},
		{"not r", false},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := Eval(tt.formula, state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Fluent names sharing a prefix must not be confused: substituting "p"
// must not touch "pq" or "p2".
func TestEvaluate_PrefixSharingNames(t *testing.T) {
	state := Assignment{"p": false, "pq": true, "p2": true}

	ok, err := Eval("pq", state)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval("~p and pq and p2", state)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval("p", state)
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := Fluents("~p and pq or p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "pq", "p2"}, names)
}

func TestEvaluate_UnassignedFluentIsInternalError(t *testing.T) {
	_, err := Eval("p and missing", Assignment{"p": true})
	require.Error(t, err)
	assert.True(t, ir.IsInternalError(err))
	assert.False(t, ir.IsFormatError(err))
}

func TestFluents_OrderAndDedup(t *testing.T) {
	names, err := Fluents("b and ~a or a and c or ~b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names)

	names, err = Fluents("true or false")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestClauses_SplitOnOr(t *testing.T) {
	clauses, err := Clauses("p and ~q or r")
	require.NoError(t, err)
	require.Len(t, clauses, 2)

	assert.Equal(t, []Literal{{Name: "p", Value: true}, {Name: "q", Value: false}}, clauses[0].Literals)
	assert.Equal(t, []Literal{{Name: "r", Value: true}}, clauses[1].Literals)
}

func TestClauses_Constants(t *testing.T) {
	clauses, err := Clauses("true")
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Empty(t, clauses[0].Literals)
	assert.True(t, clauses[0].Satisfiable())

	clauses, err = Clauses("p and false")
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.False(t, clauses[0].Satisfiable())

	clauses = ClausesOf(nil)
	require.Len(t, clauses, 1)
	assert.Empty(t, clauses[0].Literals)
}

func TestClauses_Contradiction(t *testing.T) {
	clauses, err := Clauses("p and ~p")
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.False(t, clauses[0].Satisfiable())
}

func TestClausesOf_NegatedDisjunction(t *testing.T) {
	// ~(p or q) == ~p and ~q
	e := Not{X: Or{Terms: []Expr{Lit{Name: "p"}, Lit{Name: "q"}}}}
	clauses := ClausesOf(e)
	require.Len(t, clauses, 1)
	assert.Equal(t, []Literal{{Name: "p", Value: false}, {Name: "q", Value: false}}, clauses[0].Literals)

	// ~(p and q) == ~p or ~q
	e = Not{X: And{Terms: []Expr{Lit{Name: "p"}, Lit{Name: "q"}}}}
	clauses = ClausesOf(e)
	require.Len(t, clauses, 2)
	assert.Equal(t, []Literal{{Name: "p", Value: false}}, clauses[0].Literals)
	assert.Equal(t, []Literal{{Name: "q", Value: false}}, clauses[1].Literals)
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, input := range []string{"p", "~p", "p and ~q", "a and b or c", "true"} {
		e := MustParse(input)
		again := MustParse(Format(e))
		assert.Equal(t, e, again, input)
	}
	assert.Equal(t, "true", Format(nil))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("p"))
	assert.True(t, IsName("has_key2"))
	assert.True(t, IsName("_x"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("2p"))
	assert.False(t, IsName("and"))
	assert.False(t, IsName("True"))
	assert.False(t, IsName("a-b"))
}
