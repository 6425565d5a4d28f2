package formula

import (
	"github.com/roach88/actiongraph/internal/ir"
)

// Env supplies fluent values during evaluation.
type Env interface {
	// Lookup returns the value of fluent name and whether it is assigned.
	Lookup(name string) (value bool, ok bool)
}

// Assignment is a (possibly partial) fluent assignment.
type Assignment map[string]bool

// Lookup implements Env.
func (a Assignment) Lookup(name string) (bool, bool) {
	v, ok := a[name]
	return v, ok
}

// Evaluate reports whether e holds under env. A nil Expr is true.
//
// A fluent missing from env is an InternalError: every formula must be
// evaluated against an assignment covering the universe it was sized from.
func Evaluate(e Expr, env Env) (bool, error) {
	switch x := e.(type) {
	case nil:
		return true, nil
	case Lit:
		v, ok := env.Lookup(x.Name)
		if !ok {
			return false, ir.NewInternalError("fluent %q has no value in the evaluation state", x.Name)
		}
		return v, nil
	case Const:
		return x.Value, nil
	case Not:
		v, err := Evaluate(x.X, env)
		return !v, err
	case And:
		for _, t := range x.Terms {
			v, err := Evaluate(t, env)
			if err != nil || !v {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, t := range x.Terms {
			v, err := Evaluate(t, env)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	}
	return false, ir.NewInternalError("unknown formula node %T", e)
}

// Eval parses text and evaluates it under env.
func Eval(text string, env Env) (bool, error) {
	e, err := Parse(text)
	if err != nil {
		return false, err
	}
	return Evaluate(e, env)
}

// FluentsOf returns every fluent name in e, in order of first mention.
// Negation and clause boundaries are ignored.
func FluentsOf(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case Lit:
			if !seen[x.Name] {
				seen[x.Name] = true
				names = append(names, x.Name)
			}
		case Not:
			walk(x.X)
		case And:
			for _, t := range x.Terms {
				walk(t)
			}
		case Or:
			for _, t := range x.Terms {
				walk(t)
			}
		}
	}
	walk(e)
	return names
}

// Fluents parses text and returns its fluent names.
func Fluents(text string) ([]string, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return FluentsOf(e), nil
}

// Literal is a fluent with the value a clause requires of it.
type Literal struct {
	Name  string
	Value bool
}

// Clause is one disjunct: a conjunction of literals.
// False is set when the clause contains the constant false.
type Clause struct {
	Literals []Literal
	False    bool
}

// Satisfiable reports whether some assignment makes c true.
func (c Clause) Satisfiable() bool {
	if c.False {
		return false
	}
	want := make(map[string]bool, len(c.Literals))
	for _, l := range c.Literals {
		if v, ok := want[l.Name]; ok && v != l.Value {
			return false
		}
		want[l.Name] = l.Value
	}
	return true
}

// ClausesOf returns the disjuncts of e in order. For formulas produced by
// Parse this is a split on "or"; other trees are converted to disjunctive
// normal form. A nil Expr yields one empty clause.
func ClausesOf(e Expr) []Clause {
	if e == nil {
		return []Clause{{}}
	}
	return dnf(e, false)
}

// Clauses parses text and returns its disjuncts.
func Clauses(text string) ([]Clause, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return ClausesOf(e), nil
}

func dnf(e Expr, negate bool) []Clause {
	switch x := e.(type) {
	case Lit:
		return []Clause{{Literals: []Literal{{Name: x.Name, Value: !negate}}}}
	case Const:
		return []Clause{{False: x.Value == negate}}
	case Not:
		return dnf(x.X, !negate)
	case And:
		if negate {
			return disjoin(x.Terms, negate)
		}
		return conjoin(x.Terms, negate)
	case Or:
		if negate {
			return conjoin(x.Terms, negate)
		}
		return disjoin(x.Terms, negate)
	}
	return nil
}

func disjoin(terms []Expr, negate bool) []Clause {
	var out []Clause
	for _, t := range terms {
		out = append(out, dnf(t, negate)...)
	}
	return out
}

func conjoin(terms []Expr, negate bool) []Clause {
	out := []Clause{{}}
	for _, t := range terms {
		var next []Clause
		for _, left := range out {
			for _, right := range dnf(t, negate) {
				lits := make([]Literal, 0, len(left.Literals)+len(right.Literals))
				lits = append(lits, left.Literals...)
				lits = append(lits, right.Literals...)
				next = append(next, Clause{Literals: lits, False: left.False || right.False})
			}
		}
		out = next
	}
	return out
}
