package compiler

import (
	"fmt"

	"github.com/roach88/actiongraph/internal/formula"
	"github.com/roach88/actiongraph/internal/graph"
	"github.com/roach88/actiongraph/internal/ir"
	"github.com/roach88/actiongraph/internal/query"
)

// Fluents returns the fluent names mentioned by st in first-mention order.
// Action names are not fluents.
func Fluents(st Statement) []string {
	switch s := st.(type) {
	case Always:
		return formula.FluentsOf(s.Formula)
	case Impossible:
		return formula.FluentsOf(s.Cond)
	case Initially:
		return formula.FluentsOf(s.Formula)
	case Causes:
		return mergeFluents(formula.FluentsOf(s.Effect), formula.FluentsOf(s.Cond))
	case Releases:
		return mergeFluents(formula.FluentsOf(s.Effect), formula.FluentsOf(s.Cond))
	case After:
		return formula.FluentsOf(s.Formula)
	case Lasts:
		return nil
	}
	return nil
}

func mergeFluents(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Apply mutates sys according to st. The universe of sys must already
// contain every fluent st mentions.
func Apply(st Statement, sys *graph.System) error {
	switch s := st.(type) {
	case Always:
		return sys.AddInvariant(s.Formula)
	case Impossible:
		return sys.Forbid(s.Action, s.Cond)
	case Initially:
		cond := s.Formula
		if s.Negated {
			cond = formula.Not{X: cond}
		}
		return sys.AddInitialCondition(cond)
	case Causes:
		return applyCauses(sys, s)
	case Releases:
		return applyReleases(sys, s)
	case After:
		holds, err := query.Evaluate(query.After{
			Mode:    query.Necessarily,
			Formula: s.Formula,
			Actions: s.Actions,
		}, sys)
		if err != nil {
			return err
		}
		sys.Observe(s.Raw, holds)
		return nil
	case Lasts:
		_, err := sys.SetDuration(s.Action, s.Duration)
		return err
	}
	return ir.NewInternalError("unhandled statement type %T", st)
}

// applyCauses adds, for each state satisfying the condition and each
// satisfiable effect clause, an edge to the state with the clause forced.
func applyCauses(sys *graph.System, s Causes) error {
	clauses := formula.ClausesOf(s.Effect)
	for _, src := range sys.States() {
		ok, err := sys.Satisfies(src, s.Cond)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, c := range clauses {
			if !c.Satisfiable() {
				continue
			}
			dst, err := sys.Overlay(src, c.Literals)
			if err != nil {
				return ir.NewInternalError("%s: %v", s.Raw, err)
			}
			if _, err := sys.AddEdge(src, s.Action, dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyReleases adds, for each state satisfying the condition and each
// effect clause, an edge to every assignment of the clause's fluents.
func applyReleases(sys *graph.System, s Releases) error {
	clauses := formula.ClausesOf(s.Effect)
	for _, src := range sys.States() {
		ok, err := sys.Satisfies(src, s.Cond)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, c := range clauses {
			if c.False {
				continue
			}
			names := clauseFluents(c)
			if len(names) > graph.HardMaxFluents {
				return ir.NewInternalError("%s: too many released fluents", s.Raw)
			}
			for bits := uint64(0); bits < 1<<len(names); bits++ {
				lits := make([]formula.Literal, len(names))
				for i, name := range names {
					lits[i] = formula.Literal{Name: name, Value: bits&(1<<i) != 0}
				}
				dst, err := sys.Overlay(src, lits)
				if err != nil {
					return ir.NewInternalError("%s: %v", s.Raw, err)
				}
				if _, err := sys.AddEdge(src, s.Action, dst); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func clauseFluents(c formula.Clause) []string {
	var names []string
	seen := make(map[string]bool, len(c.Literals))
	for _, l := range c.Literals {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	return names
}

// Describe renders st back into a canonical single-line form.
func Describe(st Statement) string {
	switch s := st.(type) {
	case Always:
		return "always " + formula.Format(s.Formula)
	case Impossible:
		if s.Cond == nil {
			return "impossible " + s.Action
		}
		return fmt.Sprintf("impossible %s if %s", s.Action, formula.Format(s.Cond))
	case Initially:
		if s.Negated {
			return fmt.Sprintf("%s initially false", formula.Format(s.Formula))
		}
		return "initially " + formula.Format(s.Formula)
	case Causes:
		return describeLaw(s.Action, "causes", s.Effect, s.Cond)
	case Releases:
		return describeLaw(s.Action, "releases", s.Effect, s.Cond)
	case After:
		out := formula.Format(s.Formula) + " after "
		for i, a := range s.Actions {
			if i > 0 {
				out += ", "
			}
			out += a
		}
		return out
	case Lasts:
		return fmt.Sprintf("%s lasts %d", s.Action, s.Duration)
	}
	return st.Text()
}

func describeLaw(action, verb string, effect, cond formula.Expr) string {
	out := fmt.Sprintf("%s %s %s", action, verb, formula.Format(effect))
	if cond != nil {
		out += " if " + formula.Format(cond)
	}
	return out
}
