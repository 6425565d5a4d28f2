package query

import (
	"github.com/roach88/actiongraph/internal/formula"
	"github.com/roach88/actiongraph/internal/graph"
	"github.com/roach88/actiongraph/internal/ir"
)

// Eval parses text and evaluates it against sys.
func Eval(text string, sys *graph.System) (bool, error) {
	q, err := Parse(text)
	if err != nil {
		return false, err
	}
	return Evaluate(q, sys)
}

// Evaluate answers q against sys.
func Evaluate(q Query, sys *graph.System) (bool, error) {
	var holds func(graph.State) (bool, error)

	switch x := q.(type) {
	case After:
		holds = func(s graph.State) (bool, error) { return evalAfter(x, sys, s) }
	case Initially:
		holds = func(s graph.State) (bool, error) { return sys.Satisfies(s, x.Formula) }
	case Executable:
		holds = func(s graph.State) (bool, error) {
			frontier, ok := run(sys, s, x.Actions, x.Mode == Necessarily)
			return ok && len(frontier) > 0, nil
		}
	case Temporal:
		sat, err := satisfying(x.Op, x.Formula, sys)
		if err != nil {
			return false, err
		}
		holds = func(s graph.State) (bool, error) { return sat.Has(s), nil }
	default:
		return false, ir.NewInternalError("unknown query type %T", q)
	}

	return quantify(q.Quantifier(), sys.Initial(), holds)
}

// quantify applies mode over the initial candidates.
func quantify(mode Mode, initial []graph.State, holds func(graph.State) (bool, error)) (bool, error) {
	for _, s := range initial {
		ok, err := holds(s)
		if err != nil {
			return false, err
		}
		if mode == Possibly && ok {
			return true, nil
		}
		if mode == Necessarily && !ok {
			return false, nil
		}
	}
	return mode == Necessarily, nil
}

// point is a state reached along some branch, with the time spent.
type point struct {
	state   graph.State
	elapsed int
}

// run executes actions from start and returns the distinct end points.
// With strict set, a branch that cannot continue makes the whole run fail
// (ok=false); otherwise such branches are dropped.
func run(sys *graph.System, start graph.State, actions []string, strict bool) ([]point, bool) {
	frontier := []point{{state: start}}
	for _, a := range actions {
		var next []point
		seen := make(map[point]bool)
		for _, p := range frontier {
			edges := sys.Step(p.state, a)
			if len(edges) == 0 && strict {
				return nil, false
			}
			for _, e := range edges {
				np := point{state: e.Target, elapsed: p.elapsed + e.Duration}
				if !seen[np] {
					seen[np] = true
					next = append(next, np)
				}
			}
		}
		frontier = next
	}
	return frontier, true
}

func evalAfter(q After, sys *graph.System, start graph.State) (bool, error) {
	strict := q.Mode == Necessarily
	frontier, ok := run(sys, start, q.Actions, strict)
	if !ok || len(frontier) == 0 {
		return false, nil
	}
	for _, p := range frontier {
		holds, err := sys.Satisfies(p.state, q.Formula)
		if err != nil {
			return false, err
		}
		if q.Within != nil && p.elapsed > *q.Within {
			holds = false
		}
		if strict && !holds {
			return false, nil
		}
		if !strict && holds {
			return true, nil
		}
	}
	return strict, nil
}

// ----- CTL fixpoints -----

// StateSet is a set of states.
type StateSet map[graph.State]struct{}

func (s StateSet) Has(x graph.State) bool { _, ok := s[x]; return ok }
func (s StateSet) Add(x graph.State)      { s[x] = struct{}{} }

func (s StateSet) Equals(other StateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// kripke is the successor relation over valid states.
type kripke struct {
	states []graph.State
	succ   map[graph.State][]graph.State
}

func newKripke(sys *graph.System) *kripke {
	k := &kripke{states: sys.ValidStates(), succ: make(map[graph.State][]graph.State)}
	for _, s := range k.states {
		for _, e := range sys.Outgoing(s) {
			k.succ[s] = append(k.succ[s], e.Target)
		}
	}
	return k
}

// preE returns states with SOME successor in w.
func (k *kripke) preE(w StateSet) StateSet {
	out := StateSet{}
	for _, s := range k.states {
		for _, t := range k.succ[s] {
			if w.Has(t) {
				out.Add(s)
				break
			}
		}
	}
	return out
}

// preA returns states whose successors are ALL in w (dead ends vacuously).
func (k *kripke) preA(w StateSet) StateSet {
	out := StateSet{}
	for _, s := range k.states {
		all := true
		for _, t := range k.succ[s] {
			if !w.Has(t) {
				all = false
				break
			}
		}
		if all {
			out.Add(s)
		}
	}
	return out
}

func (k *kripke) complement(w StateSet) StateSet {
	out := StateSet{}
	for _, s := range k.states {
		if !w.Has(s) {
			out.Add(s)
		}
	}
	return out
}

// ef is the least fixpoint W = sat ∪ preE(W).
func (k *kripke) ef(sat StateSet) StateSet {
	w := StateSet{}
	for s := range sat {
		w.Add(s)
	}
	for {
		next := StateSet{}
		for s := range w {
			next.Add(s)
		}
		for s := range k.preE(w) {
			next.Add(s)
		}
		if next.Equals(w) {
			return w
		}
		w = next
	}
}

// eg is the greatest fixpoint Z = sat ∩ (preE(Z) ∪ deadEnds).
func (k *kripke) eg(sat StateSet) StateSet {
	z := StateSet{}
	for s := range sat {
		z.Add(s)
	}
	for {
		pre := k.preE(z)
		next := StateSet{}
		for s := range z {
			if pre.Has(s) || len(k.succ[s]) == 0 {
				next.Add(s)
			}
		}
		if next.Equals(z) {
			return z
		}
		z = next
	}
}

func satisfying(op Op, f formula.Expr, sys *graph.System) (StateSet, error) {
	k := newKripke(sys)
	sat := StateSet{}
	for _, s := range k.states {
		ok, err := sys.Satisfies(s, f)
		if err != nil {
			return nil, err
		}
		if ok {
			sat.Add(s)
		}
	}

	switch op {
	case OpEX:
		return k.preE(sat), nil
	case OpAX:
		return k.preA(sat), nil
	case OpEF:
		return k.ef(sat), nil
	case OpAG:
		return k.complement(k.ef(k.complement(sat))), nil
	case OpEG:
		return k.eg(sat), nil
	case OpAF:
		return k.complement(k.eg(k.complement(sat))), nil
	}
	return nil, ir.NewInternalError("unknown temporal operator %q", op)
}
