package graph

import (
	"fmt"
	"slices"

	"github.com/roach88/actiongraph/internal/formula"
	"github.com/roach88/actiongraph/internal/ir"
)

const (
	// DefaultMaxFluents bounds the universe when the caller sets no limit.
	// 2^20 states is already about a million.
	DefaultMaxFluents = 20

	// HardMaxFluents is the widest universe a State bitset can hold.
	HardMaxFluents = 62
)

// Edge is one transition. Duration is 0 until a duration statement sets it.
type Edge struct {
	Source   State
	Action   string
	Target   State
	Duration int
}

// SelfLoop reports whether the edge leaves its source unchanged.
func (e Edge) SelfLoop() bool {
	return e.Source == e.Target
}

type edgeKey struct {
	source State
	action string
	target State
}

// forbidden is a registered "impossible A if C" constraint.
type forbidden struct {
	action string
	cond   formula.Expr
}

// System is a transition system over a fixed fluent universe.
type System struct {
	fluents []string
	index   map[string]int
	states  []State

	edges    []Edge
	edgeAt   map[edgeKey]int
	outgoing map[State][]int

	initialConds []formula.Expr
	initial      []State
	initialSet   map[State]bool

	invariants []formula.Expr
	invalid    map[State]bool
	forbidden  []forbidden

	observations []ir.Observation
}

// New enumerates all 2^n states over fluents. Names must be distinct and
// valid. maxFluents <= 0 selects DefaultMaxFluents; it is capped at
// HardMaxFluents.
func New(fluents []string, maxFluents int) (*System, error) {
	if maxFluents <= 0 {
		maxFluents = DefaultMaxFluents
	}
	maxFluents = min(maxFluents, HardMaxFluents)
	if len(fluents) > maxFluents {
		return nil, ir.NewFormatError("system", "fluents", "",
			"%d fluents exceed the limit of %d (%v)", len(fluents), maxFluents, fluents)
	}

	sys := &System{
		fluents:    slices.Clone(fluents),
		index:      make(map[string]int, len(fluents)),
		edgeAt:     make(map[edgeKey]int),
		outgoing:   make(map[State][]int),
		initialSet: make(map[State]bool),
		invalid:    make(map[State]bool),
	}
	for j, name := range fluents {
		if !formula.IsName(name) {
			return nil, ir.NewFormatError("system", "fluents", name, "invalid fluent name")
		}
		if _, dup := sys.index[name]; dup {
			return nil, ir.NewFormatError("system", "fluents", name, "duplicate fluent name")
		}
		sys.index[name] = j
	}

	count := 1 << uint(len(fluents))
	sys.states = make([]State, count)
	for k := 0; k < count; k++ {
		sys.states[k] = sys.stateAt(k)
	}
	return sys, nil
}

// Fluents returns the universe in insertion order.
func (sys *System) Fluents() []string {
	return slices.Clone(sys.fluents)
}

// States returns every enumerated state in enumeration order.
func (sys *System) States() []State {
	return slices.Clone(sys.states)
}

// NumStates returns 2^n.
func (sys *System) NumStates() int {
	return len(sys.states)
}

// Edges returns the deduplicated edges in insertion order.
func (sys *System) Edges() []Edge {
	return slices.Clone(sys.edges)
}

// Outgoing returns the edges leaving s, in insertion order.
func (sys *System) Outgoing(s State) []Edge {
	idx := sys.outgoing[s]
	out := make([]Edge, len(idx))
	for i, k := range idx {
		out[i] = sys.edges[k]
	}
	return out
}

// Step returns the edges leaving s labelled action.
func (sys *System) Step(s State, action string) []Edge {
	var out []Edge
	for _, k := range sys.outgoing[s] {
		if sys.edges[k].Action == action {
			out = append(out, sys.edges[k])
		}
	}
	return out
}

// HasEdge reports whether (source, action, target) exists.
func (sys *System) HasEdge(source State, action string, target State) bool {
	_, ok := sys.edgeAt[edgeKey{source, action, target}]
	return ok
}

// Actions returns every action label in order of first edge.
func (sys *System) Actions() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range sys.edges {
		if !seen[e.Action] {
			seen[e.Action] = true
			out = append(out, e.Action)
		}
	}
	return out
}

// AddEdge inserts (source, action, target) with duration 0.
//
// Returns false without error when the edge already exists (the first
// insertion wins), when either endpoint violates an invariant, or when
// action is forbidden in source.
func (sys *System) AddEdge(source State, action string, target State) (bool, error) {
	key := edgeKey{source, action, target}
	if _, dup := sys.edgeAt[key]; dup {
		return false, nil
	}
	if sys.invalid[source] || sys.invalid[target] {
		return false, nil
	}
	allowed, err := sys.Allowed(source, action)
	if err != nil || !allowed {
		return false, err
	}

	sys.edgeAt[key] = len(sys.edges)
	sys.outgoing[source] = append(sys.outgoing[source], len(sys.edges))
	sys.edges = append(sys.edges, Edge{Source: source, Action: action, Target: target})
	return true, nil
}

// SetDuration sets the duration of every non-self-loop edge labelled
// action and returns how many edges changed.
func (sys *System) SetDuration(action string, duration int) (int, error) {
	if duration < 0 {
		return 0, fmt.Errorf("set duration: negative duration %d", duration)
	}
	n := 0
	for i := range sys.edges {
		e := &sys.edges[i]
		if e.Action == action && !e.SelfLoop() {
			e.Duration = duration
			n++
		}
	}
	return n, nil
}

// AddInitialCondition registers an initial-condition formula. The
// candidates are the valid states satisfying every registered condition.
func (sys *System) AddInitialCondition(cond formula.Expr) error {
	sys.initialConds = append(sys.initialConds, cond)
	return sys.recomputeInitial()
}

// Initial returns the initial-state candidates in enumeration order.
func (sys *System) Initial() []State {
	return slices.Clone(sys.initial)
}

// IsInitial reports whether s is an initial-state candidate.
func (sys *System) IsInitial(s State) bool {
	return sys.initialSet[s]
}

func (sys *System) recomputeInitial() error {
	sys.initial = nil
	sys.initialSet = make(map[State]bool)
	if len(sys.initialConds) == 0 {
		return nil
	}
	for _, s := range sys.states {
		if sys.invalid[s] {
			continue
		}
		ok, err := sys.satisfiesAll(s, sys.initialConds)
		if err != nil {
			return err
		}
		if ok {
			sys.initial = append(sys.initial, s)
			sys.initialSet[s] = true
		}
	}
	return nil
}

// AddInvariant registers a formula every valid state must satisfy.
// Existing edges and initial candidates touching newly invalid states are
// removed.
func (sys *System) AddInvariant(inv formula.Expr) error {
	sys.invariants = append(sys.invariants, inv)
	for _, s := range sys.states {
		if sys.invalid[s] {
			continue
		}
		ok, err := sys.Satisfies(s, inv)
		if err != nil {
			return err
		}
		if !ok {
			sys.invalid[s] = true
		}
	}
	sys.filterEdges(func(e Edge) bool {
		return !sys.invalid[e.Source] && !sys.invalid[e.Target]
	})
	return sys.recomputeInitial()
}

// Valid reports whether s satisfies every invariant.
func (sys *System) Valid(s State) bool {
	return !sys.invalid[s]
}

// ValidStates returns the states satisfying every invariant.
func (sys *System) ValidStates() []State {
	var out []State
	for _, s := range sys.states {
		if !sys.invalid[s] {
			out = append(out, s)
		}
	}
	return out
}

// Forbid registers that action cannot be executed in states satisfying
// cond (nil: in any state). Existing matching edges are removed.
func (sys *System) Forbid(action string, cond formula.Expr) error {
	sys.forbidden = append(sys.forbidden, forbidden{action: action, cond: cond})
	var evalErr error
	sys.filterEdges(func(e Edge) bool {
		if e.Action != action || evalErr != nil {
			return true
		}
		hit, err := sys.Satisfies(e.Source, cond)
		if err != nil {
			evalErr = err
			return true
		}
		return !hit
	})
	return evalErr
}

// Allowed reports whether action may be executed in s.
func (sys *System) Allowed(s State, action string) (bool, error) {
	for _, f := range sys.forbidden {
		if f.action != action {
			continue
		}
		hit, err := sys.Satisfies(s, f.cond)
		if err != nil {
			return false, err
		}
		if hit {
			return false, nil
		}
	}
	return true, nil
}

// Observe records the outcome of an observation statement.
func (sys *System) Observe(text string, holds bool) {
	sys.observations = append(sys.observations, ir.Observation{Text: text, Holds: holds})
}

// Observations returns recorded observations in order.
func (sys *System) Observations() []ir.Observation {
	return slices.Clone(sys.observations)
}

func (sys *System) satisfiesAll(s State, conds []formula.Expr) (bool, error) {
	for _, c := range conds {
		ok, err := sys.Satisfies(s, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// filterEdges keeps the edges for which keep returns true, preserving
// order, and rebuilds the indexes.
func (sys *System) filterEdges(keep func(Edge) bool) {
	kept := sys.edges[:0]
	for _, e := range sys.edges {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	sys.edges = kept
	sys.edgeAt = make(map[edgeKey]int, len(kept))
	sys.outgoing = make(map[State][]int)
	for i, e := range kept {
		sys.edgeAt[edgeKey{e.Source, e.Action, e.Target}] = i
		sys.outgoing[e.Source] = append(sys.outgoing[e.Source], i)
	}
}
