package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/actiongraph/internal/formula"
)

// State is a total assignment over a System's fluent universe, encoded as
// a bitset (bit j set iff fluent j is true). A State is only meaningful
// together with the System that produced it.
type State uint64

// value reports the truth value of fluent index j in s.
func (s State) value(j int) bool {
	return s&(1<<uint(j)) != 0
}

// with returns s with fluent index j set to v.
func (s State) with(j int, v bool) State {
	if v {
		return s | 1<<uint(j)
	}
	return s &^ (1 << uint(j))
}

// env adapts a State to formula.Env for one System.
type env struct {
	sys   *System
	state State
}

// Lookup implements formula.Env.
func (e env) Lookup(name string) (bool, bool) {
	j, ok := e.sys.index[name]
	if !ok {
		return false, false
	}
	return e.state.value(j), true
}

// Env returns the evaluation environment for s.
func (sys *System) Env(s State) formula.Env {
	return env{sys: sys, state: s}
}

// Satisfies evaluates e in state s.
func (sys *System) Satisfies(s State, e formula.Expr) (bool, error) {
	return formula.Evaluate(e, sys.Env(s))
}

// Value returns the value of the named fluent in s.
func (sys *System) Value(s State, fluent string) (bool, bool) {
	return sys.Env(s).Lookup(fluent)
}

// Assignment returns s as a name -> value map.
func (sys *System) Assignment(s State) map[string]bool {
	out := make(map[string]bool, len(sys.fluents))
	for j, name := range sys.fluents {
		out[name] = s.value(j)
	}
	return out
}

// Overlay returns s with each literal's fluent forced to the literal's
// value. Fluents not named keep their value from s.
func (sys *System) Overlay(s State, lits []formula.Literal) (State, error) {
	out := s
	for _, l := range lits {
		j, ok := sys.index[l.Name]
		if !ok {
			return s, fmt.Errorf("overlay: fluent %q is not in the universe", l.Name)
		}
		out = out.with(j, l.Value)
	}
	return out, nil
}

// Label renders s as its fluent names in universe order, one per line,
// with false ones prefixed by "~". The empty universe labels as "true".
func (sys *System) Label(s State) string {
	if len(sys.fluents) == 0 {
		return "true"
	}
	parts := make([]string, len(sys.fluents))
	for j, name := range sys.fluents {
		if s.value(j) {
			parts[j] = name
		} else {
			parts[j] = "~" + name
		}
	}
	return strings.Join(parts, "\n")
}

// ID returns the stable identifier of s: "s" plus its enumeration index.
func (sys *System) ID(s State) string {
	return fmt.Sprintf("s%d", sys.ordinal(s))
}

// ordinal is the position of s in enumeration order.
func (sys *System) ordinal(s State) int {
	n := len(sys.fluents)
	k := 0
	for j := 0; j < n; j++ {
		if !s.value(j) {
			k |= 1 << uint(n-1-j)
		}
	}
	return k
}

// stateAt is the inverse of ordinal.
func (sys *System) stateAt(k int) State {
	n := len(sys.fluents)
	var s State
	for j := 0; j < n; j++ {
		if (k>>uint(n-1-j))&1 == 0 {
			s = s.with(j, true)
		}
	}
	return s
}
