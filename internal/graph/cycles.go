package graph

import (
	"slices"
	"strings"
)

// Cycle is a strongly connected set of states the system can loop in.
// Path walks the cycle from its first state back to it.
type Cycle struct {
	States []State
	Path   []State
}

// String renders the path with state IDs, e.g. "s0 -> s1 -> s0".
func (c Cycle) String(sys *System) string {
	ids := make([]string, len(c.Path))
	for i, s := range c.Path {
		ids[i] = sys.ID(s)
	}
	return strings.Join(ids, " -> ")
}

// Cycles returns every strongly connected component that contains a
// cycle: components with more than one state, or a single state with a
// self-loop. Components are ordered by their first state.
func (sys *System) Cycles() []Cycle {
	sccs := sys.components()

	var out []Cycle
	for _, scc := range sccs {
		if len(scc) == 1 && !sys.hasSelfLoop(scc[0]) {
			continue
		}
		slices.SortFunc(scc, func(a, b State) int { return sys.ordinal(a) - sys.ordinal(b) })
		out = append(out, Cycle{States: scc, Path: sys.cyclePath(scc)})
	}
	slices.SortFunc(out, func(a, b Cycle) int {
		return sys.ordinal(a.States[0]) - sys.ordinal(b.States[0])
	})
	return out
}

func (sys *System) hasSelfLoop(s State) bool {
	for _, e := range sys.Outgoing(s) {
		if e.SelfLoop() {
			return true
		}
	}
	return false
}

// successors returns the distinct targets of s in edge order.
func (sys *System) successors(s State) []State {
	var out []State
	for _, e := range sys.Outgoing(s) {
		if !slices.Contains(out, e.Target) {
			out = append(out, e.Target)
		}
	}
	return out
}

// components finds strongly connected components of the valid states
// using Tarjan's algorithm. Nodes are visited in enumeration order so the
// result is deterministic.
func (sys *System) components() [][]State {
	var (
		index   = 0
		stack   []State
		indices = make(map[State]int)
		lowlink = make(map[State]int)
		onStack = make(map[State]bool)
		sccs    [][]State
	)

	var strongConnect func(State)
	strongConnect = func(v State) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range sys.successors(v) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []State
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, s := range sys.ValidStates() {
		if _, visited := indices[s]; !visited {
			strongConnect(s)
		}
	}
	return sccs
}

// cyclePath follows edges inside scc from its first state until it
// returns there or runs out of unvisited members.
func (sys *System) cyclePath(scc []State) []State {
	member := make(map[State]bool, len(scc))
	for _, s := range scc {
		member[s] = true
	}

	start := scc[0]
	current := start
	path := []State{current}
	visited := make(map[State]bool)
	for {
		visited[current] = true
		var next State
		found := false
		for _, w := range sys.successors(current) {
			if member[w] && (!visited[w] || w == start) {
				next, found = w, true
				break
			}
		}
		if !found {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
