package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/actiongraph/internal/ir"
)

// Text writes a plain listing of m: fluents, states, initial candidates,
// edges, observations and any cycles the caller found.
func Text(w io.Writer, m ir.Model, cycles []string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "fluents: %s\n", listOrNone(m.Fluents))

	initial := make(map[string]bool, len(m.Initial))
	for _, id := range m.Initial {
		initial[id] = true
	}

	fmt.Fprintf(bw, "states (%d):\n", len(m.States))
	for _, s := range m.States {
		marks := ""
		if initial[s.ID] {
			marks += " [initial]"
		}
		if !s.Valid {
			marks += " [invalid]"
		}
		fmt.Fprintf(bw, "  %s  %s%s\n", s.ID, flatLabel(s.Label), marks)
	}

	fmt.Fprintf(bw, "initial: %s\n", listOrNone(m.Initial))

	fmt.Fprintf(bw, "edges (%d):\n", len(m.Edges))
	for _, e := range m.Edges {
		fmt.Fprintf(bw, "  %s --%s--> %s (%d)\n", e.Source, e.Action, e.Target, e.Duration)
	}

	if len(m.Observations) > 0 {
		fmt.Fprintln(bw, "observations:")
		for _, o := range m.Observations {
			fmt.Fprintf(bw, "  %s: %s\n", o.Text, YesNo(o.Holds))
		}
	}

	if len(cycles) > 0 {
		fmt.Fprintln(bw, "cycles:")
		for _, c := range cycles {
			fmt.Fprintf(bw, "  %s\n", c)
		}
	}

	return bw.Flush()
}

// YesNo renders a query result as a fact.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func flatLabel(label string) string {
	return strings.ReplaceAll(label, "\n", " ")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
