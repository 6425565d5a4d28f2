package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/actiongraph/internal/ir"
)

// DOT writes m as a Graphviz digraph. Initial states get an arrow from an
// unlabelled start point; invalid states are drawn dashed and grey.
func DOT(w io.Writer, m ir.Model) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph actiongraph {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box, style=rounded];")

	if len(m.Initial) > 0 {
		fmt.Fprintln(bw, "  __start [shape=point, label=\"\"];")
	}

	for _, s := range m.States {
		attrs := []string{"label=" + quote(s.Label)}
		if !s.Valid {
			attrs = append(attrs, `style="rounded,dashed"`, "color=grey", "fontcolor=grey")
		}
		fmt.Fprintf(bw, "  %s [%s];\n", s.ID, strings.Join(attrs, ", "))
	}

	for _, id := range m.Initial {
		fmt.Fprintf(bw, "  __start -> %s;\n", id)
	}
	for _, e := range m.Edges {
		fmt.Fprintf(bw, "  %s -> %s [label=%s];\n", e.Source, e.Target, quote(e.Label))
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// quote renders s as a DOT string literal. Newlines become the \n escape
// so multi-fluent labels stack.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
