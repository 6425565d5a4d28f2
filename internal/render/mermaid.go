package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/actiongraph/internal/ir"
)

// Mermaid writes m as a Mermaid stateDiagram-v2. Invalid states are
// omitted; they have no edges.
func Mermaid(w io.Writer, m ir.Model) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "stateDiagram-v2")

	for _, s := range m.States {
		if !s.Valid {
			continue
		}
		fmt.Fprintf(bw, "  %s : %s\n", s.ID, strings.ReplaceAll(s.Label, "\n", ", "))
	}
	fmt.Fprintln(bw)

	for _, id := range m.Initial {
		fmt.Fprintf(bw, "  [*] --> %s\n", id)
	}
	for _, e := range m.Edges {
		fmt.Fprintf(bw, "  %s --> %s : %s\n", e.Source, e.Target, e.Label)
	}

	return bw.Flush()
}
