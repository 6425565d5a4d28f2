package graph

import (
	"fmt"

	"github.com/roach88/actiongraph/internal/ir"
)

// EdgeLabel renders an edge as its action and duration, e.g. "a (3)".
func EdgeLabel(e Edge) string {
	return fmt.Sprintf("%s (%d)", e.Action, e.Duration)
}

// Model snapshots sys for renderers and persistence. statements is the
// presentation history to attach; the content hash covers the system only.
func (sys *System) Model(statements []string) (ir.Model, error) {
	m := ir.Model{
		Fluents:      sys.Fluents(),
		States:       make([]ir.StateRecord, len(sys.states)),
		Edges:        make([]ir.EdgeRecord, len(sys.edges)),
		Initial:      make([]string, len(sys.initial)),
		Observations: sys.Observations(),
		Statements:   statements,
	}
	for i, s := range sys.states {
		m.States[i] = ir.StateRecord{
			ID:     sys.ID(s),
			Label:  sys.Label(s),
			Values: sys.Assignment(s),
			Valid:  sys.Valid(s),
		}
	}
	for i, e := range sys.edges {
		m.Edges[i] = ir.EdgeRecord{
			Source:   sys.ID(e.Source),
			Action:   e.Action,
			Target:   sys.ID(e.Target),
			Duration: e.Duration,
			Label:    EdgeLabel(e),
		}
	}
	for i, s := range sys.initial {
		m.Initial[i] = sys.ID(s)
	}

	hash, err := ir.ModelHash(m)
	if err != nil {
		return ir.Model{}, err
	}
	m.Hash = hash
	return m, nil
}
