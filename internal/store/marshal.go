package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/actiongraph/internal/ir"
)

// marshalModel converts a model to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization, so equal
// models store byte-identical snapshots.
func marshalModel(m ir.Model) (string, error) {
	states := make([]any, len(m.States))
	for i, st := range m.States {
		values := make(map[string]any, len(st.Values))
		for k, v := range st.Values {
			values[k] = v
		}
		states[i] = map[string]any{
			"id":     st.ID,
			"label":  st.Label,
			"values": values,
			"valid":  st.Valid,
		}
	}

	edges := make([]any, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = map[string]any{
			"source":   e.Source,
			"action":   e.Action,
			"target":   e.Target,
			"duration": e.Duration,
			"label":    e.Label,
		}
	}

	observations := make([]any, len(m.Observations))
	for i, o := range m.Observations {
		observations[i] = map[string]any{"text": o.Text, "holds": o.Holds}
	}

	obj := map[string]any{
		"fluents":      stringsOrEmpty(m.Fluents),
		"states":       states,
		"edges":        edges,
		"initial":      stringsOrEmpty(m.Initial),
		"observations": observations,
		"statements":   stringsOrEmpty(m.Statements),
		"hash":         m.Hash,
	}

	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}
	return string(data), nil
}

// unmarshalModel parses a stored snapshot. Canonical JSON is plain JSON,
// so the struct tags on ir.Model read it back.
func unmarshalModel(data string) (ir.Model, error) {
	var m ir.Model
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return ir.Model{}, fmt.Errorf("unmarshal model: %w", err)
	}
	return m, nil
}

// Model decodes the snapshot of r.
func (r ModelRecord) Model() (ir.Model, error) {
	return unmarshalModel(r.Snapshot)
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
