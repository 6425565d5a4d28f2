package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModel     = "actiongraph/model/v1"
	DomainStatement = "actiongraph/statement/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content hash of a model snapshot.
// Statements and the Hash field itself are excluded: two histories that
// compile to the same system hash equal.
func ModelHash(m Model) (string, error) {
	states := make([]any, len(m.States))
	for i, s := range m.States {
		values := make(map[string]any, len(s.Values))
		for k, v := range s.Values {
			values[k] = v
		}
		states[i] = map[string]any{
			"id":     s.ID,
			"valid":  s.Valid,
			"values": values,
		}
	}

	edges := make([]any, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = map[string]any{
			"source":   e.Source,
			"action":   e.Action,
			"target":   e.Target,
			"duration": e.Duration,
		}
	}

	observations := make([]any, len(m.Observations))
	for i, o := range m.Observations {
		observations[i] = map[string]any{"text": o.Text, "holds": o.Holds}
	}

	obj := map[string]any{
		"fluents":      nonNil(m.Fluents),
		"states":       states,
		"edges":        edges,
		"initial":      nonNil(m.Initial),
		"observations": observations,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// StatementID computes a content-addressed ID for a statement text at a
// given sequence number.
func StatementID(text string, seq int64) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"text": text,
		"seq":  seq,
	})
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when the model is known to be valid.
func MustModelHash(m Model) string {
	h, err := ModelHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
