package ir

// Model is the read-only snapshot of a compiled transition system handed
// to renderers, the CLI and the store.
//
// States are listed in enumeration order; Edges in insertion order.
// Initial holds the IDs of the initial-state candidates.
type Model struct {
	Fluents      []string      `json:"fluents"`
	States       []StateRecord `json:"states"`
	Edges        []EdgeRecord  `json:"edges"`
	Initial      []string      `json:"initial"`
	Observations []Observation `json:"observations,omitempty"`
	Statements   []string      `json:"statements,omitempty"`
	Hash         string        `json:"hash,omitempty"`
}

// StateRecord is one enumerated state.
type StateRecord struct {
	ID     string          `json:"id"`     // e.g. "s2"
	Label  string          `json:"label"`  // e.g. "p\n~q"
	Values map[string]bool `json:"values"` // fluent -> truth value
	Valid  bool            `json:"valid"`  // false if it violates an invariant
}

// EdgeRecord is one deduplicated transition.
type EdgeRecord struct {
	Source   string `json:"source"`
	Action   string `json:"action"`
	Target   string `json:"target"`
	Duration int    `json:"duration"`
	Label    string `json:"label"`
}

// Observation is the recorded outcome of an "F after A1,...,An" statement.
type Observation struct {
	Text  string `json:"text"`
	Holds bool   `json:"holds"`
}
