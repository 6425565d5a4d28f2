package query

import (
	"github.com/roach88/actiongraph/internal/formula"
)

// Mode quantifies a query over the initial-state candidates.
type Mode int

const (
	// Necessarily requires every candidate to satisfy the body.
	Necessarily Mode = iota
	// Possibly requires some candidate to satisfy the body.
	Possibly
)

func (m Mode) String() string {
	if m == Possibly {
		return "possibly"
	}
	return "necessarily"
}

// Op is a CTL temporal operator.
type Op string

const (
	OpEX Op = "EX"
	OpAX Op = "AX"
	OpEF Op = "EF"
	OpAF Op = "AF"
	OpEG Op = "EG"
	OpAG Op = "AG"
)

// Query is a parsed query.
type Query interface {
	queryNode() // Marker method - seals interface to this package
	Quantifier() Mode
}

// After asks whether Formula holds after executing Actions in order.
// When Within is non-nil, the total duration along the branch must not
// exceed *Within.
type After struct {
	Mode    Mode
	Formula formula.Expr
	Actions []string
	Within  *int
}

// Initially asks whether Formula holds in the initial state.
type Initially struct {
	Mode    Mode
	Formula formula.Expr
}

// Executable asks whether Actions can be executed in order.
type Executable struct {
	Mode    Mode
	Actions []string
}

// Temporal asks a CTL question about Formula.
type Temporal struct {
	Mode    Mode
	Op      Op
	Formula formula.Expr
}

func (After) queryNode()      {}
func (Initially) queryNode()  {}
func (Executable) queryNode() {}
func (Temporal) queryNode()   {}

func (q After) Quantifier() Mode      { return q.Mode }
func (q Initially) Quantifier() Mode  { return q.Mode }
func (q Executable) Quantifier() Mode { return q.Mode }
func (q Temporal) Quantifier() Mode   { return q.Mode }
