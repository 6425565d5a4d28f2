package harness

import (
	"github.com/roach88/actiongraph/internal/compiler"
	"github.com/roach88/actiongraph/internal/ir"
)

// Rejection records a statement the aggregator refused.
type Rejection struct {
	Statement string `json:"statement"`
	Error     string `json:"error"`
}

// Answer records one evaluated query.
type Answer struct {
	Query string `json:"query"`
	Holds bool   `json:"holds"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Model is the final model snapshot.
	Model ir.Model `json:"model"`

	// Rejected lists statements the aggregator refused, in input order.
	Rejected []Rejection `json:"rejected,omitempty"`

	// Answers lists query results in scenario order.
	Answers []Answer `json:"answers,omitempty"`

	// Diagnostics are the validator findings for the accepted statements.
	Diagnostics []compiler.ValidationError `json:"diagnostics,omitempty"`

	// Errors holds failed expectation messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// rejected reports whether text was refused.
func (r *Result) rejected(text string) bool {
	for _, rej := range r.Rejected {
		if rej.Statement == text {
			return true
		}
	}
	return false
}
