package compiler

import (
	"fmt"

	"github.com/roach88/actiongraph/internal/formula"
)

// Validation diagnostic codes (E100-E199)
const (
	// Statement-level diagnostics (E100-E109)
	ErrDuplicateStatement = "E101" // same statement entered twice
	ErrContradictoryLaw   = "E102" // effect clause can never hold
	ErrEmptyEffect        = "E103" // every effect clause is contradictory

	// Cross-statement diagnostics (E110-E119)
	ErrUnknownLastsAction      = "E110" // duration for an action no law mentions
	ErrUnknownImpossibleAction = "E111" // impossible for an action no law mentions
	ErrUnknownObservedAction   = "E112" // observation runs an action no law mentions
	ErrUnsatisfiableInitial    = "E113" // initial conditions have no model
	ErrUnsatisfiableInvariant  = "E114" // invariant has no model
)

// ValidationError is a non-fatal diagnostic about a statement set.
// Line is the 1-based position of the statement in the input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a parsed statement set for likely mistakes.
// Returns all diagnostics found (does not fail-fast).
func Validate(stmts []Statement) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]int)
	actions := make(map[string]bool)
	var initial []formula.Expr
	firstInitial := 0

	for i, st := range stmts {
		line := i + 1

		canon := Describe(st)
		if prev, dup := seen[canon]; dup {
			errs = append(errs, ValidationError{
				Field:   st.Kind().Keyword(),
				Message: fmt.Sprintf("duplicate of line %d: %q", prev, st.Text()),
				Code:    ErrDuplicateStatement,
				Line:    line,
			})
		} else {
			seen[canon] = line
		}

		switch s := st.(type) {
		case Causes:
			actions[s.Action] = true
			errs = append(errs, validateEffect(s.Kind(), s.Effect, line, false)...)
		case Releases:
			actions[s.Action] = true
			errs = append(errs, validateEffect(s.Kind(), s.Effect, line, true)...)
		case Initially:
			cond := s.Formula
			if s.Negated {
				cond = formula.Not{X: cond}
			}
			initial = append(initial, cond)
			if firstInitial == 0 {
				firstInitial = line
			}
		case Always:
			if !satisfiable(s.Formula) {
				errs = append(errs, ValidationError{
					Field:   "always",
					Message: fmt.Sprintf("invariant %q holds in no state", formula.Format(s.Formula)),
					Code:    ErrUnsatisfiableInvariant,
					Line:    line,
				})
			}
		}
	}

	if len(initial) > 0 && !satisfiable(formula.And{Terms: initial}) {
		errs = append(errs, ValidationError{
			Field:   "initially",
			Message: "initial conditions contradict each other; no state can be initial",
			Code:    ErrUnsatisfiableInitial,
			Line:    firstInitial,
		})
	}

	for i, st := range stmts {
		line := i + 1
		switch s := st.(type) {
		case Lasts:
			if !actions[s.Action] {
				errs = append(errs, ValidationError{
					Field:   "lasts",
					Message: fmt.Sprintf("action %q has a duration but no causes or releases law", s.Action),
					Code:    ErrUnknownLastsAction,
					Line:    line,
				})
			}
		case Impossible:
			if !actions[s.Action] {
				errs = append(errs, ValidationError{
					Field:   "impossible",
					Message: fmt.Sprintf("action %q is forbidden but no law mentions it", s.Action),
					Code:    ErrUnknownImpossibleAction,
					Line:    line,
				})
			}
		case After:
			for _, a := range s.Actions {
				if !actions[a] {
					errs = append(errs, ValidationError{
						Field:   "after",
						Message: fmt.Sprintf("action %q has no causes or releases law", a),
						Code:    ErrUnknownObservedAction,
						Line:    line,
					})
				}
			}
		}
	}

	return errs
}

// validateEffect reports effect clauses that can never hold. A release
// of a contradictory clause still frees its fluents, so releases only
// report clauses containing the constant false.
func validateEffect(kind Kind, effect formula.Expr, line int, release bool) []ValidationError {
	var errs []ValidationError
	clauses := formula.ClausesOf(effect)
	dead := 0
	for i, c := range clauses {
		bad := !c.Satisfiable()
		if release {
			bad = c.False
		}
		if !bad {
			continue
		}
		dead++
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("%s.effect[%d]", kind.Keyword(), i),
			Message: fmt.Sprintf("effect clause %d of %q is contradictory and is skipped", i+1, formula.Format(effect)),
			Code:    ErrContradictoryLaw,
			Line:    line,
		})
	}
	if dead > 0 && dead == len(clauses) {
		errs = append(errs, ValidationError{
			Field:   kind.Keyword() + ".effect",
			Message: "no effect clause is satisfiable; the law adds no edges",
			Code:    ErrEmptyEffect,
			Line:    line,
		})
	}
	return errs
}

// satisfiable reports whether some assignment makes e true.
func satisfiable(e formula.Expr) bool {
	if e == nil {
		return true
	}
	for _, c := range formula.ClausesOf(e) {
		if c.Satisfiable() {
			return true
		}
	}
	return false
}
