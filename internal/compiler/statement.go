package compiler

import (
	"github.com/roach88/actiongraph/internal/formula"
)

// Kind identifies a statement category.
type Kind int

// Kinds in declaration order. The order is significant: it decides both
// classification (first keyword found wins) and processing order.
const (
	KindAlways Kind = iota
	KindImpossible
	KindInitially
	KindCauses
	KindReleases
	KindAfter
	KindLasts
)

// NumKinds is the number of statement kinds.
const NumKinds = int(KindLasts) + 1

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindAlways,
	KindImpossible,
	KindInitially,
	KindCauses,
	KindReleases,
	KindAfter,
	KindLasts,
}

// Keyword returns the statement keyword for k.
func (k Kind) Keyword() string {
	switch k {
	case KindAlways:
		return "always"
	case KindImpossible:
		return "impossible"
	case KindInitially:
		return "initially"
	case KindCauses:
		return "causes"
	case KindReleases:
		return "releases"
	case KindAfter:
		return "after"
	case KindLasts:
		return "lasts"
	}
	return "unknown"
}

func (k Kind) String() string {
	return k.Keyword()
}

// KindOf returns the kind for a keyword.
func KindOf(keyword string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Keyword() == keyword {
			return k, true
		}
	}
	return 0, false
}

// Statement is a parsed statement.
type Statement interface {
	statementNode() // Marker method - seals interface to this package

	// Kind returns the statement's category.
	Kind() Kind

	// Text returns the normalized source text.
	Text() string
}

// Always is "always F": F holds in every valid state.
type Always struct {
	Raw     string
	Formula formula.Expr
}

// Impossible is "impossible A [if C]": A cannot run where C holds.
type Impossible struct {
	Raw    string
	Action string
	Cond   formula.Expr // nil: everywhere
}

// Initially is "initially F" or "F initially [true|false]".
// Negated is set for the "false" form.
type Initially struct {
	Raw     string
	Formula formula.Expr
	Negated bool
}

// Causes is "A causes E [if C]".
type Causes struct {
	Raw    string
	Action string
	Effect formula.Expr
	Cond   formula.Expr // nil: unconditional
}

// Releases is "A releases E [if C]": the fluents of E become
// unconstrained when A runs.
type Releases struct {
	Raw    string
	Action string
	Effect formula.Expr
	Cond   formula.Expr
}

// After is "F after A1, ..., An": an observation that F holds after the
// action sequence runs from the initial state.
type After struct {
	Raw     string
	Formula formula.Expr
	Actions []string
}

// Lasts is "A lasts N".
type Lasts struct {
	Raw      string
	Action   string
	Duration int
}

func (Always) statementNode()     {}
func (Impossible) statementNode() {}
func (Initially) statementNode()  {}
func (Causes) statementNode()     {}
func (Releases) statementNode()   {}
func (After) statementNode()      {}
func (Lasts) statementNode()      {}

func (Always) Kind() Kind     { return KindAlways }
func (Impossible) Kind() Kind { return KindImpossible }
func (Initially) Kind() Kind  { return KindInitially }
func (Causes) Kind() Kind     { return KindCauses }
func (Releases) Kind() Kind   { return KindReleases }
func (After) Kind() Kind      { return KindAfter }
func (Lasts) Kind() Kind      { return KindLasts }

func (s Always) Text() string     { return s.Raw }
func (s Impossible) Text() string { return s.Raw }
func (s Initially) Text() string  { return s.Raw }
func (s Causes) Text() string     { return s.Raw }
func (s Releases) Text() string   { return s.Raw }
func (s After) Text() string      { return s.Raw }
func (s Lasts) Text() string      { return s.Raw }
