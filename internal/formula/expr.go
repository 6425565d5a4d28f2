package formula

import "strings"

// Expr is a parsed formula node.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Lit references a fluent by name.
type Lit struct {
	Name string
}

// Const is the literal true or false.
type Const struct {
	Value bool
}

// Not negates its operand.
type Not struct {
	X Expr
}

// And is true iff every term is true.
type And struct {
	Terms []Expr
}

// Or is true iff any term is true.
type Or struct {
	Terms []Expr
}

func (Lit) exprNode()   {}
func (Const) exprNode() {}
func (Not) exprNode()   {}
func (And) exprNode()   {}
func (Or) exprNode()    {}

// Format renders e back to formula text. Format(nil) is "true".
func Format(e Expr) string {
	switch x := e.(type) {
	case nil:
		return "true"
	case Lit:
		return x.Name
	case Const:
		if x.Value {
			return "true"
		}
		return "false"
	case Not:
		return "~" + Format(x.X)
	case And:
		return joinTerms(x.Terms, " and ")
	case Or:
		return joinTerms(x.Terms, " or ")
	}
	return ""
}

func joinTerms(terms []Expr, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = Format(t)
	}
	return strings.Join(parts, sep)
}

// reserved words that can never be fluent names.
var reserved = map[string]bool{
	"and":   true,
	"or":    true,
	"not":   true,
	"true":  true,
	"false": true,
}

// IsName reports whether s is a valid fluent or action name:
// [A-Za-z_][A-Za-z0-9_]* and not a reserved word.
func IsName(s string) bool {
	if s == "" || reserved[strings.ToLower(s)] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
