package formula

import (
	"strings"

	"github.com/roach88/actiongraph/internal/ir"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokNot
	tokAnd
	tokOr
	tokTrue
	tokFalse
)

type token struct {
	kind tokenKind
	text string
}

// Parse parses formula text into an Expr.
// Empty or all-whitespace text returns (nil, nil): the vacuous formula.
func Parse(text string) (Expr, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}

	p := &parser{input: text, toks: toks}
	e, err := p.formula()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errorf("unexpected %q after complete formula", p.toks[p.pos].text)
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for formulas known to be valid.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '~' || c == '!':
			toks = append(toks, token{tokNot, string(c)})
			i++
		case c == '&':
			n := 1
			if i+1 < len(text) && text[i+1] == '&' {
				n = 2
			}
			toks = append(toks, token{tokAnd, text[i : i+n]})
			i += n
		case c == '|':
			n := 1
			if i+1 < len(text) && text[i+1] == '|' {
				n = 2
			}
			toks = append(toks, token{tokOr, text[i : i+n]})
			i += n
		case isNameStart(c):
			j := i + 1
			for j < len(text) && isNamePart(text[j]) {
				j++
			}
			word := text[i:j]
			toks = append(toks, wordToken(word))
			i = j
		default:
			return nil, ir.NewFormatError("formula", "token", text, "unexpected character %q at offset %d", c, i)
		}
	}
	return toks, nil
}

func wordToken(word string) token {
	switch strings.ToLower(word) {
	case "and":
		return token{tokAnd, word}
	case "or":
		return token{tokOr, word}
	case "not":
		return token{tokNot, word}
	case "true":
		return token{tokTrue, word}
	case "false":
		return token{tokFalse, word}
	}
	return token{tokName, word}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return ir.NewFormatError("formula", "syntax", p.input, format, args...)
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// formula := clause ("or" clause)*
func (p *parser) formula() (Expr, error) {
	first, err := p.clause()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		next, err := p.clause()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Or{Terms: terms}, nil
}

// clause := literal ("and" literal)*
func (p *parser) clause() (Expr, error) {
	first, err := p.literal()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokAnd {
			break
		}
		p.pos++
		next, err := p.literal()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return And{Terms: terms}, nil
}

// literal := ("~" | "!" | "not")? atom
func (p *parser) literal() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errorf("expected literal, found end of formula")
	}
	if t.kind == tokNot {
		p.pos++
		atom, err := p.atom()
		if err != nil {
			return nil, err
		}
		return Not{X: atom}, nil
	}
	return p.atom()
}

func (p *parser) atom() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errorf("expected fluent name, found end of formula")
	}
	switch t.kind {
	case tokName:
		p.pos++
		return Lit{Name: t.text}, nil
	case tokTrue:
		p.pos++
		return Const{Value: true}, nil
	case tokFalse:
		p.pos++
		return Const{Value: false}, nil
	}
	return nil, p.errorf("expected fluent name, found %q", t.text)
}
