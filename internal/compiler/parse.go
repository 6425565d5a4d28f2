package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/actiongraph/internal/formula"
	"github.com/roach88/actiongraph/internal/ir"
	"github.com/roach88/actiongraph/internal/query"
)

// keywordPatterns match each keyword as a whole word, case-insensitively.
var keywordPatterns = func() map[Kind]*regexp.Regexp {
	m := make(map[Kind]*regexp.Regexp, len(Kinds))
	for _, k := range Kinds {
		m[k] = wordPattern(k.Keyword())
	}
	return m
}()

var ifPattern = wordPattern("if")

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|\s)` + regexp.QuoteMeta(word) + `(?:\s|$)`)
}

// Normalize trims and NFC-normalizes statement text.
func Normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Classify returns the kind of the first keyword, in declaration order,
// that appears in text as a whole word.
func Classify(text string) (Kind, bool) {
	for _, k := range Kinds {
		if keywordPatterns[k].MatchString(text) {
			return k, true
		}
	}
	return 0, false
}

// Parse classifies and parses one statement.
func Parse(text string) (Statement, error) {
	text = Normalize(text)
	if text == "" {
		return nil, ir.NewFormatError("statement", "keyword", text, "empty statement")
	}

	kind, ok := Classify(text)
	if !ok {
		return nil, ir.NewFormatError("statement", "keyword", text,
			"no recognized keyword (want one of always, impossible, initially, causes, releases, after, lasts)")
	}

	loc := keywordPatterns[kind].FindStringIndex(text)
	lhs := strings.TrimSpace(text[:loc[0]])
	rhs := strings.TrimSpace(text[loc[1]:])

	switch kind {
	case KindAlways:
		return parseAlways(text, lhs, rhs)
	case KindImpossible:
		return parseImpossible(text, lhs, rhs)
	case KindInitially:
		return parseInitially(text, lhs, rhs)
	case KindCauses:
		action, effect, cond, err := parseLaw(kind, text, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Causes{Raw: text, Action: action, Effect: effect, Cond: cond}, nil
	case KindReleases:
		action, effect, cond, err := parseLaw(kind, text, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Releases{Raw: text, Action: action, Effect: effect, Cond: cond}, nil
	case KindAfter:
		return parseAfter(text, lhs, rhs)
	case KindLasts:
		return parseLasts(text, lhs, rhs)
	}
	return nil, ir.NewInternalError("unhandled statement kind %v", kind)
}

// MustParse is like Parse but panics on error.
// Use only in tests or for statements known to be valid.
func MustParse(text string) Statement {
	st, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return st
}

func parseAlways(text, lhs, rhs string) (Statement, error) {
	if lhs != "" {
		return nil, ir.NewFormatError("always", "keyword", text, "unexpected %q before \"always\"", lhs)
	}
	f, err := requireFormula("always", "formula", text, rhs)
	if err != nil {
		return nil, err
	}
	return Always{Raw: text, Formula: f}, nil
}

func parseImpossible(text, lhs, rhs string) (Statement, error) {
	if lhs != "" {
		return nil, ir.NewFormatError("impossible", "keyword", text, "unexpected %q before \"impossible\"", lhs)
	}
	actionText, condText, hasIf := splitIf(rhs)
	if !hasIf && strings.ContainsAny(actionText, " \t") {
		return nil, ir.NewFormatError("impossible", "if", text, "expected \"if\" before condition in %q", actionText)
	}
	action, err := requireAction("impossible", text, actionText)
	if err != nil {
		return nil, err
	}
	st := Impossible{Raw: text, Action: action}
	if hasIf {
		st.Cond, err = requireFormula("impossible", "if", text, condText)
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}

func parseInitially(text, lhs, rhs string) (Statement, error) {
	switch {
	case lhs == "" && rhs == "":
		return nil, ir.NewFormatError("initially", "formula", text, "missing formula")
	case lhs == "":
		f, err := formula.Parse(rhs)
		if err != nil {
			return nil, err
		}
		return Initially{Raw: text, Formula: f}, nil
	case rhs == "":
		f, err := formula.Parse(lhs)
		if err != nil {
			return nil, err
		}
		return Initially{Raw: text, Formula: f}, nil
	}

	f, err := formula.Parse(lhs)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(rhs) {
	case "true":
		return Initially{Raw: text, Formula: f}, nil
	case "false":
		return Initially{Raw: text, Formula: f, Negated: true}, nil
	}
	return nil, ir.NewFormatError("initially", "value", text,
		"expected \"true\" or \"false\" after \"initially\", got %q", rhs)
}

// parseLaw parses "A causes|releases E [if C]".
func parseLaw(kind Kind, text, lhs, rhs string) (string, formula.Expr, formula.Expr, error) {
	action, err := requireAction(kind.Keyword(), text, lhs)
	if err != nil {
		return "", nil, nil, err
	}
	effectText, condText, hasIf := splitIf(rhs)
	effect, err := requireFormula(kind.Keyword(), "effect", text, effectText)
	if err != nil {
		return "", nil, nil, err
	}
	var cond formula.Expr
	if hasIf {
		cond, err = requireFormula(kind.Keyword(), "if", text, condText)
		if err != nil {
			return "", nil, nil, err
		}
	}
	return action, effect, cond, nil
}

func parseAfter(text, lhs, rhs string) (Statement, error) {
	f, err := requireFormula("after", "formula", text, lhs)
	if err != nil {
		return nil, err
	}
	actions, err := query.ParseActions(rhs)
	if err != nil {
		return nil, ir.NewFormatError("after", "actions", text, "%v", err)
	}
	return After{Raw: text, Formula: f, Actions: actions}, nil
}

func parseLasts(text, lhs, rhs string) (Statement, error) {
	action, err := requireAction("lasts", text, lhs)
	if err != nil {
		return nil, err
	}
	if rhs == "" {
		return nil, ir.NewFormatError("lasts", "duration", text, "missing duration")
	}
	n, err := strconv.Atoi(rhs)
	if err != nil {
		return nil, ir.NewFormatError("lasts", "duration", text, "duration %q is not an integer", rhs)
	}
	if n < 0 {
		return nil, ir.NewFormatError("lasts", "duration", text, "duration %d is negative", n)
	}
	return Lasts{Raw: text, Action: action, Duration: n}, nil
}

// splitIf splits "X if Y" at the first whole-word "if".
func splitIf(text string) (before, after string, ok bool) {
	loc := ifPattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), "", false
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:]), true
}

func requireAction(kind, text, action string) (string, error) {
	if action == "" {
		return "", ir.NewFormatError(kind, "action", text, "missing action name")
	}
	if !formula.IsName(action) {
		return "", ir.NewFormatError(kind, "action", text, "invalid action name %q", action)
	}
	return action, nil
}

func requireFormula(kind, field, text, src string) (formula.Expr, error) {
	if src == "" {
		return nil, ir.NewFormatError(kind, field, text, "missing formula")
	}
	return formula.Parse(src)
}
