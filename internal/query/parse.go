package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/actiongraph/internal/formula"
	"github.com/roach88/actiongraph/internal/ir"
)

var (
	afterWord  = regexp.MustCompile(`(?i)(?:^|\s)after(?:\s|$)`)
	withinWord = regexp.MustCompile(`(?i)(?:^|\s)within(?:\s|$)`)
)

var temporalOps = map[string]Op{
	"EX":        OpEX,
	"AX":        OpAX,
	"EF":        OpEF,
	"AF":        OpAF,
	"EG":        OpEG,
	"AG":        OpAG,
	"reachable": OpEF,
	"invariant": OpAG,
}

// Parse parses query text.
func Parse(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ir.NewFormatError("query", "body", text, "empty query")
	}

	mode := Necessarily
	head, rest := firstWord(text)
	switch strings.ToLower(head) {
	case "necessarily":
		text = rest
	case "possibly":
		mode = Possibly
		text = rest
	}
	if text == "" {
		return nil, ir.NewFormatError("query", "body", text, "missing query body after %q", head)
	}

	head, rest = firstWord(text)
	if strings.EqualFold(head, "initially") {
		f, err := parseFormula(rest, text)
		if err != nil {
			return nil, err
		}
		return Initially{Mode: mode, Formula: f}, nil
	}
	op, ok := temporalOps[head]
	if !ok {
		op, ok = temporalOps[strings.ToLower(head)]
	}
	if ok {
		f, err := parseFormula(rest, text)
		if err != nil {
			return nil, err
		}
		return Temporal{Mode: mode, Op: op, Formula: f}, nil
	}

	if loc := afterWord.FindStringIndex(text); loc != nil {
		return parseAfter(mode, text, loc)
	}

	if body, ok := cutSuffixWord(text, "executable"); ok {
		actions, err := ParseActions(body)
		if err != nil {
			return nil, err
		}
		return Executable{Mode: mode, Actions: actions}, nil
	}

	return nil, ir.NewFormatError("query", "body", text,
		"expected \"F after A1,...,An\", \"initially F\", \"A1,...,An executable\" or a temporal operator")
}

func parseAfter(mode Mode, text string, loc []int) (Query, error) {
	lhs := strings.TrimSpace(text[:loc[0]])
	rhs := strings.TrimSpace(text[loc[1]:])
	if lhs == "" {
		return nil, ir.NewFormatError("query", "formula", text, "missing formula before \"after\"")
	}
	f, err := formula.Parse(lhs)
	if err != nil {
		return nil, err
	}

	q := After{Mode: mode, Formula: f}
	if w := withinWord.FindStringIndex(rhs); w != nil {
		limitText := strings.TrimSpace(rhs[w[1]:])
		limit, err := strconv.Atoi(limitText)
		if err != nil || limit < 0 {
			return nil, ir.NewFormatError("query", "within", text, "duration bound %q is not a non-negative integer", limitText)
		}
		q.Within = &limit
		rhs = strings.TrimSpace(rhs[:w[0]])
	}

	q.Actions, err = ParseActions(rhs)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ParseActions parses a non-empty comma-separated list of action names.
func ParseActions(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ir.NewFormatError("query", "actions", text, "missing action list")
	}
	parts := strings.Split(text, ",")
	actions := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if !formula.IsName(name) {
			return nil, ir.NewFormatError("query", "actions", text, "invalid action name %q", name)
		}
		actions = append(actions, name)
	}
	return actions, nil
}

func parseFormula(text, whole string) (formula.Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ir.NewFormatError("query", "formula", whole, "missing formula")
	}
	return formula.Parse(text)
}

// firstWord splits off the first whitespace-delimited word.
func firstWord(text string) (string, string) {
	text = strings.TrimSpace(text)
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// cutSuffixWord removes a trailing whole word, case-insensitively.
func cutSuffixWord(text, word string) (string, bool) {
	if len(text) < len(word) || !strings.EqualFold(text[len(text)-len(word):], word) {
		return "", false
	}
	rest := text[:len(text)-len(word)]
	if rest != "" && !strings.HasSuffix(rest, " ") && !strings.HasSuffix(rest, "\t") && !strings.HasSuffix(rest, ",") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
