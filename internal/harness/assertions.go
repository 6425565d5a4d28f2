package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/actiongraph/internal/ir"
)

// AssertionError is returned when an expectation fails.
// Diff, when set, is a go-cmp diff (-want +got).
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Diff     string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "  Diff (-want +got):\n%s", e.Diff)
		return buf.String()
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// FormatEdge renders an edge as "src --action--> dst (N)".
func FormatEdge(e ir.EdgeRecord) string {
	return fmt.Sprintf("%s --%s--> %s (%d)", e.Source, e.Action, e.Target, e.Duration)
}

// EvaluateAssertions checks result against the scenario's expectations.
// Returns a slice of error messages for failed checks.
func EvaluateAssertions(result *Result, scenario *Scenario) []string {
	var errs []error

	errs = append(errs, assertRejections(result, scenario.ExpectErrors)...)

	if exp := scenario.Expect; exp != nil {
		m := result.Model
		if exp.Fluents != nil {
			errs = append(errs, diffError("fluents", exp.Fluents, m.Fluents))
		}
		if exp.States != nil && *exp.States != len(m.States) {
			errs = append(errs, &AssertionError{
				Type:     "states",
				Expected: fmt.Sprintf("%d states", *exp.States),
				Actual:   fmt.Sprintf("%d states", len(m.States)),
			})
		}
		if exp.Valid != nil {
			errs = append(errs, diffError("valid", exp.Valid, validIDs(m)))
		}
		if exp.Initial != nil {
			errs = append(errs, diffError("initial", exp.Initial, m.Initial))
		}
		if exp.Edges != nil {
			errs = append(errs, diffError("edges", exp.Edges, edgeStrings(m)))
		}
		if exp.Observations != nil {
			errs = append(errs, assertObservations(exp.Observations, m.Observations)...)
		}
		if exp.Diagnostics != nil {
			errs = append(errs, assertDiagnostics(*exp.Diagnostics, result)...)
		}
	}

	for i, q := range scenario.Queries {
		if i >= len(result.Answers) {
			break
		}
		errs = append(errs, assertAnswer(q, result.Answers[i]))
	}

	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// assertRejections checks that exactly the expected statements were refused.
func assertRejections(result *Result, expected []string) []error {
	var errs []error
	for _, text := range expected {
		if !result.rejected(text) {
			errs = append(errs, &AssertionError{
				Type:     "expect_errors",
				Expected: fmt.Sprintf("statement %q rejected", text),
				Actual:   "accepted",
			})
		}
	}
	for _, rej := range result.Rejected {
		if !slices.Contains(expected, rej.Statement) {
			errs = append(errs, &AssertionError{
				Type:     "expect_errors",
				Expected: fmt.Sprintf("statement %q accepted", rej.Statement),
				Actual:   "rejected: " + rej.Error,
			})
		}
	}
	return errs
}

func assertObservations(expected map[string]bool, actual []ir.Observation) []error {
	got := make(map[string]bool, len(actual))
	for _, o := range actual {
		got[o.Text] = o.Holds
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, text := range keys {
		holds, ok := got[text]
		switch {
		case !ok:
			errs = append(errs, &AssertionError{
				Type:     "observations",
				Expected: fmt.Sprintf("observation %q", text),
				Actual:   "not recorded",
			})
		case holds != expected[text]:
			errs = append(errs, &AssertionError{
				Type:     "observations",
				Expected: fmt.Sprintf("%q holds = %t", text, expected[text]),
				Actual:   fmt.Sprintf("holds = %t", holds),
			})
		}
	}
	return errs
}

func assertDiagnostics(expected []string, result *Result) []error {
	got := make([]string, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		got = append(got, d.Code)
	}
	sorted := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(expected, got, sorted, cmpopts.EquateEmpty()); diff != "" {
		return []error{&AssertionError{Type: "diagnostics", Diff: diff}}
	}
	return nil
}

func assertAnswer(q QueryCheck, ans Answer) error {
	if q.Error {
		if ans.Error == "" {
			return &AssertionError{
				Type:     "query",
				Expected: fmt.Sprintf("%q rejected", q.Query),
				Actual:   fmt.Sprintf("answered %t", ans.Holds),
			}
		}
		return nil
	}
	if ans.Error != "" {
		return &AssertionError{
			Type:     "query",
			Expected: fmt.Sprintf("%q = %t", q.Query, q.Expect),
			Actual:   "error: " + ans.Error,
		}
	}
	if ans.Holds != q.Expect {
		return &AssertionError{
			Type:     "query",
			Expected: fmt.Sprintf("%q = %t", q.Query, q.Expect),
			Actual:   fmt.Sprintf("%t", ans.Holds),
		}
	}
	return nil
}

// diffError returns an AssertionError carrying the diff, or nil if equal.
func diffError(kind string, want, got []string) error {
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return &AssertionError{Type: kind, Diff: diff}
	}
	return nil
}

func validIDs(m ir.Model) []string {
	var ids []string
	for _, s := range m.States {
		if s.Valid {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func edgeStrings(m ir.Model) []string {
	out := make([]string, len(m.Edges))
	for i, e := range m.Edges {
		out[i] = FormatEdge(e)
	}
	return out
}
