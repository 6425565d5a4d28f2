package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"toggle", "yale", "invariant"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadTestScenario(t, name)))
		})
	}
}

func TestRun_Limit(t *testing.T) {
	result, err := Run(loadTestScenario(t, "limit"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "c causes r", result.Rejected[0].Statement)
}

func TestRun_RecordsAnswers(t *testing.T) {
	result, err := Run(loadTestScenario(t, "toggle"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Answers, 6)
	assert.Equal(t, Answer{Query: "necessarily ~p after a", Holds: true}, result.Answers[0])
	assert.NotEmpty(t, result.Answers[5].Error, "malformed query carries its error")
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "yale")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.NotEmpty(t, first.Model.Hash)
	assert.Equal(t, first.Model.Hash, second.Model.Hash)
	assert.Equal(t, first.Model, second.Model)
}

func TestRun_ReportsMismatches(t *testing.T) {
	states := 3
	s := &Scenario{
		Name:        "wrong",
		Description: "every expectation is off",
		Statements:  []string{"initially p", "a causes ~p", "p after a"},
		Expect: &Expectation{
			Fluents:      []string{"q"},
			States:       &states,
			Initial:      []string{"s1"},
			Edges:        []string{"s0 --a--> s0 (0)"},
			Observations: map[string]bool{"p after a": true, "q after a": true},
		},
		Queries: []QueryCheck{
			{Query: "initially p", Expect: false},
			{Query: "initially p", Error: true},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	joined := strings.Join(result.Errors, "\n")
	for _, want := range []string{
		"Assertion failed: fluents",
		"Assertion failed: states",
		"Assertion failed: initial",
		"Assertion failed: edges",
		"Assertion failed: observations",
		"Assertion failed: query",
		`"q after a"`,
	} {
		assert.Contains(t, joined, want)
	}
	assert.Len(t, result.Errors, 8)
}

func TestRun_UnexpectedRejection(t *testing.T) {
	s := &Scenario{
		Name:        "reject",
		Description: "a bad statement without expect_errors",
		Statements:  []string{"a causes p", "this is not a statement"},
		Queries:     []QueryCheck{{Query: "initially p", Expect: true}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Rejected, 1)
	assert.Contains(t, strings.Join(result.Errors, "\n"), `statement "this is not a statement" accepted`)
}

func TestRun_MissingRejection(t *testing.T) {
	s := &Scenario{
		Name:         "accept",
		Description:  "expect_errors names a good statement",
		Statements:   []string{"a causes p"},
		ExpectErrors: []string{"a causes p"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, strings.Join(result.Errors, "\n"), `statement "a causes p" rejected`)
}

func TestRun_DiagnosticsMismatch(t *testing.T) {
	none := []string{}
	s := &Scenario{
		Name:        "diag",
		Description: "a duplicate the scenario does not expect",
		Statements:  []string{"a causes p", "a causes p"},
		Expect:      &Expectation{Diagnostics: &none},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "E101", result.Diagnostics[0].Code)
	assert.Contains(t, result.Errors[0], "Assertion failed: diagnostics")
}

func TestHarness_Logs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := New(zap.New(core))

	result, err := h.Run(context.Background(), loadTestScenario(t, "toggle"))
	require.NoError(t, err)
	require.True(t, result.Pass)

	entries := logs.FilterMessage("scenario completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "toggle", fields["scenario"])
	assert.Equal(t, true, fields["pass"])
	assert.Equal(t, int64(1), fields["rejected"])

	assert.NotEmpty(t, logs.FilterMessage("statement accepted").All(), "engine logs flow through the harness logger")
}
