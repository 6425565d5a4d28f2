package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/actiongraph/internal/render"
)

// RunWithGolden executes a scenario, fails t on any unmet expectation,
// and compares the DOT rendering of the final model against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the DOT rendering of result's model against a
// golden file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	var buf bytes.Buffer
	if err := render.DOT(&buf, result.Model); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, buf.Bytes())

	return nil
}
