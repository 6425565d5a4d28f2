package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance case: a statement list and what the
// compiled system must look like afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Statements are fed to the aggregator in order.
	Statements []string `yaml:"statements"`

	// ExpectErrors lists statements that must be rejected.
	ExpectErrors []string `yaml:"expect_errors,omitempty"`

	// Expect describes the final system. Nil skips model checks.
	Expect *Expectation `yaml:"expect,omitempty"`

	// Queries are evaluated against the final system.
	Queries []QueryCheck `yaml:"queries,omitempty"`

	// MaxFluents overrides the aggregator's fluent limit when positive.
	MaxFluents int `yaml:"max_fluents,omitempty"`

	// Session is the store session ID. Empty uses the harness default.
	Session string `yaml:"session,omitempty"`
}

// Expectation describes the compiled system. Nil or empty fields are not
// checked, except Diagnostics, where an explicit empty list asserts there
// are none.
type Expectation struct {
	// Fluents is the universe in order.
	Fluents []string `yaml:"fluents,omitempty"`

	// States is the enumerated state count.
	States *int `yaml:"states,omitempty"`

	// Valid lists the IDs of states satisfying every invariant.
	Valid []string `yaml:"valid,omitempty"`

	// Initial lists initial-state IDs in enumeration order.
	Initial []string `yaml:"initial,omitempty"`

	// Edges lists transitions as "src --action--> dst (N)" in insertion order.
	Edges []string `yaml:"edges,omitempty"`

	// Observations maps observation text to its recorded truth value.
	Observations map[string]bool `yaml:"observations,omitempty"`

	// Diagnostics lists expected validator codes, in any order.
	Diagnostics *[]string `yaml:"diagnostics,omitempty"`
}

// QueryCheck is one query and its expected answer.
type QueryCheck struct {
	Query string `yaml:"query"`

	// Expect is the expected truth value. Ignored when Error is set.
	Expect bool `yaml:"expect"`

	// Error asserts the query is rejected.
	Error bool `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
// It stops at the first file that fails to load.
func LoadScenarios(dir string) ([]*Scenario, []string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Statements) == 0 {
		return fmt.Errorf("statements list is required and must be non-empty")
	}

	if s.Expect == nil && len(s.Queries) == 0 && len(s.ExpectErrors) == 0 {
		return fmt.Errorf("at least one of expect, queries or expect_errors is required")
	}

	for i, text := range s.ExpectErrors {
		if !slices.Contains(s.Statements, text) {
			return fmt.Errorf("expect_errors[%d]: %q is not in statements", i, text)
		}
	}

	for i, q := range s.Queries {
		if q.Query == "" {
			return fmt.Errorf("queries[%d]: query is required", i)
		}
	}

	if s.MaxFluents < 0 {
		return fmt.Errorf("max_fluents must be non-negative")
	}

	return nil
}
