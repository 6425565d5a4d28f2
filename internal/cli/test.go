package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/harness"
	"github.com/roach88/actiongraph/internal/render"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // Update golden files
	Filter string // Filter scenarios by name pattern
}

// TestResult is the JSON payload of the test command.
type TestResult struct {
	Total    int                   `json:"total"`
	Passed   int                   `json:"passed"`
	Failed   int                   `json:"failed"`
	Updated  []string              `json:"updated,omitempty"`
	Failures []harness.CaseFailure `json:"failures,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML scenarios and check their expectations.

Each scenario lists statements, the expected rejections, the expected
model and query answers. When <scenarios-dir>/golden/<name>.golden
exists, the DOT rendering of the scenario's model must match it.

Examples:
  actiongraph test ./scenarios
  actiongraph test ./scenarios --filter "yale*"
  actiongraph test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "update golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name (glob pattern)")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}

	h := harness.New(opts.logger().Named("harness"))
	suite, err := h.RunDir(cmd.Context(), dir, opts.Filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), nil)
	}

	result := &TestResult{Total: suite.Total, Passed: suite.Passed, Failed: suite.Failed, Failures: suite.Failures}

	// Golden comparison runs only on scenarios that passed their
	// expectations; a failed scenario is already reported.
	failed := make(map[string]bool, len(suite.Failures))
	for _, f := range suite.Failures {
		failed[f.Name] = true
	}
	for _, c := range suite.Results {
		if c.Result == nil || failed[c.Name] {
			continue
		}
		updated, msg, err := checkGolden(dir, c.Name, c.Result, opts.Update)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		if updated {
			result.Updated = append(result.Updated, c.Name)
		}
		if msg != "" {
			result.Passed--
			result.Failed++
			result.Failures = append(result.Failures, harness.CaseFailure{Name: c.Name, Path: c.Path, Errors: []string{msg}})
		}
	}

	if formatter.IsJSON() {
		if result.Failed == 0 {
			return formatter.Success(result)
		}
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeScenario, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed)},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "scenarios failed")
	}

	w := formatter.Writer
	for _, c := range suite.Results {
		mark := "✓"
		for _, f := range result.Failures {
			if f.Name == c.Name {
				mark = "✗"
			}
		}
		fmt.Fprintf(w, "%s %s\n", mark, c.Name)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(w, "\n%s (%s):\n", f.Name, f.Path)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	for _, name := range result.Updated {
		fmt.Fprintf(w, "updated golden file for %s\n", name)
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, "scenarios failed")
	}
	return nil
}

// goldenPath returns the golden file for a scenario in dir.
func goldenPath(dir, name string) string {
	return filepath.Join(dir, "golden", name+".golden")
}

// checkGolden compares the DOT rendering of result against its golden
// file, or rewrites the file when update is set. A missing golden file
// is not a failure. msg is non-empty on mismatch.
func checkGolden(dir, name string, result *harness.Result, update bool) (updated bool, msg string, err error) {
	var buf bytes.Buffer
	if err := render.DOT(&buf, result.Model); err != nil {
		return false, "", err
	}

	path := goldenPath(dir, name)
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, "", fmt.Errorf("creating golden directory: %w", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return false, "", fmt.Errorf("writing golden file: %w", err)
		}
		return true, "", nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("reading golden file: %w", err)
	}
	if diff := cmp.Diff(string(want), buf.String()); diff != "" {
		return false, fmt.Sprintf("golden mismatch for %s (-want +got):\n%s", path, diff), nil
	}
	return false, "", nil
}
