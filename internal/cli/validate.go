package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	Statements  int                 `json:"statements"`
	Files       int                 `json:"files"`
	Errors      []CLIError          `json:"errors"`
	Diagnostics []LocatedDiagnostic `json:"diagnostics"`
}

// LocatedDiagnostic is a validator diagnostic mapped back to its file.
type LocatedDiagnostic struct {
	compiler.ValidationError
	File string `json:"file"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file|dir>",
		Short: "Check statements without compiling",
		Long: `Parse every statement and report likely mistakes.

Statements that do not parse are errors. Duplicates, contradictory
effects and actions that no law mentions are reported as diagnostics;
they fail validation only with --strict.

Examples:
  actiongraph validate yale.adl
  actiongraph validate ./domain --strict`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat diagnostics as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadStatements(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	result := &ValidationResult{
		Statements:  len(loaded.Statements),
		Files:       loaded.FileCount,
		Errors:      []CLIError{},
		Diagnostics: []LocatedDiagnostic{},
	}

	// Parsed statements are validated together; origin maps each back to
	// its source line.
	var parsed []compiler.Statement
	var origin []Source
	for _, src := range loaded.Statements {
		st, err := compiler.Parse(src.Text)
		if err != nil {
			result.Errors = append(result.Errors, CLIError{
				Code:    ErrCodeStatement,
				Message: fmt.Sprintf("%s: %v", src.Location(), err),
				Details: src,
			})
			continue
		}
		parsed = append(parsed, st)
		origin = append(origin, src)
	}

	for _, d := range compiler.Validate(parsed) {
		located := LocatedDiagnostic{ValidationError: d}
		if d.Line > 0 && d.Line <= len(origin) {
			located.File = origin[d.Line-1].File
			located.Line = origin[d.Line-1].Line
		}
		result.Diagnostics = append(result.Diagnostics, located)
	}

	result.Valid = len(result.Errors) == 0 && (!opts.Strict || len(result.Diagnostics) == 0)
	formatter.VerboseLog("Validated %d statement(s): %d error(s), %d diagnostic(s)",
		result.Statements, len(result.Errors), len(result.Diagnostics))

	if formatter.IsJSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		resp := CLIResponse{Status: "error", Data: result}
		if len(result.Errors) > 0 {
			resp.Error = &result.Errors[0]
		} else {
			d := result.Diagnostics[0]
			resp.Error = &CLIError{Code: d.Code, Message: d.Error()}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	w := formatter.Writer
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", e.Code, e.Message)
	}
	for _, d := range result.Diagnostics {
		mark := "!"
		if opts.Strict {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s:%d: [%s] %s: %s\n", mark, d.File, d.Line, d.Code, d.Field, d.Message)
	}
	if !result.Valid {
		fmt.Fprintf(w, "\nValidation failed: %d error(s), %d diagnostic(s)\n", len(result.Errors), len(result.Diagnostics))
		return NewExitError(ExitFailure, "validation failed")
	}
	fmt.Fprintf(w, "✓ %d statement(s) in %d file(s) are valid", result.Statements, result.Files)
	if n := len(result.Diagnostics); n > 0 {
		fmt.Fprintf(w, " (%d diagnostic(s))", n)
	}
	fmt.Fprintln(w)
	return nil
}
