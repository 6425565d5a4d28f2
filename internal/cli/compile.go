package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/ir"
	"github.com/roach88/actiongraph/internal/render"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// StatementError is a rejected statement and where it came from.
type StatementError struct {
	Source
	Message string `json:"message"`

	err error
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Files  int      `json:"files"`
	Model  ir.Model `json:"model"`
	Cycles []string `json:"cycles"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file|dir>",
		Short: "Compile statements into a transition system",
		Long: `Compile action-description statements into a transition system.

Statements are fed to the aggregator in file order. Every rejected
statement is reported with its location; if any is rejected nothing
is written.

Examples:
  actiongraph compile yale.adl
  actiongraph compile ./domain --output model.json
  actiongraph compile yale.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the model as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadStatements(path)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Loaded %d statement(s) from %d file(s)", len(loaded.Statements), loaded.FileCount)

	agg, rejected := buildAggregator(cmd.Context(), opts.RootOptions, loaded.Statements)
	if len(rejected) > 0 {
		return outputStatementErrors(formatter, "Compilation failed", rejected)
	}

	m, err := agg.Model()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	result := &CompilationResult{
		Files:  loaded.FileCount,
		Model:  m,
		Cycles: cycleStrings(agg),
	}

	if opts.Output != "" {
		if err := writeModelToFile(m, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return outputCompileText(formatter.Writer, result, opts.Output)
}

// buildAggregator feeds srcs to a fresh aggregator. Rejected statements
// are returned with their locations; accepted ones stay in the history.
func buildAggregator(ctx context.Context, opts *RootOptions, srcs []Source, extra ...engine.Option) (*engine.Aggregator, []StatementError) {
	if ctx == nil {
		ctx = context.Background()
	}
	agg := engine.New(append(opts.engineOptions(), extra...)...)
	return agg, addSources(ctx, opts, agg, srcs)
}

// addSources adds each statement in turn and collects rejections.
func addSources(ctx context.Context, opts *RootOptions, agg *engine.Aggregator, srcs []Source) []StatementError {
	var rejected []StatementError
	for _, src := range srcs {
		if err := agg.AddStatement(ctx, src.Text); err != nil {
			opts.logger().Debug("statement rejected",
				zap.String("file", src.File),
				zap.Int("line", src.Line),
				zap.Error(err))
			rejected = append(rejected, StatementError{Source: src, Message: err.Error(), err: err})
		}
	}
	return rejected
}

// cycleStrings lists the cycles of agg's system as "s0 -> s1 -> s0".
func cycleStrings(agg *engine.Aggregator) []string {
	sys := agg.System()
	out := []string{}
	for _, c := range sys.Cycles() {
		out = append(out, c.String(sys))
	}
	return out
}

// outputStatementErrors reports rejected statements and returns exit code 2.
func outputStatementErrors(f *OutputFormatter, title string, rejected []StatementError) error {
	errs := make([]CLIError, len(rejected))
	for i, r := range rejected {
		errs[i] = CLIError{
			Code:    ErrCodeStatement,
			Message: fmt.Sprintf("%s: %s", r.Location(), r.Message),
			Details: r.Source,
		}
	}

	if !f.IsJSON() {
		fmt.Fprintf(f.Writer, "✗ %s\n\n", title)
	}
	if err := f.Errors(errs); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("%d statement(s) rejected", len(rejected)))
}

// outputCompileText prints a human-readable summary of the model.
func outputCompileText(w io.Writer, result *CompilationResult, outputFile string) error {
	m := result.Model
	valid := 0
	for _, s := range m.States {
		if s.Valid {
			valid++
		}
	}

	fmt.Fprintf(w, "✓ Compiled %d statement(s) from %d file(s)\n\n", len(m.Statements), result.Files)
	fmt.Fprintf(w, "Fluents:  %s\n", joinOrNone(m.Fluents))
	fmt.Fprintf(w, "States:   %d (%d valid)\n", len(m.States), valid)
	fmt.Fprintf(w, "Initial:  %s\n", joinOrNone(m.Initial))
	fmt.Fprintf(w, "Edges:    %d\n", len(m.Edges))
	fmt.Fprintf(w, "Cycles:   %d\n", len(result.Cycles))

	if len(m.Observations) > 0 {
		fmt.Fprintln(w, "\nObservations:")
		for _, o := range m.Observations {
			fmt.Fprintf(w, "  %s: %s\n", o.Text, render.YesNo(o.Holds))
		}
	}

	fmt.Fprintf(w, "\nModel hash: %s\n", m.Hash)
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote model to %s\n", outputFile)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// writeModelToFile writes the model as indented JSON.
// (canonical JSON without indentation is used only for hashing)
func writeModelToFile(m ir.Model, filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
