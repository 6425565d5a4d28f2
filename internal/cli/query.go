package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/ir"
	"github.com/roach88/actiongraph/internal/render"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Check bool
}

// QueryAnswer is one answered query.
type QueryAnswer struct {
	Query string `json:"query"`
	Holds bool   `json:"holds"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <file|dir> <query>...",
		Short: "Answer queries about a compiled system",
		Long: `Compile statements and answer one or more queries.

Queries take an optional "necessarily" (default) or "possibly" prefix:
  initially F
  F after A1,...,An [within N]
  A1,...,An executable
  EX|AX|EF|AF|EG|AG F, reachable F, invariant F

Examples:
  actiongraph query yale.adl "~alive after load, shoot"
  actiongraph query yale.adl "possibly EF ~alive" "AG alive" --check`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit 1 if any query is false")

	return cmd
}

func runQuery(opts *QueryOptions, path string, queries []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadStatements(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	agg, rejected := buildAggregator(cmd.Context(), opts.RootOptions, loaded.Statements)
	if len(rejected) > 0 {
		return outputStatementErrors(formatter, "Compilation failed", rejected)
	}

	answers := make([]QueryAnswer, 0, len(queries))
	for _, q := range queries {
		holds, err := agg.Query(q)
		if err != nil {
			code := ErrCodeQuery
			if ir.IsInternalError(err) {
				code = ErrCodeGeneric
			}
			return formatter.Fail(ExitCommandError, code, fmt.Sprintf("%q: %v", q, err), nil)
		}
		answers = append(answers, QueryAnswer{Query: q, Holds: holds})
	}

	if formatter.IsJSON() {
		if err := formatter.Success(answers); err != nil {
			return err
		}
	} else {
		for _, a := range answers {
			fmt.Fprintf(formatter.Writer, "%s: %s\n", a.Query, render.YesNo(a.Holds))
		}
	}

	if opts.Check {
		for _, a := range answers {
			if !a.Holds {
				return NewExitError(ExitFailure, fmt.Sprintf("query does not hold: %s", a.Query))
			}
		}
	}
	return nil
}
