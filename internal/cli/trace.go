package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/compiler"
	"github.com/roach88/actiongraph/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	DB      string
	Session string
	Kind    string
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	Session    string                  `json:"session"`
	Statements []store.StatementRecord `json:"statements"`
	Stats      TraceStats              `json:"stats"`
	Latest     *store.ModelRecord      `json:"latest,omitempty"`
}

// TraceStats counts a session's statements by kind.
type TraceStats struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a session's statement log",
		Long: `Show the statements logged in a session, in seq order.

Prints the timeline, a count per statement kind, and the seq and hash
of the latest model snapshot.

Examples:
  actiongraph trace --session 0192f8a0-...
  actiongraph trace --session 0192f8a0-... --kind causes --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID to trace (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "show only statements of this kind")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Session == "" {
		return formatter.Fail(ExitCommandError, ErrCodeNoSession, "--session is required", nil)
	}
	kind := strings.ToLower(opts.Kind)
	if kind != "" {
		if _, ok := compiler.KindOf(kind); !ok {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown statement kind %q", opts.Kind), nil)
		}
	}

	st, err := openExistingStore(opts.database(opts.DB))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	state, err := st.GetSessionState(ctx, opts.Session)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNoSession, fmt.Sprintf("session not found: %s", opts.Session), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := &TraceResult{
		Session:    opts.Session,
		Statements: []store.StatementRecord{},
		Stats:      TraceStats{ByKind: map[string]int{}},
		Latest:     state.Latest,
	}
	for _, rec := range state.Statements {
		if kind != "" && rec.Kind != kind {
			continue
		}
		result.Statements = append(result.Statements, rec)
		result.Stats.ByKind[rec.Kind]++
	}
	result.Stats.Total = len(result.Statements)

	if formatter.IsJSON() {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, Session: opts.Session})
	}
	outputTraceText(formatter, result)
	return nil
}

func outputTraceText(f *OutputFormatter, result *TraceResult) {
	w := f.Writer
	fmt.Fprintf(w, "Session: %s\n\n", result.Session)

	if len(result.Statements) == 0 {
		fmt.Fprintln(w, "No statements")
	}
	for _, rec := range result.Statements {
		fmt.Fprintf(w, "[%d] %-10s %s\n", rec.Seq, rec.Kind, rec.Text)
	}

	if len(result.Stats.ByKind) > 0 {
		kinds := make([]string, 0, len(result.Stats.ByKind))
		for k := range result.Stats.ByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool {
			ki, _ := compiler.KindOf(kinds[i])
			kj, _ := compiler.KindOf(kinds[j])
			return ki < kj
		})
		fmt.Fprintf(w, "\nStatements: %d\n", result.Stats.Total)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-10s %d\n", k, result.Stats.ByKind[k])
		}
	}

	if result.Latest != nil {
		fmt.Fprintf(w, "\nLatest model: seq %d, hash %s\n", result.Latest.Seq, result.Latest.Hash)
	}
}
