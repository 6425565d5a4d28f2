package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	DB      string
	Session string

	// Generator issues new session IDs. Tests set a fixed generator.
	Generator engine.IDGenerator
}

// LogResult is the JSON payload of the log command.
type LogResult struct {
	Session  string           `json:"session"`
	Accepted int              `json:"accepted"`
	Rejected []StatementError `json:"rejected"`
	Total    int              `json:"total"`
	Hash     string           `json:"hash"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	return newLogCommand(&LogOptions{RootOptions: rootOpts})
}

func newLogCommand(opts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <file|dir>",
		Short: "Append statements to a stored session",
		Long: `Add statements to a session in the SQLite store.

Without --session a new session is opened and its ID printed. With
--session the session is replayed from its log first and the new
statements are appended after it. Every accepted statement is written
with a snapshot of the resulting model; rejected statements are
reported and not written.

Examples:
  actiongraph log yale.adl
  actiongraph log more.adl --session 0192f8a0-... --db ./actiongraph.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "append to this session instead of opening a new one")

	return cmd
}

func runLog(opts *LogOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loaded, err := LoadStatements(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	dbPath := opts.database(opts.DB)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database %s: %v", dbPath, err), nil)
	}
	defer st.Close()

	agg, err := openSession(ctx, opts, st)
	if err != nil {
		switch {
		case engine.IsSessionNotFound(err):
			return formatter.Fail(ExitCommandError, ErrCodeNoSession, fmt.Sprintf("session not found: %s", opts.Session), nil)
		case engine.IsReplayDivergence(err):
			return formatter.Fail(ExitFailure, ErrCodeDiverged, err.Error(), nil)
		default:
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
	}
	beforeHistory := agg.History()
	before := beforeHistory.Len()

	rejected := addSources(ctx, opts.RootOptions, agg, loaded.Statements)
	for _, r := range rejected {
		// A store failure is not a statement problem.
		if engine.IsPersistError(r.err) {
			return formatter.Fail(ExitCommandError, ErrCodeStore, r.Message, nil)
		}
	}

	m, err := agg.Model()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	afterHistory := agg.History()
	result := &LogResult{
		Session:  agg.Session(),
		Accepted: afterHistory.Len() - before,
		Rejected: rejected,
		Total:    afterHistory.Len(),
		Hash:     m.Hash,
	}
	if result.Rejected == nil {
		result.Rejected = []StatementError{}
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result, Session: result.Session}
		if len(rejected) > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeStatement, Message: fmt.Sprintf("%d statement(s) rejected", len(rejected))}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Session:  %s\n", result.Session)
		fmt.Fprintf(w, "Accepted: %d (total %d)\n", result.Accepted, result.Total)
		for _, r := range rejected {
			fmt.Fprintf(w, "✗ %s: %s\n", r.Location(), r.Message)
		}
		fmt.Fprintf(w, "Model hash: %s\n", result.Hash)
	}

	if len(rejected) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d statement(s) rejected", len(rejected)))
	}
	return nil
}

// openSession replays the requested session, or attaches a fresh
// aggregator to a new one.
func openSession(ctx context.Context, opts *LogOptions, st *store.Store) (*engine.Aggregator, error) {
	if opts.Session != "" {
		return engine.Replay(ctx, st, opts.Session, opts.engineOptions()...)
	}

	gen := opts.Generator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	agg := engine.New(opts.engineOptions()...)
	if _, err := agg.Attach(ctx, st, gen); err != nil {
		return nil, err
	}
	return agg, nil
}
