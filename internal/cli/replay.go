package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DB      string
	Session string
}

// ReplayResult is one replayed session.
type ReplayResult struct {
	Session    string `json:"session"`
	Statements int    `json:"statements"`
	Hash       string `json:"hash"`
	Status     string `json:"status"` // "ok" | "diverged"
	Error      string `json:"error,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild sessions from their statement logs",
		Long: `Rebuild sessions from the store and verify their snapshots.

Each session's statements are re-parsed and re-compiled in log order.
The rebuilt model's hash must equal the latest stored snapshot; a
mismatch means the compiler no longer agrees with the log.

Without --session every session in the database is replayed.

Examples:
  actiongraph replay --db ./actiongraph.db
  actiongraph replay --session 0192f8a0-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay only this session")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.database(opts.DB))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := st.Sessions(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	results := make([]ReplayResult, 0, len(ids))
	diverged := 0
	for _, id := range ids {
		agg, err := engine.Replay(ctx, st, id, opts.engineOptions()...)
		switch {
		case engine.IsSessionNotFound(err):
			return formatter.Fail(ExitCommandError, ErrCodeNoSession, fmt.Sprintf("session not found: %s", id), nil)
		case engine.IsReplayDivergence(err):
			diverged++
			results = append(results, ReplayResult{Session: id, Status: "diverged", Error: err.Error()})
			continue
		case err != nil:
			return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("replaying %s: %v", id, err), nil)
		}

		m, err := agg.Model()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		history := agg.History()
		results = append(results, ReplayResult{
			Session:    id,
			Statements: history.Len(),
			Hash:       m.Hash,
			Status:     "ok",
		})
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: results, Session: opts.Session}
		if diverged > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeDiverged, Message: fmt.Sprintf("%d session(s) diverged", diverged)}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if len(results) == 0 {
			fmt.Fprintln(w, "No sessions to replay")
		}
		for _, r := range results {
			if r.Status == "ok" {
				fmt.Fprintf(w, "✓ %s: %d statement(s), hash %s\n", r.Session, r.Statements, r.Hash)
				continue
			}
			fmt.Fprintf(w, "✗ %s: %s\n", r.Session, r.Error)
		}
	}

	if diverged > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) diverged", diverged))
	}
	return nil
}

// openExistingStore opens a database that must already exist, so a
// mistyped path is reported instead of creating an empty store.
func openExistingStore(path string) (*store.Store, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("database not found: %s", path)
			}
			return nil, fmt.Errorf("accessing database %s: %w", path, err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return st, nil
}
