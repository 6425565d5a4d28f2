package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClean(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 7 statement(s) in 1 file(s) are valid")
	assert.NotContains(t, out, "diagnostic")
}

func TestValidateDiagnostics(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "dup.adl",
		"# duplicates and a stray duration",
		"a causes ~p if p",
		"a causes ~p if p",
		"b lasts 2",
	)

	t.Run("warnings pass", func(t *testing.T) {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
		require.NoError(t, err)
		assert.Contains(t, out, "! "+path+":3: [E101]")
		assert.Contains(t, out, "! "+path+":4: [E110]")
		assert.Contains(t, out, "(2 diagnostic(s))")
	})

	t.Run("strict fails", func(t *testing.T) {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path, "--strict")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "✗ "+path+":3: [E101]")
		assert.Contains(t, out, "Validation failed: 0 error(s), 2 diagnostic(s)")
	})
}

func TestValidateParseErrors(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "bad.adl",
		"initially p",
		"a causes",
	)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ E010: "+path+":2:")
}

func TestValidateJSON(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "dup.adl", "initially p", "initially p", "a causes")

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Statements)
	require.Len(t, resp.Data.Errors, 1)
	require.Len(t, resp.Data.Diagnostics, 1)
	assert.Equal(t, "E101", resp.Data.Diagnostics[0].Code)
	assert.Equal(t, path, resp.Data.Diagnostics[0].File)
	assert.Equal(t, 2, resp.Data.Diagnostics[0].Line)
	assert.Equal(t, ErrCodeStatement, resp.Error.Code)
}

func TestValidateLineMappingSkipsRejected(t *testing.T) {
	// Validator lines count parsed statements only; the rejected line
	// must not shift the mapping back to the file.
	path := writeStatements(t, t.TempDir(), "shift.adl",
		"a causes",
		"initially p",
		"",
		"initially p",
	)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Diagnostics, 1)
	assert.Equal(t, 4, resp.Data.Diagnostics[0].Line)
}
