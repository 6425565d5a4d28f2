package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAnswers(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	tests := []struct {
		query string
		want  string
	}{
		{"~alive after load, shoot", "yes"},
		{"~alive after load, shoot within 1", "no"},
		{"possibly alive after shoot", "no"},
		{"load, shoot executable", "yes"},
		{"shoot executable", "no"},
		{"initially alive and ~loaded", "yes"},
		{"reachable ~alive", "yes"},
		{"invariant alive", "no"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.query+": "+tt.want+"\n", out)
		})
	}
}

func TestQueryMultipleJSON(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "json"}), path, "reachable ~alive", "AG alive")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []QueryAnswer `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []QueryAnswer{
		{Query: "reachable ~alive", Holds: true},
		{Query: "AG alive", Holds: false},
	}, resp.Data)
}

func TestQueryCheck(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), path, "reachable ~alive", "--check")
	require.NoError(t, err)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), path, "reachable ~alive", "invariant alive", "--check")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "invariant alive")
	assert.Contains(t, out, "invariant alive: no")
}

func TestQueryErrors(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"malformed", "alive after", ErrCodeQuery},
		{"no form", "alive", ErrCodeQuery},
		{"unknown fluent", "reachable ghost", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), path, tt.query)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
		})
	}
}

func TestQueryRequiresQuery(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
}
