package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceText(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSessions(t, dbPath, map[string][]string{"yale": yaleStatements})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--session", "yale")
	require.NoError(t, err)

	assert.Contains(t, out, "Session: yale")
	assert.Contains(t, out, "initially  initially alive")
	assert.Contains(t, out, "causes     shoot causes ~alive and ~loaded if loaded")
	assert.Contains(t, out, "Statements: 7")
	assert.Contains(t, out, "  initially  2")
	assert.Contains(t, out, "  after      2")
	assert.Contains(t, out, "Latest model: seq ")
}

func TestTraceKindFilterJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSessions(t, dbPath, map[string][]string{"yale": yaleStatements})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--session", "yale", "--kind", "CAUSES")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Stats.Total)
	assert.Equal(t, map[string]int{"causes": 2}, resp.Data.Stats.ByKind)
	require.Len(t, resp.Data.Statements, 2)
	assert.Equal(t, "load causes loaded", resp.Data.Statements[0].Text)
	assert.Less(t, resp.Data.Statements[0].Seq, resp.Data.Statements[1].Seq)
	require.NotNil(t, resp.Data.Latest)
}

func TestTraceErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSessions(t, dbPath, map[string][]string{"yale": yaleStatements})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing session flag", []string{"--db", dbPath}, "required flag"},
		{"unknown session", []string{"--db", dbPath, "--session", "nope"}, ErrCodeNoSession},
		{"unknown kind", []string{"--db", dbPath, "--session", "yale", "--kind", "maybe"}, "unknown statement kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
