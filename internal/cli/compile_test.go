package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actiongraph/internal/ir"
)

func TestCompileText(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "yale.adl", yaleStatements...)

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 7 statement(s) from 1 file(s)")
	assert.Contains(t, out, "Fluents:  alive, loaded")
	assert.Contains(t, out, "States:   4 (4 valid)")
	assert.Contains(t, out, "Initial:  s1")
	assert.Contains(t, out, "Edges:    6")
	assert.Contains(t, out, "~alive after load, shoot: yes")
	assert.Contains(t, out, "alive after shoot: no")
	assert.Contains(t, out, "Model hash: ")
}

func TestCompileJSON(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "toggle.adl", "initially p", "a causes ~p if p", "a causes p if ~p", "a lasts 3")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Files)
	assert.Equal(t, []string{"p"}, resp.Data.Model.Fluents)
	assert.Equal(t, []string{"s0"}, resp.Data.Model.Initial)
	require.Len(t, resp.Data.Model.Edges, 2)
	assert.Equal(t, "a (3)", resp.Data.Model.Edges[0].Label)
	assert.Equal(t, []string{"s0 -> s1 -> s0"}, resp.Data.Cycles)
	assert.NotEmpty(t, resp.Data.Model.Hash)
}

func TestCompileOutputToFile(t *testing.T) {
	dir := t.TempDir()
	path := writeStatements(t, dir, "yale.adl", yaleStatements...)
	outputFile := filepath.Join(dir, "model.json")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), path, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote model to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var m ir.Model
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []string{"alive", "loaded"}, m.Fluents)
	assert.Len(t, m.States, 4)
	assert.Equal(t, ir.MustModelHash(m), m.Hash)
}

func TestCompileRejectedStatements(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "bad.adl",
		"initially p",
		"a causes",
		"p and q",
	)

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 statement(s) rejected")
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, path+":2:")
	assert.Contains(t, out, path+":3:")
}

func TestCompileRejectedStatementsJSON(t *testing.T) {
	path := writeStatements(t, t.TempDir(), "bad.adl", "a causes")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStatement, resp.Error.Code)
}

func TestCompileMissingPath(t *testing.T) {
	_, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "none.adl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestCompileRequiresOneArg(t *testing.T) {
	_, err := execute(NewCompileCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
