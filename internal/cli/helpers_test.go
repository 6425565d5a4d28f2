package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var yaleStatements = []string{
	"initially alive",
	"initially ~loaded",
	"load causes loaded",
	"shoot causes ~alive and ~loaded if loaded",
	"load lasts 2",
	"~alive after load, shoot",
	"alive after shoot",
}

// writeStatements writes lines to dir/name and returns the path.
func writeStatements(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
