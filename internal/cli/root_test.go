package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "actiongraph", cmd.Use)
	assert.Contains(t, cmd.Long, "labelled transition system")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "query", "render", "test", "log", "replay", "trace"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "actiongraph.yaml", configFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("max-fluents"))
}

func TestSubcommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"output"}},
		{"validate", []string{"strict"}},
		{"query", []string{"check"}},
		{"render", []string{"as", "output"}},
		{"test", []string{"update", "filter"}},
		{"log", []string{"db", "session"}},
		{"replay", []string{"db", "session"}},
		{"trace", []string{"db", "session", "kind"}},
	}

	cmd := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(f), "flag --%s", f)
			}
		})
	}
}

func TestRootResolvesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeStatements(t, dir, "actiongraph.yaml", "format: json", "max_fluents: 4")
	src := writeStatements(t, dir, "toggle.adl", "a causes p if ~p", "a causes ~p if p")

	out, err := execute(NewRootCommand(), "compile", src, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
}

func TestRootFormatFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeStatements(t, dir, "actiongraph.yaml", "format: json")
	src := writeStatements(t, dir, "toggle.adl", "a causes p if ~p")

	out, err := execute(NewRootCommand(), "compile", src, "--config", cfgPath, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 statement(s)")
}

func TestRootMaxFluentsFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")
	src := writeStatements(t, dir, "three.adl", "a causes p", "b causes q", "c causes r")

	_, err := execute(NewRootCommand(), "compile", src, "--config", cfgPath, "--max-fluents", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(NewRootCommand(), "compile", src, "--config", cfgPath, "--max-fluents", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --max-fluents")
}

func TestRootInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeStatements(t, dir, "a.adl", "a causes p")

	_, err := execute(NewRootCommand(), "compile", src, "--config", filepath.Join(dir, "none.yaml"), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptionsDefaults(t *testing.T) {
	opts := &RootOptions{}
	assert.Equal(t, 20, opts.maxFluents())
	assert.Equal(t, "actiongraph.db", opts.database(""))
	assert.Equal(t, "x.db", opts.database("x.db"))
	assert.NotNil(t, opts.logger())

	opts.MaxFluents = 5
	assert.Equal(t, 5, opts.maxFluents())
}
