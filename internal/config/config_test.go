package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`
max_fluents: 8
format: json
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxFluents)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "actiongraph.db", cfg.Database, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACTIONGRAPH_MAX_FLUENTS", "4")
	t.Setenv("ACTIONGRAPH_DATABASE", "/tmp/x.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxFluents)
	assert.Equal(t, "/tmp/x.db", cfg.Database)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"too many fluents", "max_fluents: 63\n"},
		{"zero fluents", "max_fluents: 0\n"},
		{"bad format", "format: xml\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad encoding", "logging:\n  encoding: csv\n"},
		{"not yaml", "max_fluents: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	cfg := DefaultConfig()
	cfg.MaxFluents = 12

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestNewLogger(t *testing.T) {
	l, err := LoggingConfig{}.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel), "logging is off by default")

	l, err = LoggingConfig{}.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = LoggingConfig{Level: "warn", Encoding: "json"}.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
