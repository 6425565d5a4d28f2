// Package config loads actiongraph.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/roach88/actiongraph/internal/graph"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "actiongraph.yaml"

// Config holds settings shared by every command. Command-line flags
// override file values; environment variables override both file and
// defaults but not flags.
type Config struct {
	// MaxFluents bounds the fluent universe (2^n states).
	MaxFluents int `yaml:"max_fluents"`

	// Format is the default output format: text or json.
	Format string `yaml:"format"`

	// Database is the SQLite path used by log and replay.
	Database string `yaml:"database"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error; empty: off unless verbose
	Encoding string `yaml:"encoding"` // console or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxFluents: graph.DefaultMaxFluents,
		Format:     "text",
		Database:   "actiongraph.db",
		Logging: LoggingConfig{
			Encoding: "console",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ACTIONGRAPH_MAX_FLUENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxFluents = n
		}
	}
	if v := os.Getenv("ACTIONGRAPH_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("ACTIONGRAPH_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("ACTIONGRAPH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxFluents < 1 || c.MaxFluents > graph.HardMaxFluents {
		return fmt.Errorf("max_fluents must be between 1 and %d, got %d", graph.HardMaxFluents, c.MaxFluents)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	switch c.Logging.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.encoding must be console or json, got %q", c.Logging.Encoding)
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	return nil
}

// NewLogger builds the zap logger for a command run. With no level set
// and verbose off, logging is disabled. Output goes to stderr.
func (l LoggingConfig) NewLogger(verbose bool) (*zap.Logger, error) {
	if l.Level == "" && !verbose {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if l.Encoding != "" {
		cfg.Encoding = l.Encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	level := zapcore.InfoLevel
	if l.Level != "" {
		parsed, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
