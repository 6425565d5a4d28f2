package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/actiongraph/internal/config"
	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/graph"
)

// RootOptions holds global flags for all commands, and the config and
// logger resolved from them before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	MaxFluents int // 0: use config

	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the actiongraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "actiongraph",
		Short: "actiongraph - action description compiler",
		Long: `Compile action-description statements into a labelled transition system
and answer queries about it.

Statements such as "initially alive", "load causes loaded" or
"shoot causes ~alive if loaded" are read from plain-text (.adl, .txt)
or CUE files, compiled over every assignment of their fluents, and
rendered or queried.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultFile, "config file path")
	cmd.PersistentFlags().IntVar(&opts.MaxFluents, "max-fluents", 0, fmt.Sprintf("fluent limit (1-%d, default from config)", graph.HardMaxFluents))

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// resolve loads the config file and applies flag overrides. Flags win
// over the file; the file wins over defaults.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Format
	}
	if o.MaxFluents != 0 {
		cfg.MaxFluents = o.MaxFluents
		if err := cfg.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "invalid --max-fluents", err)
		}
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	logger, err := cfg.Logging.NewLogger(o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}

	o.Config = cfg
	o.Logger = logger
	return nil
}

// logger returns the resolved logger, or a no-op logger when a command
// runs without the root (as in tests).
func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *RootOptions) maxFluents() int {
	if o.MaxFluents > 0 {
		return o.MaxFluents
	}
	if o.Config != nil {
		return o.Config.MaxFluents
	}
	return graph.DefaultMaxFluents
}

// database returns flag if set, else the configured path.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	if o.Config != nil {
		return o.Config.Database
	}
	return config.DefaultConfig().Database
}

// engineOptions returns the aggregator options every command shares.
func (o *RootOptions) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLogger(o.logger().Named("engine")),
		engine.WithMaxFluents(o.maxFluents()),
	}
}

// formatter builds the output formatter for cmd. Verbose logs go to
// stderr to avoid corrupting JSON.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
