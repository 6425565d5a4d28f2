package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	As     string
	Output string
}

// renderers maps --as values to the render functions.
var renderers = map[string]func(io.Writer, *engine.Aggregator) error{
	"dot": func(w io.Writer, agg *engine.Aggregator) error {
		m, err := agg.Model()
		if err != nil {
			return err
		}
		return render.DOT(w, m)
	},
	"mermaid": func(w io.Writer, agg *engine.Aggregator) error {
		m, err := agg.Model()
		if err != nil {
			return err
		}
		return render.Mermaid(w, m)
	},
	"text": func(w io.Writer, agg *engine.Aggregator) error {
		m, err := agg.Model()
		if err != nil {
			return err
		}
		return render.Text(w, m, cycleStrings(agg))
	},
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file|dir>",
		Short: "Render a compiled system as a graph",
		Long: `Compile statements and render the transition system.

--as selects the rendering: dot (Graphviz, the default), mermaid, or
text. The global --format flag does not apply; render output is never
wrapped in JSON.

Examples:
  actiongraph render yale.adl | dot -Tsvg > yale.svg
  actiongraph render yale.adl --as mermaid -o yale.mmd`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "dot", "rendering (dot|mermaid|text)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	fn, ok := renderers[opts.As]
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid --as %q: must be dot, mermaid or text", opts.As), nil)
	}

	loaded, err := LoadStatements(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	agg, rejected := buildAggregator(cmd.Context(), opts.RootOptions, loaded.Statements)
	if len(rejected) > 0 {
		return outputStatementErrors(formatter, "Compilation failed", rejected)
	}

	var buf bytes.Buffer
	if err := fn(&buf, agg); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output == "" {
		_, err := buf.WriteTo(formatter.Writer)
		return err
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	formatter.VerboseLog("Wrote %s rendering to %s", opts.As, opts.Output)
	return nil
}
