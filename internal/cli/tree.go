package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/pipeline"
)

// treeCommand creates the tree command for rendering the node hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "tree [document]",
		Short: "Render the node hierarchy as a Graphviz graph",
		Long: `Render the node hierarchy as a Graphviz graph.

Each node becomes a box labelled with its id and kind; nodes named by a
layout error are highlighted. With --detailed the labels also carry the
node's sizing, solved size and position.

The dot format writes Graphviz source. The svg format lays the graph out
with the embedded Graphviz engine.`,
		Example: `  crystal tree ui.toml
  crystal tree ui.toml -f dot -o - | dot -Tpng > tree.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "dot":
				opts.Formats = []string{pipeline.FormatDOT}
			case "svg", pipeline.FormatTreeSVG:
				opts.Formats = []string{pipeline.FormatTreeSVG}
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "tree format %q: want dot or svg", format)
			}
			return c.runTree(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout (default: <input>.layout.tree.svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include sizing and geometry in labels")
	cmd.Flags().Float32VarP(&opts.Width, "width", "W", 0, "viewport width")
	cmd.Flags().Float32VarP(&opts.Height, "height", "H", 0, "viewport height")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	res, err := c.solve(ctx, input, opts, noCache)
	if err != nil {
		return err
	}
	format := opts.Formats[0]
	data := res.Artifacts[format]

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	path := output
	if path == "" {
		path = basePath("", input) + pipeline.Extension(format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Rendered tree of %s", input)
	printFile(path)
	printStats(res.Stats.NodeCount, res.Stats.ErrorCount, res.CacheInfo.RenderHit)
	return nil
}
