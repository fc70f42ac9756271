package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/pipeline"
)

// solveOpts holds the solve flags that are not pipeline options.
type solveOpts struct {
	output  string // output path, base path for several formats, or "-" for stdout
	noCache bool
	strict  bool // fail when the solve reports layout errors
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		formatsStr string
		so         solveOpts
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "solve [document]",
		Short: "Solve a tree document and write its geometry",
		Long: `Solve a tree document and write its geometry.

The document (TOML or JSON) is solved against a viewport taken from the
--width/--height flags, the document's [viewport] table or the configured
default, in that order. Layout errors (overflowing containers and children
outside their parent) are reported but do not fail the command unless
--strict is set.

Output files are named after the input (ui.toml -> ui.layout.json) unless
--output is given. Use --output - to write a single format to stdout.

Results are cached, keyed by the document and every option that affects
the output.`,
		Example: `  crystal solve ui.toml
  crystal solve ui.toml -W 1280 -H 720 -f json,svg --labels
  crystal solve ui.json -f png --scale 3 -o screen.png
  crystal solve ui.toml -o - | jq '.nodes[] | select(.depth == 1)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if so.output == "-" && len(opts.Formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format, got %d", len(opts.Formats))
			}
			return c.runSolve(cmd.Context(), args[0], opts, so)
		},
	}

	cmd.Flags().StringVarP(&so.output, "output", "o", "", "output file (single format), base path (several) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), svg, png, pdf, dot, tree-svg (comma-separated)")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&so.strict, "strict", false, "exit non-zero when the layout has errors")

	cmd.Flags().Float32VarP(&opts.Width, "width", "W", 0, "viewport width (default: document, then config)")
	cmd.Flags().Float32VarP(&opts.Height, "height", "H", 0, "viewport height (default: document, then config)")
	cmd.Flags().BoolVar(&opts.Dedupe, "dedupe", false, "drop repeated layout errors")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw node ids in SVG, PNG and PDF output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include sizing and geometry in tree labels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts and render again")

	return cmd
}

// runSolve loads, solves and renders input, then writes the artifacts.
func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, so solveOpts) error {
	logger := loggerFromContext(ctx)

	res, err := c.solve(ctx, input, opts, so.noCache)
	if err != nil {
		return err
	}

	if so.output == "-" {
		for _, data := range res.Artifacts {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
		}
		return strictError(so.strict, res.Errors)
	}

	paths, err := writeArtifacts(res.Artifacts, basePath(so.output, input))
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Debugf("Generated %s", p)
	}

	printSuccess("Solved %s at %s", input, formatSize(res.Viewport))
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.NodeCount, res.Stats.ErrorCount, res.CacheInfo.RenderHit)
	printLayoutErrors(res.Errors)
	for _, id := range res.Missing {
		printWarning("Surface %q matches no node", id)
	}
	printNewline()
	printNextStep("Inspect", appName+" inspect "+input)

	return strictError(so.strict, res.Errors)
}

// solve runs the pipeline on input behind a spinner.
func (c *CLI) solve(ctx context.Context, input string, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	doc, err := runner.Load(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}

	opts.Fallback = c.defaultViewport()
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Solving layout...")
	spinner.Start()

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return nil, fmt.Errorf("solve %s: %w", input, err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Solved %d nodes", res.Stats.NodeCount))
	return res, nil
}

// writeArtifacts writes each artifact to base plus its format's extension,
// in the order of pipeline.Formats, and returns the written paths.
func writeArtifacts(artifacts map[string][]byte, base string) ([]string, error) {
	var paths []string
	for _, format := range pipeline.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + pipeline.Extension(format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func strictError(strict bool, errs []layout.LayoutError) error {
	if !strict || len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("layout has %d error(s)", len(errs))
}

func formatSize(s layout.Size) string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
