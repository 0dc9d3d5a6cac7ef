package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/render/dot"
)

// Output formats of the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type renderOpts struct {
	src    snapshotSource
	output string
	format string
	types  bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file|name>",
		Short: "Render a graph as Graphviz DOT or SVG",
		Long: `Render converts a graph snapshot into a Graphviz record diagram with one
port per socket. SVG output is rendered in-process; no Graphviz install is
needed.`,
		Example: `  nodegraph render graph.json
  nodegraph render graph.json -o graph.dot
  nodegraph render --stored demo --types -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.src.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot or svg (default from --output, else svg)")
	cmd.Flags().BoolVar(&opts.types, "types", false, "label sockets with their types")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, arg string, opts renderOpts) error {
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	res, _, err := opts.src.restore(ctx, c, arg)
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	src := dot.ToDOT(res.Graph, dot.Options{Types: opts.types, Title: title})

	out := []byte(src)
	if format == formatSVG {
		spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		out, err = dot.RenderSVGContext(ctx, src)
		if err != nil {
			spinner.StopWithError("SVG rendering failed")
			return err
		}
		spinner.Stop()
	}

	path := opts.output
	if path == "" {
		path = title + "." + format
	}
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	prog.done("Rendered " + arg)
	printFile(path)
	if skipped := len(res.Report.SkippedNodes) + len(res.Report.SkippedEdges); skipped > 0 {
		printWarning("%d entries did not resolve against the catalog", skipped)
		printNextStep("See which", "nodegraph inspect "+arg)
	}
	return nil
}

// resolveFormat picks the output format from the flag or the output file
// extension.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".dot", ".gv":
			format = formatDOT
		default:
			format = formatSVG
		}
	}
	switch format {
	case formatDOT, formatSVG:
		return format, nil
	}
	return "", ngerrors.New(ngerrors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", format)
}
