package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/config"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/snapshot"
)

// snapshotSource says where a command reads its graph from.
type snapshotSource struct {
	stored bool
}

func (s *snapshotSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&s.stored, "stored", "s", false, "treat the argument as a stored graph name instead of a file")
}

// read loads the snapshot named by arg: a file, "-" for stdin, or a stored
// graph name when --stored is set.
func (s *snapshotSource) read(ctx context.Context, c *CLI, cfg *config.Config, arg string) (*snapshot.Snapshot, error) {
	if !s.stored {
		if arg == "-" {
			return snapshot.Read(os.Stdin)
		}
		return snapshot.ReadFile(arg)
	}
	graphs, err := c.openGraphs(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeGraphs(graphs, c.Logger)
	data, err := graphs.Load(ctx, arg)
	if err != nil {
		return nil, err
	}
	return snapshot.Unmarshal(data)
}

// restore reads and restores a snapshot against the configured catalog.
func (s *snapshotSource) restore(ctx context.Context, c *CLI, arg string) (*snapshot.Result, *preset.Catalog, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := c.loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.read(ctx, c, cfg, arg)
	if err != nil {
		return nil, nil, err
	}
	res, err := snapshot.Restore(snap, catalog)
	if err != nil {
		return nil, nil, err
	}
	return res, catalog, nil
}

func (c *CLI) inspectCommand() *cobra.Command {
	var src snapshotSource

	cmd := &cobra.Command{
		Use:   "inspect <file|name>",
		Short: "Summarize a saved graph",
		Long: `Inspect restores a graph snapshot against the preset catalog and lists its
nodes and edges. Nodes whose preset is missing and edges whose sockets no
longer resolve are reported as skipped.`,
		Example: `  nodegraph inspect graph.json
  nodegraph inspect --stored demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := src.restore(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			printInspect(args[0], res)
			return nil
		},
	}

	src.addFlags(cmd)
	return cmd
}

func printInspect(name string, res *snapshot.Result) {
	g := res.Graph
	rep := res.Report
	skipped := len(rep.SkippedNodes) + len(rep.SkippedEdges)

	printSuccess("%s", name)
	printStats(g.NodeCount(), g.EdgeCount(), skipped)
	st := res.Viewport.State()
	printKeyValue("viewport", fmt.Sprintf("offset (%.0f, %.0f) scale %.2f", st.OffsetX, st.OffsetY, st.Scale))

	if g.NodeCount() > 0 {
		fmt.Println(nodeTable(g))
	}
	for _, e := range g.Edges() {
		printDetail("%s %s %s", e.From, iconArrow, e.To)
	}
	for _, s := range rep.SkippedNodes {
		printWarning("skipped node %s", s)
	}
	for _, s := range rep.SkippedEdges {
		printWarning("skipped edge %s", s)
	}
}

// nodeTable renders one row per node with its edge counts.
func nodeTable(g *graph.Graph) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Preset", "Position", "In", "Out", "").
		Rows(nodeRows(g)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleHighlight
			case col == 5:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

func nodeRows(g *graph.Graph) [][]string {
	nodes := g.Nodes()
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		in, out := 0, 0
		for _, e := range g.EdgesTouching(n.ID) {
			if e.To.NodeID == n.ID {
				in++
			} else {
				out++
			}
		}
		state := ""
		if n.Collapsed {
			state = "collapsed"
		}
		rows = append(rows, []string{
			n.ID,
			n.Preset,
			fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y),
			fmt.Sprint(in),
			fmt.Sprint(out),
			state,
		})
	}
	return rows
}
