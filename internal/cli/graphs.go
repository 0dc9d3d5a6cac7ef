package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/editor"
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/snapshot"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

func (c *CLI) graphsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graphs",
		Aliases: []string{"g"},
		Short:   "Manage stored graphs",
		Long:    `List, import, export and delete graphs in the configured storage backend.`,
	}

	cmd.AddCommand(c.graphsListCommand())
	cmd.AddCommand(c.graphsImportCommand())
	cmd.AddCommand(c.graphsExportCommand())
	cmd.AddCommand(c.graphsRemoveCommand())
	return cmd
}

// withGraphs runs fn against the configured store and closes it afterwards.
func (c *CLI) withGraphs(cmd *cobra.Command, fn func(*storage.Graphs) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	graphs, err := c.openGraphs(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeGraphs(graphs, c.Logger)
	return fn(graphs)
}

func (c *CLI) graphsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored graphs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraphs(cmd, func(graphs *storage.Graphs) error {
				ctx := cmd.Context()
				names, err := graphs.List(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					printInfo("No graphs stored in %s", graphs.Backend())
					printNextStep("Import one", "nodegraph graphs import graph.json")
					return nil
				}
				fmt.Println(StyleTitle.Render("Graphs") + " " + StyleDim.Render(graphs.Backend()))
				for _, name := range names {
					summary := StyleError.Render("unreadable")
					if data, err := graphs.Load(ctx, name); err == nil {
						if s, err := snapshot.Unmarshal(data); err == nil {
							summary = StyleDim.Render(plural(len(s.Nodes), "node") + " · " + plural(len(s.Edges), "edge"))
						}
					}
					printKeyValue(name, summary)
				}
				return nil
			})
		},
	}
}

func (c *CLI) graphsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> [name]",
		Short: "Store a snapshot file under a name",
		Long: `Import restores a snapshot file against the preset catalog and stores the
result. The name defaults to the file name without extension. Entries that
do not resolve are dropped and reported.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if len(args) == 2 {
				name = args[1]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cfg)
			if err != nil {
				return err
			}
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}

			ed, err := editor.New(catalog, editor.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			rep, err := ed.Restore(snap)
			if err != nil {
				return err
			}
			return c.withGraphs(cmd, func(graphs *storage.Graphs) error {
				if err := ed.Save(cmd.Context(), graphs, name); err != nil {
					return err
				}
				printSuccess("Imported %s", StyleHighlight.Render(name))
				printStats(ed.Graph().NodeCount(), ed.Graph().EdgeCount(),
					len(rep.SkippedNodes)+len(rep.SkippedEdges))
				for _, s := range rep.SkippedNodes {
					printWarning("skipped node %s", s)
				}
				for _, s := range rep.SkippedEdges {
					printWarning("skipped edge %s", s)
				}
				return nil
			})
		},
	}
}

func (c *CLI) graphsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "export <name>",
		Short:             "Write a stored graph to a snapshot file",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeGraphNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraphs(cmd, func(graphs *storage.Graphs) error {
				data, err := graphs.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = args[0] + ".json"
				}
				if path == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printSuccess("Exported %s", StyleHighlight.Render(args[0]))
				printFile(path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default <name>.json)")
	return cmd
}

func (c *CLI) graphsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <name>...",
		Aliases:           []string{"delete"},
		Short:             "Delete stored graphs",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeGraphNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraphs(cmd, func(graphs *storage.Graphs) error {
				ctx := cmd.Context()
				for _, name := range args {
					ok, err := graphs.Exists(ctx, name)
					if err != nil {
						return err
					}
					if !ok {
						return ngerrors.New(ngerrors.ErrCodeGraphNotFound, "graph %q not found", name)
					}
					if err := graphs.Delete(ctx, name); err != nil {
						return err
					}
					printSuccess("Deleted %s", name)
				}
				return nil
			})
		},
	}
}
