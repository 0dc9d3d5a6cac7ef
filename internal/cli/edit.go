package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/editor"
)

func (c *CLI) editCommand() *cobra.Command {
	var saveOnExit bool

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Edit a stored graph in the terminal",
		Long: `Edit opens a stored graph, or a new one, in an interactive terminal editor.
Nodes are listed in a table; sockets are connected by picking an output and
then a compatible input, the same two clicks a pointer would make.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeGraphNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cfg)
			if err != nil {
				return err
			}
			graphs, err := c.openGraphs(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeGraphs(graphs, c.Logger)

			// The TUI owns the terminal, so the editor does not log.
			act := newActivity()
			ed, err := editor.New(catalog,
				editor.WithRenderer(act),
				editor.WithLogger(log.New(io.Discard)),
				editor.WithZoomStep(cfg.Editor.ZoomStep),
			)
			if err != nil {
				return err
			}
			exists, err := graphs.Exists(ctx, name)
			if err != nil {
				return err
			}
			if exists {
				rep, err := ed.Load(ctx, graphs, name)
				if err != nil {
					return err
				}
				if !rep.Clean() {
					c.Logger.Warn("some entries did not resolve", "report", rep.String())
				}
			}

			model := NewEditModel(ctx, ed, act, graphs, name)
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			m, ok := final.(EditModel)
			if !ok || !m.dirty {
				return nil
			}
			if !saveOnExit {
				printWarning("Unsaved changes to %s discarded", name)
				printNextStep("Save on quit next time", "nodegraph edit --save "+name)
				return nil
			}
			if err := ed.Save(ctx, graphs, name); err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveOnExit, "save", false, "save changes when the editor quits")
	return cmd
}
