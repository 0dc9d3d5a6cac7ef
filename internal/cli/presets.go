package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/preset"
)

func (c *CLI) presetsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the presets of the configured catalog",
		Long: `List the node presets available to new nodes.

The catalog comes from --catalog, the config file, or the built-in presets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cfg)
			if err != nil {
				return err
			}
			if asJSON {
				data, err := preset.Marshal(catalog)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			source := catalog.Source()
			if source == "" {
				source = "built-in"
			}
			fmt.Println(StyleTitle.Render("Presets") + " " + StyleDim.Render(source))
			fmt.Println(presetTable(catalog))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// presetTable renders the catalog as a table with one row per preset.
func presetTable(catalog *preset.Catalog) string {
	presets := catalog.Presets()
	rows := make([][]string, 0, len(presets))
	for i, p := range presets {
		rows = append(rows, presetRow(i, p))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Preset", "Color", "Inputs", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleHighlight
			case col == 2 && row < len(presets) && presets[row].Color != "":
				return lipgloss.NewStyle().Foreground(lipgloss.Color(presets[row].Color))
			}
			return StyleValue
		}).
		Render()
}

func presetRow(index int, p *preset.Preset) []string {
	color := p.Color
	if color == "" {
		color = "-"
	}
	return []string{
		fmt.Sprint(index),
		p.Name,
		color,
		socketList(p.Inputs()),
		socketList(p.Outputs()),
	}
}

// socketList formats declarations as "name:type", marking bottom sockets.
func socketList(decls []preset.SocketDecl) string {
	if len(decls) == 0 {
		return "-"
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Name + ":" + string(d.Type)
		if d.IsBottom() {
			parts[i] += " (bottom)"
		}
	}
	return strings.Join(parts, ", ")
}
