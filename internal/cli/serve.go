package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored graphs and live editing sessions over HTTP",
		Long: `Serve starts the HTTP host. Stored graphs are available as JSON, DOT and
SVG; each websocket connection to /api/graphs/{name}/live gets its own
editor. Prometheus metrics are exposed at /metrics. When a catalog file is
configured it is reloaded on change; open sessions keep their catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if len(origins) > 0 {
				cfg.Server.AllowedOrigins = origins
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

			srv, err := server.New(server.Config{
				Addr:           cfg.Server.Addr,
				Catalog:        catalog,
				CatalogPath:    cfg.CatalogPath(),
				Graphs:         graphs,
				Logger:         c.Logger,
				ZoomStep:       cfg.Editor.ZoomStep,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			})
			if err != nil {
				return err
			}
			srv.Metrics().Install()

			printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			printKeyValue("storage", graphs.Backend())
			printKeyValue("presets", plural(catalog.Len(), "preset"))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "origins allowed to open live sessions (* for any)")
	return cmd
}
