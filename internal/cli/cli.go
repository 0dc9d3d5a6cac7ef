// Package cli implements the nodegraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/buildinfo"
	"github.com/matzehuels/nodegraph/pkg/config"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "nodegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Set by persistent flags.
	configPath  string
	catalogPath string
	backend     string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nodegraph edits typed node graphs",
		Long:         `Nodegraph is a node-graph editor core: typed nodes with input and output sockets, connected by type-checked edges on a pannable, zoomable canvas. The CLI inspects, renders and stores graphs, serves live editing sessions, and offers a terminal editor.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodegraph/config.toml)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "preset catalog file (toml, yaml or json)")
	root.PersistentFlags().StringVar(&c.backend, "storage", "", "storage backend: memory, file, redis or mongo")

	// Register all subcommands
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared setup
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.catalogPath != "" {
		cfg.Catalog = c.catalogPath
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	c.Logger.Debug("config loaded", "storage", cfg.Storage.Backend, "catalog", cfg.Catalog)
	return cfg, nil
}

// loadCatalog returns the configured preset catalog.
func (c *CLI) loadCatalog(cfg *config.Config) (*preset.Catalog, error) {
	catalog, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("catalog loaded", "presets", catalog.Len(), "source", catalog.Source())
	return catalog, nil
}

// openGraphs opens the configured store. The caller closes the store.
func (c *CLI) openGraphs(ctx context.Context, cfg *config.Config) (*storage.Graphs, error) {
	store, err := storage.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, err
	}
	graphs := storage.NewGraphs(store, cfg.Keyer())
	c.Logger.Debug("storage opened", "backend", graphs.Backend())
	return graphs, nil
}

func closeGraphs(graphs *storage.Graphs, logger *log.Logger) {
	if err := graphs.Store().Close(); err != nil {
		logger.Warn("close storage", "err", err)
	}
}
