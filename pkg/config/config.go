// Package config loads nodegraph settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/nodegraph/config.toml
// (~/.config/nodegraph/config.toml). A missing default file is not an
// error; every setting has a default. Command-line flags override file
// values, and a few environment variables override both for container
// deployments:
//
//	NODEGRAPH_STORAGE     storage backend
//	NODEGRAPH_REDIS_ADDR  redis address
//	NODEGRAPH_MONGO_URI   mongo connection string
//	NODEGRAPH_ADDR        server listen address
//
// Example file:
//
//	catalog = "~/presets.toml"
//
//	[storage]
//	backend = "redis"
//	namespace = "team-a:"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
//	[editor]
//	zoom_step = 0.1
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/storage"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

const appName = "nodegraph"

// DefaultAddr is the default server listen address.
const DefaultAddr = ":8080"

// Config is the complete configuration.
type Config struct {
	// Catalog is the preset catalog file. Empty means the built-in presets.
	Catalog string        `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Editor  EditorConfig  `toml:"editor"`
}

// StorageConfig selects where graphs are saved.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	Namespace     string `toml:"namespace"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// EditorConfig tunes editor behavior.
type EditorConfig struct {
	ZoomStep float64 `toml:"zoom_step"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: storage.BackendFile},
		Server:  ServerConfig{Addr: DefaultAddr},
		Editor:  EditorConfig{ZoomStep: viewport.ZoomStep},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path on top of the defaults. An empty path
// reads the default location, where a missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, ngerrors.Wrap(ngerrors.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, ngerrors.Wrap(ngerrors.ErrCodeInvalidConfig, err, "read config")
	default:
		if err := cfg.decode(string(data)); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults. Unknown keys are errors.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(text); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(text string) error {
	md, err := toml.Decode(text, c)
	if err != nil {
		return ngerrors.Wrap(ngerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ngerrors.New(ngerrors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NODEGRAPH_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("NODEGRAPH_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("NODEGRAPH_MONGO_URI"); v != "" {
		c.Storage.MongoURI = v
	}
	if v := os.Getenv("NODEGRAPH_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", storage.BackendMemory, storage.BackendFile, storage.BackendRedis, storage.BackendMongo:
	default:
		return ngerrors.New(ngerrors.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}
	if c.Editor.ZoomStep < 0 || c.Editor.ZoomStep >= 1 {
		return ngerrors.New(ngerrors.ErrCodeInvalidConfig, "zoom_step must be in [0, 1), got %v", c.Editor.ZoomStep)
	}
	return nil
}

// StoreConfig converts the storage section for storage.Open.
func (c *Config) StoreConfig() storage.Config {
	return storage.Config{
		Backend: c.Storage.Backend,
		Dir:     expandHome(c.Storage.Dir),
		Redis: storage.RedisConfig{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
		},
		Mongo: storage.MongoConfig{
			URI:      c.Storage.MongoURI,
			Database: c.Storage.MongoDatabase,
		},
	}
}

// Keyer returns the graph keyer for the configured namespace.
func (c *Config) Keyer() storage.Keyer {
	if c.Storage.Namespace == "" {
		return storage.NewDefaultKeyer()
	}
	return storage.NewScopedKeyer(storage.NewDefaultKeyer(), c.Storage.Namespace)
}

// CatalogPath returns the catalog file with ~ expanded.
func (c *Config) CatalogPath() string { return expandHome(c.Catalog) }

// LoadCatalog loads the configured catalog, or the built-in presets when
// none is configured.
func (c *Config) LoadCatalog() (*preset.Catalog, error) {
	if c.Catalog == "" {
		return preset.Default(), nil
	}
	return preset.Load(c.CatalogPath())
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
