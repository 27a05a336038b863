// Package config provides YAML-based configuration loading for track.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zulandar/track/internal/editor"
	"github.com/zulandar/track/internal/models"
)

// DefaultPath is the config file looked up in the repository root.
const DefaultPath = ".track.yaml"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// minTreeWidth leaves room for the connector, id and glyph.
const minTreeWidth = 20

// Config is the top-level track configuration, loaded from .track.yaml.
type Config struct {
	Storage         StorageConfig `yaml:"storage"`
	Editor          string        `yaml:"editor"`
	ScratchFile     string        `yaml:"scratch_file"`
	DefaultPriority int           `yaml:"default_priority"`
	Tree            TreeConfig    `yaml:"tree"`
	Color           string        `yaml:"color"`
}

// StorageConfig selects where issues are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is relative to the repository root unless absolute.
	Path string `yaml:"path"`
}

// TreeConfig tunes the tree view.
type TreeConfig struct {
	Width int `yaml:"width"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{DefaultPriority: models.DefaultPriority}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := Config{DefaultPriority: models.DefaultPriority}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath(c.Storage.Backend)
	}
	if c.ScratchFile == "" {
		c.ScratchFile = editor.DefaultScratchFile
	}
	if c.Tree.Width == 0 {
		c.Tree.Width = 100
	}
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// DefaultStoragePath is the store location used for backend when the config
// does not name one.
func DefaultStoragePath(backend string) string {
	if backend == BackendSQLite {
		return ".issues.db"
	}
	return ".issues"
}

// validate checks that all fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if !slices.Contains([]string{BackendFile, BackendSQLite}, c.Storage.Backend) {
		errs = append(errs, fmt.Sprintf("storage.backend %q must be %q or %q", c.Storage.Backend, BackendFile, BackendSQLite))
	}
	if c.DefaultPriority < models.MinPriority || c.DefaultPriority > models.MaxPriority {
		errs = append(errs, fmt.Sprintf("default_priority %d must be between %d and %d",
			c.DefaultPriority, models.MinPriority, models.MaxPriority))
	}
	if c.Tree.Width < minTreeWidth {
		errs = append(errs, fmt.Sprintf("tree.width %d must be at least %d", c.Tree.Width, minTreeWidth))
	}
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Color) {
		errs = append(errs, fmt.Sprintf("color %q must be one of auto, always, never", c.Color))
	}
	if strings.ContainsAny(c.ScratchFile, `/\`) {
		errs = append(errs, "scratch_file must be a bare file name")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
