// Package config handles run configuration: the YAML config file, the
// built-in report profiles, and the environment keys for the external
// backends.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/embo-press/matchpub/internal/export"
	"github.com/embo-press/matchpub/internal/match"
	"github.com/embo-press/matchpub/internal/search"
)

// Config is the full run configuration. Zero values fall back to the
// documented defaults.
type Config struct {
	// Report selects a built-in profile name or the path to a custom
	// report spec YAML file.
	Report string `yaml:"report,omitempty"`

	PreprintPolicy string `yaml:"preprint_policy,omitempty"`

	TitleThreshold  float64 `yaml:"title_threshold,omitempty"`
	AuthorThreshold float64 `yaml:"author_threshold,omitempty"`

	// Citations toggles citation-count enrichment of matched articles.
	Citations bool `yaml:"citations,omitempty"`

	// Database is the path of the SQLite run store ("" disables
	// persistence).
	Database string `yaml:"database,omitempty"`

	Output OutputConfig `yaml:"output,omitempty"`
}

// OutputConfig controls where and how result tables are written.
type OutputConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // xlsx or csv

	// Columns overrides the default column layout when set.
	Columns []export.Column `yaml:"columns,omitempty"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Report:          "ejp-editor-track",
		PreprintPolicy:  string(search.ExcludePreprints),
		TitleThreshold:  match.DefaultTitleThreshold,
		AuthorThreshold: match.DefaultAuthorThreshold,
		Output: OutputConfig{
			Dir:    ".",
			Format: "xlsx",
		},
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints.
func (c Config) Validate() error {
	if !search.PreprintPolicy(c.PreprintPolicy).Valid() {
		return fmt.Errorf("invalid preprint_policy %q", c.PreprintPolicy)
	}
	if c.TitleThreshold < 0 || c.TitleThreshold > 1 {
		return fmt.Errorf("title_threshold %v outside [0,1]", c.TitleThreshold)
	}
	if c.AuthorThreshold < 0 || c.AuthorThreshold > 1 {
		return fmt.Errorf("author_threshold %v outside [0,1]", c.AuthorThreshold)
	}
	switch c.Output.Format {
	case "", "xlsx", "csv":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// Columns returns the configured export column layout, defaulting by
// preprint policy.
func (c Config) Columns() []export.Column {
	if len(c.Output.Columns) > 0 {
		return c.Output.Columns
	}
	if search.PreprintPolicy(c.PreprintPolicy) != search.ExcludePreprints {
		return export.PreprintColumns()
	}
	return export.DefaultColumns()
}
