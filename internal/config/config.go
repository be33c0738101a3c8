// Package config loads the optional margay.yaml file that supplies
// defaults for CLI flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/margay/margay/internal/errs"
)

// DefaultPath is tried when no --config flag is given.
const DefaultPath = "margay.yaml"

// Config mirrors the YAML file. Zero values mean "use the built-in
// default"; the CLI resolves precedence flag > file > default.
type Config struct {
	// Engine selects the renderer: "margay" (default) or "goldmark".
	Engine string `yaml:"engine"`

	// Plugins overrides the default plugin set when non-nil.
	Plugins []string `yaml:"plugins"`

	Highlight bool `yaml:"highlight"`

	MaxNestingDepth   int `yaml:"max_nesting_depth"`
	MaxDelimiterStack int `yaml:"max_delimiter_stack"`

	// Build settings.
	Source    string `yaml:"source"`
	Output    string `yaml:"output"`
	CachePath string `yaml:"cache_path"`
	NATSURL   string `yaml:"nats_url"`

	// Serve settings.
	Addr         string   `yaml:"addr"`
	RebuildEvery Duration `yaml:"rebuild_every"`
}

// Duration decodes "30s" style YAML values into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads path, or DefaultPath when path is empty. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, errs.Wrap(err, errs.CategoryConfig, "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(err, errs.CategoryConfig, "parse config file")
	}
	return &cfg, nil
}
