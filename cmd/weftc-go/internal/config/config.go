// Package config loads the optional weftc.yaml that sits next to the block
// programs being compiled.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the optional weftc.yaml configuration.
type Config struct {
	// Output is the directory generated modules are written to. Empty means
	// alongside each source file.
	Output string `yaml:"output,omitempty"`

	// Helpers is the default helper emission mode (inline or import) for
	// programs that do not choose one themselves.
	Helpers string `yaml:"helpers,omitempty"`

	// Import is the module specifier helpers are imported from in import
	// mode.
	Import string `yaml:"import,omitempty"`

	// Level sets the log level (debug, info, warn, error). The --verbose
	// flag takes precedence.
	Level string `yaml:"level,omitempty"`
}

// LoadOptional reads weftc.yaml from dir if present. A missing file yields
// the zero config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "weftc.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read weftc.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse weftc.yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Helpers {
	case "", "inline", "import":
	default:
		return fmt.Errorf("weftc.yaml: helpers must be inline or import, got %q", c.Helpers)
	}
	if c.Helpers == "import" && c.Import == "" {
		return errors.New("weftc.yaml: import is required when helpers are imported")
	}
	return nil
}
