// Package config loads beanwalk's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	beanerrors "github.com/beanwalk/beanwalk/pkgs/errors"
)

// Checker configures the external reference engine invocation.
type Checker struct {
	// Command is the bean-check style executable.
	Command string `yaml:"command"`
	// Args precede the root file argument.
	Args []string `yaml:"args"`
}

// Config holds the application configuration.
type Config struct {
	// Journal is the root journal file to load.
	Journal string `yaml:"journal"`
	// Checker configures the reference engine subprocess.
	Checker Checker `yaml:"checker"`
	// TreeWalker selects the tree-walker pipeline over the reference
	// engine's output.
	TreeWalker bool `yaml:"tree_walker"`
	// Verify reconciles tree-walker output against the reference engine
	// and reports mismatches as warnings.
	Verify bool `yaml:"verify"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Checker:  Checker{Command: "bean-check"},
		LogLevel: "info",
	}
}

// Load reads and validates a configuration file. Fields not present keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, beanerrors.NewConfigError(path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, beanerrors.NewConfigError(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that have a closed domain.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return beanerrors.New(beanerrors.ErrConfigValidate,
			fmt.Sprintf("invalid log_level %q", c.LogLevel))
	}
	if c.Verify && !c.TreeWalker {
		return beanerrors.New(beanerrors.ErrConfigValidate,
			"verify requires tree_walker to be enabled")
	}
	return nil
}
