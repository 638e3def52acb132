// Package config provides configuration loading and structs for the shirushi CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the tool.
type Config struct {
	Debug       bool        `yaml:"debug"`
	Root        string      `yaml:"root"`
	MappingPath string      `yaml:"mapping_path"`
	Extensions  []string    `yaml:"extensions"`
	IgnoreDirs  []string    `yaml:"ignore_dirs"`
	IDLength    int         `yaml:"id_length"`
	Watch       WatchConfig `yaml:"watch"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Default returns a config with all defaults applied and the root anchored at
// the current directory. Used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		cfg.Root = abs
	}
	return cfg
}

// Load reads and parses the config file at path, applies defaults, and
// resolves a relative root against the config file's directory. Returns an
// error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(configDir, cfg.Root)
	}

	return &cfg, nil
}

// MappingFile returns the absolute path of the mapping store file. A relative
// mapping_path is resolved against the root.
func (c *Config) MappingFile() string {
	if filepath.IsAbs(c.MappingPath) {
		return c.MappingPath
	}
	return filepath.Join(c.Root, c.MappingPath)
}
