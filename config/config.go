// Package config holds the typed configuration merged from CLI flags and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the tool's full configuration. Zero-value fields are filled in
// by DefaultConfig; a loaded YAML file only needs to set what it overrides.
type Config struct {
	Excludes       []string `yaml:"excludes"`
	Extensions     []string `yaml:"extensions"`
	SystemIncludes []string `yaml:"systemIncludes"`
	Workers        int      `yaml:"workers"`
	ReportDir      string   `yaml:"reportDir"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Excludes:       nil, // nil defers to fsindex.DefaultExcludes
		Extensions:     nil, // nil defers to fsindex.DefaultExtensions
		SystemIncludes: nil, // nil defers to codedep.DefaultSystemIncludes
		Workers:        runtime.NumCPU(),
		ReportDir:      "reports",
	}
}

// Load reads and merges a YAML config file over DefaultConfig. Fields absent
// from the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}
