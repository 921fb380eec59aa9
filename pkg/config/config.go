// Package config loads build-time tuning parameters for a FITing-Tree
// (the error budget and, for the buffered variant, the per-segment buffer
// capacity) from an optional YAML file, falling back to sane defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a FITing-Tree tuning file.
type Config struct {
	Index IndexConfig `yaml:"index"`
}

// IndexConfig mirrors the construction parameters of fiting.Build and
// fiting.BuildBuffered: Error is the ε error budget shared by both variants,
// BufferSize is only consulted by the buffered variant.
type IndexConfig struct {
	Error      uint64 `yaml:"error"`
	BufferSize uint64 `yaml:"buffer_size"`
}

// Load reads configPath, or (if configPath is empty) the first of a small
// set of default search paths, and returns the resulting Config. A missing
// file is only an error when configPath was given explicitly; with an empty
// configPath, Load falls back to defaults silently.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Index: IndexConfig{
			Error:      64,
			BufferSize: 16,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/fiting.yaml", "fiting.yaml"} {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return cfg, err
			}
			applyDefaults(cfg)
			return cfg, nil
		}
		applyDefaults(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Index.Error == 0 {
		cfg.Index.Error = 64
	}
	if cfg.Index.BufferSize == 0 {
		cfg.Index.BufferSize = 16
	}
}

// Validate checks the construction invariants shared by both FitingTree
// variants: a positive error budget, and (for the buffered variant) a
// buffer strictly smaller than the error budget.
func (c IndexConfig) Validate() error {
	if c.Error == 0 {
		return fmt.Errorf("config: index.error must be > 0")
	}
	if c.BufferSize >= c.Error {
		return fmt.Errorf("config: index.buffer_size (%d) must be < index.error (%d)", c.BufferSize, c.Error)
	}
	return nil
}
