package cli

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional webdex.yaml file: a place to pin the flags
// above that don't change between runs (corpus path, output
// directory, batch size) without retyping them on every invocation.
// Flags and environment variables always take precedence over it.
type Config struct {
	Corpus         string `yaml:"corpus"`
	OutDir         string `yaml:"out"`
	WorkDir        string `yaml:"work"`
	BatchSize      int    `yaml:"batch"`
	RetainPartials bool   `yaml:"retain_partials"`

	IndexDir         string `yaml:"index"`
	Dedup            string `yaml:"dedup"`
	SimHashThreshold int    `yaml:"simhash_threshold"`
	Top              int    `yaml:"top"`
}

// loadConfig reads a webdex.yaml file. A missing path is not an
// error: callers fall back to flag/env defaults.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
