// Package config holds the cdfgen tool configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cdfgen configuration.
type Config struct {
	// Source is the path to dav1d's cdf.c. There is deliberately no
	// default: the old behavior of falling back to a developer-machine
	// checkout path does not travel.
	Source string `yaml:"source"`

	// Output is the generated Go file path.
	Output string `yaml:"output"`

	// Package is the package clause of the generated file.
	Package string `yaml:"package"`

	// Watch configures --watch regeneration.
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig configures the input-file watcher.
type WatchConfig struct {
	// Debounce is how long the input must be quiet before regenerating.
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:  "internal/msac/cdf_tables.go",
		Package: "msac",
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults (plus environment overrides) apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if src := os.Getenv("WAV1C_CDF_SOURCE"); src != "" {
		c.Source = src
	}
	if out := os.Getenv("WAV1C_CDF_OUTPUT"); out != "" {
		c.Output = out
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("no cdf.c source configured (pass a path, set source in cdfgen.yaml, or set WAV1C_CDF_SOURCE)")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.Package == "" {
		return fmt.Errorf("output package must not be empty")
	}
	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
