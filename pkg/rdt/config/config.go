// Package config holds the lab's ambient application configuration: logging,
// default output location, and fuzz-run defaults (spec's ambient stack,
// distinct from a scenario's own seed/channel/action fields). Grounded on
// the teacher's pkg/config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, loaded from the path
// given to Load or, by default, from rdt-sim.yaml in the working directory.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Run     RunConfig     `yaml:"run"`
	Fuzz    FuzzConfig    `yaml:"fuzz"`
}

// LoggingConfig controls the reporting.Logger the CLI constructs.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RunConfig holds report output settings. Validate requires OutputDir to be
// set; the run subcommand prints its report to stdout in the format chosen
// by its --format flag and does not read either field.
type RunConfig struct {
	OutputDir    string `yaml:"output_dir"`
	ReportFormat string `yaml:"report_format"`
}

// FuzzConfig provides a fuzz sweep's defaults: the round count, the base
// seed, and the bounds each round's sampled ChannelConfig is drawn from. The
// sampled config replaces the swept link's config whatever the base
// scenario sets for it.
type FuzzConfig struct {
	Rounds           int    `yaml:"rounds"`
	Seed             uint64 `yaml:"seed"`
	MinLatencyMs     uint32 `yaml:"min_latency_ms"`
	MaxLatencyMs     uint32 `yaml:"max_latency_ms"`
	MaxLossProb      float64 `yaml:"max_loss_prob"`
	MaxCorruptProb   float64 `yaml:"max_corrupt_prob"`
	MaxReorderProb   float64 `yaml:"max_reorder_prob"`
	MaxDuplicateProb float64 `yaml:"max_duplicate_prob"`
}

// DefaultConfig returns the configuration used when no config file is
// present.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Run: RunConfig{
			OutputDir:    "./reports",
			ReportFormat: "json",
		},
		Fuzz: FuzzConfig{
			Rounds:           100,
			Seed:             1,
			MinLatencyMs:     1,
			MaxLatencyMs:     500,
			MaxLossProb:      0.3,
			MaxCorruptProb:   0.1,
			MaxReorderProb:   0.2,
			MaxDuplicateProb: 0.1,
		},
	}
}

// Load reads path as YAML over top of DefaultConfig, or returns the default
// unmodified if path does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = "rdt-sim.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is invalid", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is invalid", c.Logging.Format)
	}
	if c.Run.OutputDir == "" {
		return fmt.Errorf("run.output_dir is required")
	}
	if c.Fuzz.Rounds < 1 {
		return fmt.Errorf("fuzz.rounds must be at least 1")
	}
	if c.Fuzz.MinLatencyMs > c.Fuzz.MaxLatencyMs {
		return fmt.Errorf("fuzz.min_latency_ms exceeds fuzz.max_latency_ms")
	}
	return nil
}
