package config

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/ngfx/errors"
	"github.com/wippyai/ngfx/handle"
)

// YAMLConfig is the on-disk form of Config. Absent fields keep their
// defaults.
type YAMLConfig struct {
	LogLevel      *string           `yaml:"log_level,omitempty"`
	Workers       *int              `yaml:"workers,omitempty"`
	Iterations    *int              `yaml:"iterations,omitempty"`
	Objects       *int              `yaml:"objects,omitempty"`
	FenceInterval *string           `yaml:"fence_interval,omitempty"`
	Limits        map[string]uint32 `yaml:"limits,omitempty"`
}

// LoadFromFile reads and parses a YAML configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "reading config file")
	}
	return Parse(data)
}

// Parse decodes a YAML document into a Config.
func Parse(data []byte) (*Config, error) {
	var yc YAMLConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parsing YAML")
	}
	return convertYAMLConfig(yc)
}

func convertYAMLConfig(yc YAMLConfig) (*Config, error) {
	cfg := Default()

	if yc.LogLevel != nil {
		level, err := zapcore.ParseLevel(*yc.LogLevel)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid log level")
		}
		cfg.LogLevel = level
	}

	if yc.Workers != nil {
		cfg.Workers = *yc.Workers
	}
	if yc.Iterations != nil {
		cfg.Iterations = *yc.Iterations
	}
	if yc.Objects != nil {
		cfg.Objects = *yc.Objects
	}

	if yc.FenceInterval != nil {
		d, err := time.ParseDuration(*yc.FenceInterval)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid fence interval")
		}
		cfg.FenceInterval = d
	}

	for name, limit := range yc.Limits {
		t, err := handle.ParseType(name)
		if err != nil {
			return nil, err
		}
		cfg.Limits[t] = limit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field is usable for a run.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return errors.InvalidInput(errors.PhaseConfig, "workers must be at least 1")
	case c.Iterations < 0:
		return errors.InvalidInput(errors.PhaseConfig, "iterations must not be negative")
	case c.Objects < 1:
		return errors.InvalidInput(errors.PhaseConfig, "objects must be at least 1")
	case c.FenceInterval <= 0:
		return errors.InvalidInput(errors.PhaseConfig, "fence interval must be positive")
	}
	for t := range c.Limits {
		if !t.Valid() {
			return errors.InvalidType(errors.PhaseConfig, uint8(t), uint8(handle.TypeMax-1))
		}
	}
	return nil
}
