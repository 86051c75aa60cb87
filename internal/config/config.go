// Package config loads .harness.yaml and merges it with defaults and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the base directory
const FileName = ".harness.yaml"

// Config holds all harness configuration
type Config struct {
	// SkillsDir is the skills root, relative to the base directory
	SkillsDir string `yaml:"skills_dir"`

	// CriteriaFile is the criteria document, relative to a skill directory
	CriteriaFile string `yaml:"criteria_file"`

	// ScenariosDir holds <skill>/scenarios.yaml, relative to the base directory
	ScenariosDir string `yaml:"scenarios_dir"`

	Provider ProviderConfig `yaml:"provider"`
	Ralph    RalphConfig    `yaml:"ralph"`

	// Parallelism is the number of scenarios run at once
	Parallelism int `yaml:"parallelism"`

	// LogLevel is one of: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// LogFile enables a rotating JSON log when set
	LogFile string `yaml:"log_file"`
}

// ProviderConfig selects the generation backend
type ProviderConfig struct {
	// Type is one of: mock, claude, ollama, gemini
	Type string `yaml:"type"`

	// Command is the claude CLI binary
	Command string `yaml:"command"`

	// Model overrides the scenario file's config.model
	Model string `yaml:"model"`

	// Timeout bounds a single generate call (Go duration string)
	Timeout string `yaml:"timeout"`
}

// RalphConfig holds feedback loop defaults
type RalphConfig struct {
	MaxIterations int `yaml:"max_iterations"`
	Threshold     int `yaml:"threshold"`
}

// TimeoutDuration parses Provider.Timeout. Invalid values are rejected by
// validation, so this returns zero only for an empty string.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// LoadConfig reads .harness.yaml from baseDir.
// A missing file is not an error; defaults and env overrides still apply.
func LoadConfig(baseDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(baseDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
