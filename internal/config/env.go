package config

import "os"

// Environment variables that override config file values
const (
	EnvProvider     = "HARNESS_PROVIDER"
	EnvModel        = "HARNESS_MODEL"
	EnvLogLevel     = "HARNESS_LOG_LEVEL"
	EnvLogFile      = "HARNESS_LOG_FILE"
	EnvSkillsDir    = "HARNESS_SKILLS_DIR"
	EnvScenariosDir = "HARNESS_SCENARIOS_DIR"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: EnvProvider,
		apply: func(c *Config, v string) {
			c.Provider.Type = v
		},
	},
	{
		envVar: EnvModel,
		apply: func(c *Config, v string) {
			c.Provider.Model = v
		},
	},
	{
		envVar: EnvLogLevel,
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: EnvLogFile,
		apply: func(c *Config, v string) {
			c.LogFile = v
		},
	},
	{
		envVar: EnvSkillsDir,
		apply: func(c *Config, v string) {
			c.SkillsDir = v
		},
	},
	{
		envVar: EnvScenariosDir,
		apply: func(c *Config, v string) {
			c.ScenariosDir = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
