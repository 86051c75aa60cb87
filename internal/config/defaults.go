package config

// Default values for configuration
const (
	DefaultSkillsDir     = ".github/skills"
	DefaultCriteriaFile  = "references/acceptance-criteria.md"
	DefaultScenariosDir  = "tests/scenarios"
	DefaultProviderType  = "mock"
	DefaultClaudeCommand = "claude"
	DefaultTimeout       = "2m"
	DefaultMaxIterations = 5
	DefaultThreshold     = 80
	DefaultParallelism   = 1
	DefaultLogLevel      = "warn"
)

// DefaultConfig returns a Config with all default values applied
func DefaultConfig() *Config {
	return &Config{
		SkillsDir:    DefaultSkillsDir,
		CriteriaFile: DefaultCriteriaFile,
		ScenariosDir: DefaultScenariosDir,
		Provider: ProviderConfig{
			Type:    DefaultProviderType,
			Command: DefaultClaudeCommand,
			Timeout: DefaultTimeout,
		},
		Ralph: RalphConfig{
			MaxIterations: DefaultMaxIterations,
			Threshold:     DefaultThreshold,
		},
		Parallelism: DefaultParallelism,
		LogLevel:    DefaultLogLevel,
	}
}
