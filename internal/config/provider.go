package config

import (
	"os"

	"github.com/RevCBH/skill-harness/internal/provider"
)

// ResolutionContext holds inputs for provider resolution
type ResolutionContext struct {
	// Mock is the --mock flag
	Mock bool

	// CLIProvider is the --provider flag value (empty if not set)
	CLIProvider string
}

// ResolvedProvider is the outcome of provider resolution
type ResolvedProvider struct {
	Type    provider.ProviderType
	Command string
	Model   string

	// Source describes where Type came from, for logs
	Source string
}

// ResolveProvider determines which provider to use.
// Precedence (highest to lowest):
// 1. --mock
// 2. --provider
// 3. HARNESS_PROVIDER
// 4. .harness.yaml provider.type
// 5. mock
func ResolveProvider(cfg *Config, ctx ResolutionContext) ResolvedProvider {
	var (
		providerType string
		source       string
	)

	switch {
	case ctx.Mock:
		providerType = string(provider.ProviderMock)
		source = "cli:--mock"
	case ctx.CLIProvider != "":
		providerType = ctx.CLIProvider
		source = "cli:--provider"
	case os.Getenv(EnvProvider) != "" && cfg.Provider.Type == os.Getenv(EnvProvider):
		providerType = cfg.Provider.Type
		source = "env:" + EnvProvider
	case cfg.Provider.Type != "":
		providerType = cfg.Provider.Type
		source = "config:" + FileName
	default:
		providerType = DefaultProviderType
		source = "default"
	}

	command := cfg.Provider.Command
	if command == "" {
		command = DefaultClaudeCommand
	}

	return ResolvedProvider{
		Type:    provider.ProviderType(providerType),
		Command: command,
		Model:   cfg.Provider.Model,
		Source:  source,
	}
}

// FactoryConfig converts the resolution into a provider factory config.
// The timeout is left to the runner so a generation is only bounded once.
func (r ResolvedProvider) FactoryConfig() provider.Config {
	return provider.Config{
		Type:    r.Type,
		Command: r.Command,
		Model:   r.Model,
	}
}
