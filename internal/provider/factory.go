package provider

import (
	"context"
	"fmt"
)

// FromConfig creates a Provider from the given configuration.
// If cfg.Type is empty, defaults to the mock provider.
// Returns an error for unknown provider types.
func FromConfig(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Type {
	case ProviderMock, "":
		p = NewMock()
	case ProviderClaude:
		p = NewClaude(cfg.Command, cfg.Model)
	case ProviderOllama:
		p, err = NewOllama(cfg.Model)
	case ProviderGemini:
		p, err = NewGemini(ctx, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return WithTimeout(p, cfg.Timeout), nil
}

// ParseType validates a provider name
func ParseType(s string) (ProviderType, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown provider type: %s", s)
}
