package provider

import (
	"context"
	"fmt"
)

// MockProvider returns each scenario's mock_response verbatim
type MockProvider struct{}

// NewMock creates the deterministic mock provider
func NewMock() *MockProvider {
	return &MockProvider{}
}

// Generate returns req.Scenario.MockResponse, or ErrNoMockResponse when it is unset
func (p *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !req.Scenario.HasMock() {
		return "", fmt.Errorf("%w: %s", ErrNoMockResponse, req.Scenario.Name)
	}
	return req.Scenario.MockResponse, nil
}

// Name returns ProviderMock
func (p *MockProvider) Name() ProviderType {
	return ProviderMock
}
