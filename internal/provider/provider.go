// Package provider turns scenario prompts into generated code.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/RevCBH/skill-harness/internal/scenario"
)

// ProviderType identifies a generation backend
type ProviderType string

const (
	// ProviderMock replays the scenario's mock_response
	ProviderMock ProviderType = "mock"

	// ProviderClaude shells out to the Claude CLI
	ProviderClaude ProviderType = "claude"

	// ProviderOllama talks to a local Ollama server
	ProviderOllama ProviderType = "ollama"

	// ProviderGemini calls the Gemini API
	ProviderGemini ProviderType = "gemini"
)

// Types lists every supported provider type
var Types = []ProviderType{ProviderMock, ProviderClaude, ProviderOllama, ProviderGemini}

var (
	// ErrNoMockResponse is returned by the mock provider for a scenario without mock_response
	ErrNoMockResponse = errors.New("scenario has no mock_response")

	// ErrTimeout is returned when a generation exceeds its deadline
	ErrTimeout = errors.New("generation timed out")

	// ErrEmptyResponse is returned when a backend produced no text
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// Request is one generation call
type Request struct {
	Skill    string
	Prompt   string
	Scenario scenario.Scenario

	// Config is the scenario file's config block, passed through untouched
	Config scenario.Config
}

// Provider generates code for a prompt
type Provider interface {
	// Generate returns the generated code or an error. Implementations must
	// honour ctx cancellation.
	Generate(ctx context.Context, req Request) (string, error)

	// Name returns the provider type identifier
	Name() ProviderType
}

// Config holds provider configuration
type Config struct {
	// Type selects the backend (defaults to mock when empty)
	Type ProviderType

	// Command is the Claude CLI binary (default "claude")
	Command string

	// Model overrides the model named by the scenario file
	Model string

	// Timeout bounds each Generate call; zero disables the bound
	Timeout time.Duration
}

// systemPrompt asks a backend for bare code
func systemPrompt(skill string) string {
	prompt := "You write example code. Return only the code, with no explanation and no markdown fences."
	if skill != "" {
		prompt += " Follow the conventions of the " + skill + " skill."
	}
	return prompt
}

// model returns the model to use for req, preferring override
func model(override string, req Request, fallback string) string {
	if override != "" {
		return override
	}
	if req.Config.Model != "" {
		return req.Config.Model
	}
	return fallback
}
