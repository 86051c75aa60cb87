package provider

import (
	"context"
	"fmt"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/RevCBH/skill-harness/internal/scenario"
)

// DefaultOllamaModel is used when neither config nor scenario names a model
const DefaultOllamaModel = "qwen2.5-coder"

type chatClient interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
}

// OllamaProvider implements Provider against an Ollama server.
// The server address comes from OLLAMA_HOST.
type OllamaProvider struct {
	client chatClient
	model  string
}

// NewOllama creates an Ollama provider from the environment
func NewOllama(model string) (*OllamaProvider, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("could not create ollama client: %w", err)
	}
	return &OllamaProvider{client: client, model: model}, nil
}

// Generate sends the prompt as a single user message
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	stream := false
	chat := &ollama.ChatRequest{
		Model: model(p.model, req, DefaultOllamaModel),
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt(req.Skill)},
			{Role: "user", Content: req.Prompt},
		},
		Stream:  &stream,
		Options: ollamaOptions(req.Config),
	}

	var out strings.Builder
	err := p.client.Chat(ctx, chat, func(res ollama.ChatResponse) error {
		out.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Name returns ProviderOllama
func (p *OllamaProvider) Name() ProviderType {
	return ProviderOllama
}

func ollamaOptions(cfg scenario.Config) map[string]any {
	opts := make(map[string]any)
	if cfg.Temperature != nil {
		opts["temperature"] = *cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		opts["num_predict"] = cfg.MaxTokens
	}
	return opts
}
