package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither config nor scenario names a model
const DefaultGeminiModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements Provider using the Gemini API
type GeminiProvider struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini provider. The API key is read from
// GEMINI_API_KEY, then GOOGLE_API_KEY.
func NewGemini(ctx context.Context, model string) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or GOOGLE_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{models: client.Models, model: model}, nil
}

// Generate sends the prompt as a single user turn
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(req.Skill), genai.RoleUser),
	}
	if req.Config.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Config.Temperature))
	}
	if req.Config.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Config.MaxTokens)
	}

	resp, err := p.models.GenerateContent(ctx,
		model(p.model, req, DefaultGeminiModel),
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Name returns ProviderGemini
func (p *GeminiProvider) Name() ProviderType {
	return ProviderGemini
}
