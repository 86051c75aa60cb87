package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ollama "github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/RevCBH/skill-harness/internal/scenario"
)

func TestMockProvider_ReturnsMockResponse(t *testing.T) {
	p := NewMock()
	req := Request{Scenario: scenario.Scenario{Name: "basic", MockResponse: "import good_module\n"}}

	got, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "import good_module\n", got)
	assert.Equal(t, ProviderMock, p.Name())
}

func TestMockProvider_NoMockResponse(t *testing.T) {
	_, err := NewMock().Generate(context.Background(), Request{Scenario: scenario.Scenario{Name: "basic"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMockResponse))
	assert.Contains(t, err.Error(), "basic")
}

func TestMockProvider_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock().Generate(ctx, Request{Scenario: scenario.Scenario{MockResponse: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-claude.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestClaudeProvider_Defaults(t *testing.T) {
	p := NewClaude("", "")
	assert.Equal(t, "claude", p.command)
	assert.Equal(t, ProviderClaude, p.Name())
}

func TestClaudeProvider_BuildArgs(t *testing.T) {
	req := Request{Prompt: "write code", Config: scenario.Config{Model: "sonnet"}}

	args := NewClaude("", "").buildArgs(req)
	assert.Equal(t, []string{"-p", "write code", "--output-format", "text", "--append-system-prompt", systemPrompt(""), "--model", "sonnet"}, args)

	args = NewClaude("", "opus").buildArgs(req)
	assert.Equal(t, "opus", args[len(args)-1])
}

func TestClaudeProvider_Generate(t *testing.T) {
	script := writeScript(t, `echo "  $2  "`)

	got, err := NewClaude(script, "").Generate(context.Background(), Request{Prompt: "print(1)"})
	require.NoError(t, err)
	assert.Equal(t, "print(1)", got)
}

func TestClaudeProvider_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "rate limited" >&2; exit 3`)

	_, err := NewClaude(script, "").Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)

	var execErr *ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Equal(t, "rate limited", execErr.Stderr)
}

func TestClaudeProvider_EmptyOutput(t *testing.T) {
	script := writeScript(t, `exit 0`)

	_, err := NewClaude(script, "").Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingProvider) Name() ProviderType { return "blocking" }

func TestWithTimeout_Deadline(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ProviderType("blocking"), p.Name())
}

func TestWithTimeout_ParentCancel(t *testing.T) {
	p := WithTimeout(blockingProvider{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithTimeout_ZeroIsPassthrough(t *testing.T) {
	inner := NewMock()
	assert.Same(t, inner, WithTimeout(inner, 0))
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, p.Name())

	p, err = FromConfig(context.Background(), Config{Type: ProviderClaude, Command: "/usr/local/bin/claude", Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, p.Name())

	_, err = FromConfig(context.Background(), Config{Type: "gpt4"})
	assert.Error(t, err)
}

func TestFromConfig_GeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := FromConfig(context.Background(), Config{Type: ProviderGemini})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseType("codex")
	assert.Error(t, err)
}

type fakeChat struct {
	got   *ollama.ChatRequest
	parts []string
	err   error
}

func (f *fakeChat) Chat(_ context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error {
	f.got = req
	for _, part := range f.parts {
		if err := fn(ollama.ChatResponse{Message: ollama.Message{Content: part}}); err != nil {
			return err
		}
	}
	return f.err
}

func TestOllamaProvider_Generate(t *testing.T) {
	temp := 0.3
	chat := &fakeChat{parts: []string{"import good_module\n", "x = 1\n"}}
	p := &OllamaProvider{client: chat}

	got, err := p.Generate(context.Background(), Request{
		Skill:  "demo",
		Prompt: "write it",
		Config: scenario.Config{MaxTokens: 512, Temperature: &temp},
	})
	require.NoError(t, err)
	assert.Equal(t, "import good_module\nx = 1", got)

	require.NotNil(t, chat.got)
	assert.Equal(t, DefaultOllamaModel, chat.got.Model)
	require.Len(t, chat.got.Messages, 2)
	assert.Equal(t, "user", chat.got.Messages[1].Role)
	assert.Equal(t, "write it", chat.got.Messages[1].Content)
	assert.Equal(t, 0.3, chat.got.Options["temperature"])
	assert.Equal(t, 512, chat.got.Options["num_predict"])
	require.NotNil(t, chat.got.Stream)
	assert.False(t, *chat.got.Stream)
}

func TestOllamaProvider_Error(t *testing.T) {
	p := &OllamaProvider{client: &fakeChat{err: errors.New("connection refused")}, model: "llama3"}

	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "ollama chat failed"))
}

type fakeModels struct {
	model string
	cfg   *genai.GenerateContentConfig
	text  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.cfg = cfg
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGeminiProvider_Generate(t *testing.T) {
	models := &fakeModels{text: "\nimport good_module\n"}
	p := &GeminiProvider{models: models}

	got, err := p.Generate(context.Background(), Request{
		Prompt: "write it",
		Config: scenario.Config{Model: "gemini-pro", MaxTokens: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, "import good_module", got)
	assert.Equal(t, "gemini-pro", models.model)
	assert.Equal(t, int32(100), models.cfg.MaxOutputTokens)
	assert.Nil(t, models.cfg.Temperature)
}

func TestGeminiProvider_EmptyResponse(t *testing.T) {
	p := &GeminiProvider{models: &fakeModels{}, model: "m"}

	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
