package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ClaudeProvider implements Provider using the Claude CLI in print mode
type ClaudeProvider struct {
	command string
	model   string
}

// NewClaude creates a Claude provider with the specified command path.
// If command is empty, defaults to "claude".
func NewClaude(command, model string) *ClaudeProvider {
	if command == "" {
		command = "claude"
	}
	return &ClaudeProvider{command: command, model: model}
}

// ExecutionError wraps a non-zero exit of the CLI
type ExecutionError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("claude execution failed (exit %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("claude execution failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Generate runs the CLI with the prompt and returns its stdout
func (p *ClaudeProvider) Generate(ctx context.Context, req Request) (string, error) {
	cmd := exec.CommandContext(ctx, p.command, p.buildArgs(req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecutionError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
				Err:      err,
			}
		}
		return "", fmt.Errorf("failed to run %s: %w", p.command, err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (p *ClaudeProvider) buildArgs(req Request) []string {
	args := make([]string, 0, 8)
	args = append(args, "-p", req.Prompt, "--output-format", "text",
		"--append-system-prompt", systemPrompt(req.Skill))
	if m := model(p.model, req, ""); m != "" {
		args = append(args, "--model", m)
	}
	return args
}

// Name returns ProviderClaude
func (p *ClaudeProvider) Name() ProviderType {
	return ProviderClaude
}
