// Package report renders skill summaries as console text, JSON, or Markdown.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/RevCBH/skill-harness/internal/runner"
)

// Format names an output format
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported output formats
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown}

// ParseFormat validates an --output value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or markdown)", s)
}

// Options tune rendering
type Options struct {
	// Verbose includes every finding, Ralph iterations, and code diffs
	Verbose bool

	// Color enables terminal styling in text output
	Color bool

	// Render pretty-prints Markdown output for a terminal
	Render bool

	// Width is the wrap width for rendered Markdown (default 100)
	Width int
}

// Reporter writes one summary
type Reporter interface {
	Report(w io.Writer, s *runner.SkillSummary) error
}

// New returns the reporter for format
func New(format Format, opts Options) (Reporter, error) {
	switch format {
	case FormatText, "":
		return NewConsole(opts), nil
	case FormatJSON:
		return &JSONReporter{}, nil
	case FormatMarkdown:
		return &MarkdownReporter{opts: opts}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
