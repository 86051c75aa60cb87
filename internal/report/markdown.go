package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// MarkdownReporter writes the summary as a Markdown document
type MarkdownReporter struct {
	opts Options
}

// Report writes s to w, rendered for a terminal when Options.Render is set
func (m *MarkdownReporter) Report(w io.Writer, s *runner.SkillSummary) error {
	doc := m.Document(s)
	if m.opts.Render {
		width := m.opts.Width
		if width <= 0 {
			width = 100
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		rendered, err := renderer.Render(doc)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		doc = rendered
	}
	_, err := io.WriteString(w, doc)
	return err
}

// Document builds the Markdown source for s
func (m *MarkdownReporter) Document(s *runner.SkillSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Skill Test Report: %s\n\n", s.Skill)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- **Provider:** %s\n", s.Provider)
	if s.Ralph {
		fmt.Fprintf(&b, "- **Ralph loop:** max %d iterations, threshold %d\n", s.RalphConfig.MaxIterations, s.RalphConfig.QualityThreshold)
	}
	fmt.Fprintf(&b, "- **Criteria:** %d correct, %d incorrect patterns\n", s.CorrectPatterns, s.IncorrectPatterns)
	fmt.Fprintf(&b, "- **Result:** %d passed, %d failed, average score %.1f\n\n", s.Passed, s.Failed, s.AverageScore)

	if len(s.CriteriaWarnings) > 0 {
		b.WriteString("## Criteria Warnings\n\n")
		for _, w := range s.CriteriaWarnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Scenarios\n\n")
	if s.Ralph {
		b.WriteString("| Scenario | Status | Score | Iterations | Stop reason |\n")
		b.WriteString("|----------|--------|-------|------------|-------------|\n")
	} else {
		b.WriteString("| Scenario | Status | Score |\n")
		b.WriteString("|----------|--------|-------|\n")
	}
	for _, r := range s.Results {
		status := "✅ PASSED"
		if !r.Passed() {
			status = "❌ FAILED"
		}
		if r.History != nil {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n", cell(r.Scenario.Name), status, r.Result.Score(), len(r.History.Iterations), r.History.StopReason)
		} else {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", cell(r.Scenario.Name), status, r.Result.Score())
		}
	}
	b.WriteString("\n")

	for _, r := range s.Results {
		if r.Passed() && !m.opts.Verbose {
			continue
		}
		m.writeDetails(&b, r)
	}

	return b.String()
}

func (m *MarkdownReporter) writeDetails(b *strings.Builder, r runner.ScenarioResult) {
	fmt.Fprintf(b, "### %s\n\n", r.Scenario.Name)

	findings := r.Result.Findings()
	if len(findings) == 0 {
		b.WriteString("No findings.\n\n")
	}
	for _, f := range findings {
		if f.Severity == evaluator.SeverityInfo && !m.opts.Verbose {
			continue
		}
		fmt.Fprintf(b, "- **%s** `%s`: %s\n", f.Severity, f.Rule, f.Message)
		if f.Snippet != "" {
			fmt.Fprintf(b, "\n  ```\n%s\n  ```\n", indentLines(f.Snippet, "  "))
		}
	}
	b.WriteString("\n")

	if r.History == nil || !m.opts.Verbose {
		return
	}

	b.WriteString("#### Iterations\n\n")
	var prev string
	for i, rec := range r.History.Iterations {
		fmt.Fprintf(b, "**Iteration %d**: score %d, %s\n\n", rec.Iteration, rec.Result.Score(), passFail(rec.Result.Passed()))
		if i > 0 {
			if diff := LineDiff(prev, rec.Result.Code); len(diff) > 0 {
				fmt.Fprintf(b, "```diff\n%s```\n\n", FormatDiff(diff))
			}
		}
		prev = rec.Result.Code
	}
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
