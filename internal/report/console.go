package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// Icons used in console output
const (
	IconPassed = "✓"
	IconFailed = "✗"
)

// Styles contains the lipgloss styles of console output
type Styles struct {
	Title    lipgloss.Style
	Dim      lipgloss.Style
	Passed   lipgloss.Style
	Failed   lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Snippet  lipgloss.Style
	Added    lipgloss.Style
	Removed  lipgloss.Style
	Scenario lipgloss.Style
}

// DefaultStyles returns the colored console styles
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Passed:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Snippet:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		Added:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Removed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Scenario: lipgloss.NewStyle().Bold(true),
	}
}

// PlainStyles returns styles that render text unchanged
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Dim: plain, Passed: plain, Failed: plain,
		Error: plain, Warning: plain, Info: plain, Snippet: plain,
		Added: plain, Removed: plain, Scenario: plain,
	}
}

// ConsoleReporter writes a human-readable summary
type ConsoleReporter struct {
	opts   Options
	styles Styles
}

// NewConsole creates a console reporter
func NewConsole(opts Options) *ConsoleReporter {
	styles := PlainStyles()
	if opts.Color {
		styles = DefaultStyles()
	}
	return &ConsoleReporter{opts: opts, styles: styles}
}

// Report writes s to w
func (c *ConsoleReporter) Report(w io.Writer, s *runner.SkillSummary) error {
	var b strings.Builder
	st := c.styles

	b.WriteString(st.Title.Render("Skill: "+s.Skill) + " " + st.Dim.Render(modeLine(s)) + "\n")
	fmt.Fprintf(&b, "%s\n", st.Dim.Render(fmt.Sprintf("Criteria: %d correct, %d incorrect patterns", s.CorrectPatterns, s.IncorrectPatterns)))
	for _, warn := range s.CriteriaWarnings {
		b.WriteString(st.Warning.Render("  warning: "+warn) + "\n")
	}
	b.WriteString("\n")

	if len(s.Results) == 0 {
		b.WriteString(st.Dim.Render("  no scenarios selected") + "\n")
	}

	width := nameWidth(s.Results)
	for _, r := range s.Results {
		c.writeScenario(&b, r, width)
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("Summary: %d passed, %d failed, average score %.1f", s.Passed, s.Failed, s.AverageScore)
	if s.AllPassed() {
		b.WriteString(st.Passed.Render(summary))
	} else {
		b.WriteString(st.Failed.Render(summary))
	}
	fmt.Fprintf(&b, " %s\n", st.Dim.Render(fmt.Sprintf("(%s)", s.Duration.Round(time.Millisecond))))
	if s.Cancelled {
		b.WriteString(st.Warning.Render("Run was interrupted; remaining scenarios may be incomplete.") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (c *ConsoleReporter) writeScenario(b *strings.Builder, r runner.ScenarioResult, width int) {
	st := c.styles
	icon, style := IconPassed, st.Passed
	if !r.Passed() {
		icon, style = IconFailed, st.Failed
	}

	name := fmt.Sprintf("%-*s", width, r.Scenario.Name)
	line := fmt.Sprintf("  %s %s %3d/100", style.Render(icon), st.Scenario.Render(name), r.Result.Score())
	if r.History != nil {
		line += " " + st.Dim.Render(fmt.Sprintf("[%d iteration%s, %s]", len(r.History.Iterations), plural(len(r.History.Iterations)), r.History.StopReason))
	}
	b.WriteString(line + "\n")

	for _, f := range r.Result.Findings() {
		if !c.opts.Verbose && (f.Severity == evaluator.SeverityInfo || r.Passed() && f.Severity != evaluator.SeverityError) {
			continue
		}
		c.writeFinding(b, f)
	}

	if c.opts.Verbose && r.History != nil {
		c.writeHistory(b, r)
	}
}

func (c *ConsoleReporter) writeFinding(b *strings.Builder, f evaluator.Finding) {
	st := c.styles
	sev := st.Info
	switch f.Severity {
	case evaluator.SeverityError:
		sev = st.Error
	case evaluator.SeverityWarning:
		sev = st.Warning
	}

	fmt.Fprintf(b, "      %s %-9s %s\n", sev.Render(fmt.Sprintf("%-7s", f.Severity)), f.Rule, f.Message)
	if f.Snippet != "" {
		for _, line := range strings.Split(f.Snippet, "\n") {
			b.WriteString("                        " + st.Snippet.Render("> "+line) + "\n")
		}
	}
}

func (c *ConsoleReporter) writeHistory(b *strings.Builder, r runner.ScenarioResult) {
	st := c.styles
	var prev string
	for i, rec := range r.History.Iterations {
		fmt.Fprintf(b, "      %s\n", st.Dim.Render(fmt.Sprintf("iteration %d: score %d, %s", rec.Iteration, rec.Result.Score(), passFail(rec.Result.Passed()))))
		if i > 0 {
			diff := LineDiff(prev, rec.Result.Code)
			added, removed := DiffStats(diff)
			fmt.Fprintf(b, "        %s\n", st.Dim.Render(fmt.Sprintf("code changes: +%d -%d", added, removed)))
			for _, l := range diff {
				switch l.Op {
				case LineAdded:
					b.WriteString("        " + st.Added.Render("+ "+l.Text) + "\n")
				case LineRemoved:
					b.WriteString("        " + st.Removed.Render("- "+l.Text) + "\n")
				}
			}
		}
		prev = rec.Result.Code
	}
}

func modeLine(s *runner.SkillSummary) string {
	parts := []string{s.Provider}
	if s.Ralph {
		parts = append(parts, fmt.Sprintf("ralph: max %d, threshold %d", s.RalphConfig.MaxIterations, s.RalphConfig.QualityThreshold))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func nameWidth(results []runner.ScenarioResult) int {
	width := 0
	for _, r := range results {
		width = max(width, len(r.Scenario.Name))
	}
	return width
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func passFail(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
