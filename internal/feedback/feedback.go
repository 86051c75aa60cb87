// Package feedback turns evaluation findings into instructions for the next generation attempt.
package feedback

import (
	"fmt"
	"strings"

	"github.com/RevCBH/skill-harness/internal/criteria"
	"github.com/RevCBH/skill-harness/internal/evaluator"
)

// Builder renders feedback for results evaluated against one criteria set
type Builder struct {
	set *criteria.Set

	modules map[*criteria.CodePattern]map[string]bool
	idents  map[*criteria.CodePattern]map[string]bool
}

// New creates a Builder that draws corrected examples from set
func New(set *criteria.Set) *Builder {
	b := &Builder{
		set:     set,
		modules: make(map[*criteria.CodePattern]map[string]bool),
		idents:  make(map[*criteria.CodePattern]map[string]bool),
	}
	for _, p := range set.Patterns() {
		mods := make(map[string]bool)
		for _, stmt := range p.ImportLines {
			mods[criteria.ImportModule(stmt, p.Language)] = true
		}
		b.modules[p] = mods

		ids := make(map[string]bool)
		for _, id := range criteria.Identifiers(p.Code) {
			ids[id] = true
		}
		b.idents[p] = ids
	}
	return b
}

// group orders findings inside a severity block
type group int

const (
	groupPattern group = iota
	groupExpectation
	groupOther
)

func groupOf(f evaluator.Finding) group {
	switch f.Rule {
	case evaluator.RulePattern:
		return groupPattern
	case evaluator.RuleExpected, evaluator.RuleForbidden:
		return groupExpectation
	}
	return groupOther
}

// Build renders actionable feedback for r. It returns "" when r has no
// ERROR or WARNING findings; INFO findings are never rendered.
func (b *Builder) Build(r *evaluator.Result) string {
	if r.Count(evaluator.SeverityError) == 0 && r.Count(evaluator.SeverityWarning) == 0 {
		return ""
	}
	all := r.Findings()

	var sb strings.Builder
	sb.WriteString("The previous code did not meet the acceptance criteria. Fix the following and return only the corrected code.\n")

	blocks := []struct {
		sev   evaluator.Severity
		title string
	}{
		{evaluator.SeverityError, "ERRORS (must fix)"},
		{evaluator.SeverityWarning, "WARNINGS (should fix)"},
	}
	for _, block := range blocks {
		var items []evaluator.Finding
		for g := groupPattern; g <= groupOther; g++ {
			for _, f := range all {
				if f.Severity == block.sev && groupOf(f) == g {
					items = append(items, f)
				}
			}
		}
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n%s:\n", block.title)
		for i, f := range items {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, b.instruction(f))
		}
	}

	status := "FAILED"
	if r.Passed() {
		status = "PASSED"
	}
	fmt.Fprintf(&sb, "\nScore: %d/100 (%s)", r.Score(), status)
	return sb.String()
}

func (b *Builder) instruction(f evaluator.Finding) string {
	var sb strings.Builder
	switch f.Rule {
	case evaluator.RulePattern:
		if f.Pattern != nil && f.Pattern.IsImportOnly {
			sb.WriteString("Replace this incorrect import")
		} else {
			sb.WriteString("Fix this incorrect usage")
		}
		if f.Pattern != nil && f.Pattern.Section != "" {
			fmt.Fprintf(&sb, " (%s)", f.Pattern.Section)
		}
		sb.WriteString(":\n")
		sb.WriteString(indent(quote(f.Snippet), "   "))
		if example := b.Nearest(f.Pattern); example != nil {
			sb.WriteString("\n   Use this pattern instead:\n")
			sb.WriteString(indent(fence(example), "   "))
		}

	case evaluator.RuleExpected:
		fmt.Fprintf(&sb, "The code must contain %s.", quoteInline(f.Snippet))

	case evaluator.RuleForbidden:
		fmt.Fprintf(&sb, "Remove %s; it matches a forbidden pattern.", quoteInline(f.Snippet))

	case evaluator.RuleSyntax:
		sb.WriteString("Fix the syntax error: ")
		sb.WriteString(strings.TrimPrefix(f.Message, "syntax check failed: "))
		if f.Snippet != "" {
			sb.WriteString("\n")
			sb.WriteString(indent(quote(f.Snippet), "   "))
		}

	case evaluator.RuleContent:
		sb.WriteString("No code was produced. Return a complete code sample.")

	case evaluator.RuleFormat:
		sb.WriteString("Return raw code without markdown code fences or prose.")

	default:
		sb.WriteString(f.Message)
	}
	return sb.String()
}

// Nearest returns the correct pattern most similar to p: shared import
// modules weigh most, then shared identifiers, then the same section,
// then document proximity.
func (b *Builder) Nearest(p *criteria.CodePattern) *criteria.CodePattern {
	if p == nil || len(b.set.CorrectPatterns) == 0 {
		return nil
	}

	var best *criteria.CodePattern
	var bestRank rank
	for _, c := range b.set.CorrectPatterns {
		r := b.rank(p, c)
		if best == nil || r.better(bestRank) {
			best, bestRank = c, r
		}
	}
	return best
}

type rank struct {
	modules  int
	idents   int
	section  bool
	distance int
}

func (r rank) better(o rank) bool {
	if r.modules != o.modules {
		return r.modules > o.modules
	}
	if r.idents != o.idents {
		return r.idents > o.idents
	}
	if r.section != o.section {
		return r.section
	}
	return r.distance < o.distance
}

func (b *Builder) rank(p, c *criteria.CodePattern) rank {
	r := rank{
		section:  p.Section != "" && p.Section == c.Section,
		distance: abs(p.Index - c.Index),
	}

	pMods, ok := b.modules[p]
	if !ok {
		pMods = make(map[string]bool)
		for _, stmt := range p.ImportLines {
			pMods[criteria.ImportModule(stmt, p.Language)] = true
		}
	}
	for m := range pMods {
		if b.modules[c][m] {
			r.modules++
		}
	}

	pIDs, ok := b.idents[p]
	if !ok {
		pIDs = make(map[string]bool)
		for _, id := range criteria.Identifiers(p.Code) {
			pIDs[id] = true
		}
	}
	for id := range pIDs {
		if b.idents[c][id] {
			r.idents++
		}
	}
	return r
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func quote(s string) string {
	if s == "" {
		return "(no snippet)"
	}
	return "> " + strings.ReplaceAll(s, "\n", "\n> ")
}

func quoteInline(s string) string {
	if strings.Contains(s, "`") {
		return fmt.Sprintf("%q", s)
	}
	return "`" + s + "`"
}

func fence(p *criteria.CodePattern) string {
	return "```" + string(p.Language) + "\n" + p.Code + "\n```"
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
