package evaluator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

// Expectations carries the scenario-level checks for one evaluation
type Expectations struct {
	Scenario  string
	Expected  []string
	Forbidden []string
}

// Evaluator scores generated code against one criteria set.
// It is safe for concurrent use; the set is only read.
type Evaluator struct {
	set       *criteria.Set
	correct   []compiledPattern
	incorrect []compiledPattern
}

// New prepares an Evaluator for a loaded criteria set
func New(set *criteria.Set) *Evaluator {
	shared := make(map[string]bool)
	for _, p := range set.CorrectPatterns {
		for _, body := range p.BodyLines {
			shared[matchFragment(criteria.NormalizeLine(body))] = true
		}
	}

	e := &Evaluator{set: set}
	for _, p := range set.CorrectPatterns {
		e.correct = append(e.correct, compile(p, nil))
	}
	for _, p := range set.IncorrectPatterns {
		e.incorrect = append(e.incorrect, compile(p, shared))
	}
	return e
}

// Set returns the criteria set the evaluator was built from
func (e *Evaluator) Set() *criteria.Set {
	return e.set
}

// Evaluate scores code. It never panics; internal failures become an ERROR finding.
func (e *Evaluator) Evaluate(code string, exp Expectations) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			result = NewResult(exp.Scenario, code, []Finding{{
				Severity: SeverityError,
				Rule:     RuleInternal,
				Message:  fmt.Sprintf("evaluation failed: %v", r),
			}}, nil, nil)
		}
	}()

	if strings.TrimSpace(code) == "" {
		return NewResult(exp.Scenario, code, []Finding{noContent()}, nil, nil)
	}

	var findings []Finding

	if inner, ok := unwrapFence(code); ok {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Rule:     RuleFormat,
			Message:  "output was wrapped in a markdown code fence; return only raw code",
		})
		code = inner
		if strings.TrimSpace(code) == "" {
			return NewResult(exp.Scenario, code, []Finding{noContent()}, nil, nil)
		}
	}

	if err := CheckSyntax(code, e.set.Language); err != nil {
		var snippet string
		var se *SyntaxError
		if errors.As(err, &se) {
			snippet = SyntaxLine(code, se)
		}
		return NewResult(exp.Scenario, code, []Finding{{
			Severity: SeverityError,
			Rule:     RuleSyntax,
			Message:  "syntax check failed: " + err.Error(),
			Snippet:  snippet,
		}}, nil, nil)
	}

	ac := analyze(code, e.set.Language)

	var matchedIncorrect, matchedCorrect []*criteria.CodePattern
	for i := range e.incorrect {
		cp := &e.incorrect[i]
		snippet, ok := cp.matchIncorrect(ac)
		if !ok {
			continue
		}
		matchedIncorrect = append(matchedIncorrect, cp.pattern)
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     RulePattern,
			Message:  incorrectMessage(cp.pattern),
			Pattern:  cp.pattern,
			Snippet:  snippet,
		})
	}

	for i := range e.correct {
		if e.correct[i].matchCorrect(ac) {
			matchedCorrect = append(matchedCorrect, e.correct[i].pattern)
		}
	}

	for _, pat := range exp.Expected {
		if pat == "" {
			continue
		}
		if _, ok := findPattern(code, pat); !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Rule:     RuleExpected,
				Message:  fmt.Sprintf("expected pattern not found: %q", pat),
				Snippet:  pat,
			})
		}
	}
	for _, pat := range exp.Forbidden {
		if match, ok := findPattern(code, pat); ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Rule:     RuleForbidden,
				Message:  fmt.Sprintf("forbidden pattern present: %q", pat),
				Snippet:  match,
			})
		}
	}

	if len(matchedIncorrect) == 0 && len(matchedCorrect) == 0 {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Rule:     RuleCoverage,
			Message:  "no acceptance-criteria pattern recognized in the code",
		})
	}

	return NewResult(exp.Scenario, code, findings, matchedIncorrect, matchedCorrect)
}

func noContent() Finding {
	return Finding{
		Severity: SeverityError,
		Rule:     RuleContent,
		Message:  "no content produced",
	}
}

func incorrectMessage(p *criteria.CodePattern) string {
	kind := "incorrect usage"
	if p.IsImportOnly {
		kind = "incorrect import"
	}
	if p.Section != "" {
		return fmt.Sprintf("%s (pattern #%d, %s)", kind, p.Index, p.Section)
	}
	return fmt.Sprintf("%s (pattern #%d)", kind, p.Index)
}

// findPattern tests a scenario pattern as a substring, then as a regular expression.
// It returns the matched text.
func findPattern(code, pattern string) (string, bool) {
	if pattern == "" {
		return "", false
	}
	if strings.Contains(code, pattern) {
		return pattern, true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}
	if m := re.FindString(code); m != "" || re.MatchString(code) {
		return m, true
	}
	return "", false
}

// unwrapFence extracts the first fenced block when output is markdown-wrapped.
// The output counts as wrapped when it opens with the fence, or when the
// text around the fence is prose. A fence embedded in code, e.g. inside a
// docstring, leaves the code untouched.
func unwrapFence(code string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	start, end, first := -1, len(lines), -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if first < 0 && t != "" {
			first = i
		}
		if strings.HasPrefix(t, "```") {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			end = i
			break
		}
	}

	if first != start {
		outside := append(append([]string{}, lines[:start]...), lines[min(end+1, len(lines)):]...)
		for _, l := range outside {
			if looksLikeCode(l) {
				return "", false
			}
		}
	}
	return strings.Join(lines[start+1:end], "\n"), true
}

var codeLeaders = []string{"import ", "from ", "using ", "package ", "def ", "class ", "const ", "let ", "var "}

// looksLikeCode reports whether a line outside a fence reads as a statement
func looksLikeCode(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	if strings.ContainsAny(t, "=(){}[];") {
		return true
	}
	for _, lead := range codeLeaders {
		if strings.HasPrefix(t, lead) {
			return true
		}
	}
	return false
}
