package evaluator

import (
	"fmt"
	"strings"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

// Severity ranks a finding. Lower values are more severe.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "ERROR":
		*s = SeverityError
	case "WARNING":
		*s = SeverityWarning
	case "INFO":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// Rule names the check that produced a finding
type Rule string

const (
	RuleSyntax     Rule = "syntax"
	RuleContent    Rule = "content"
	RulePattern    Rule = "pattern"
	RuleExpected   Rule = "expected"
	RuleForbidden  Rule = "forbidden"
	RuleGeneration Rule = "generation"
	RuleInternal   Rule = "internal"
	RuleFormat     Rule = "format"
	RuleCoverage   Rule = "coverage"
)

// Fatal reports whether an ERROR from this rule forces the score to zero
func (r Rule) Fatal() bool {
	switch r {
	case RuleSyntax, RuleContent, RuleGeneration, RuleInternal:
		return true
	}
	return false
}

// Finding is one observation about a piece of generated code
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     Rule     `json:"rule"`
	Message  string   `json:"message"`

	// Pattern is the criteria pattern responsible, if any. Lookup only.
	Pattern *criteria.CodePattern `json:"-"`

	// Snippet is the offending text from the generated code
	Snippet string `json:"snippet,omitempty"`
}
