// Package scenario reads per-skill scenario files: the prompts sent to a
// generation provider and the scenario-level expectations on the result.
package scenario

import (
	"strings"

	"github.com/RevCBH/skill-harness/internal/evaluator"
)

// Config is the top-level config block of a scenario file. It is passed to
// providers as-is; the harness does not interpret it.
type Config struct {
	Model       string   `yaml:"model,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Extra keeps keys the harness does not know about
	Extra map[string]any `yaml:",inline"`
}

// Scenario is one code-generation test case
type Scenario struct {
	Name              string   `yaml:"name"`
	Prompt            string   `yaml:"prompt"`
	ExpectedPatterns  []string `yaml:"expected_patterns,omitempty"`
	ForbiddenPatterns []string `yaml:"forbidden_patterns,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	MockResponse      string   `yaml:"mock_response,omitempty"`
}

// HasMock reports whether the scenario ships a mock response
func (s Scenario) HasMock() bool {
	return s.MockResponse != ""
}

// Expectations converts the scenario patterns for the evaluator
func (s Scenario) Expectations() evaluator.Expectations {
	return evaluator.Expectations{
		Scenario:  s.Name,
		Expected:  s.ExpectedPatterns,
		Forbidden: s.ForbiddenPatterns,
	}
}

// Matches reports whether the scenario is selected by filter.
// The filter matches the name exactly, a name substring, or any tag,
// ignoring case. An empty filter matches everything.
func (s Scenario) Matches(filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), filter) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.EqualFold(tag, filter) {
			return true
		}
	}
	return false
}

// File is a parsed scenario file
type File struct {
	Path      string     `yaml:"-"`
	Config    Config     `yaml:"config"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Filter returns the scenarios selected by filter, in file order
func (f *File) Filter(filter string) []Scenario {
	var out []Scenario
	for _, s := range f.Scenarios {
		if s.Matches(filter) {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the scenario with the given name
func (f *File) Find(name string) (Scenario, bool) {
	for _, s := range f.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
