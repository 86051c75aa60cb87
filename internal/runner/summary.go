package runner

import (
	"time"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// ScenarioResult is the outcome of one scenario
type ScenarioResult struct {
	Scenario scenario.Scenario

	// Result is the single-shot result, or the loop's final result
	Result *evaluator.Result

	// History is set in Ralph mode
	History *ralph.History

	Duration time.Duration
}

// Passed reports whether the final result has no ERROR finding
func (r ScenarioResult) Passed() bool {
	return r.Result != nil && r.Result.Passed()
}

// Iterations is the number of generate calls made for the scenario
func (r ScenarioResult) Iterations() int {
	if r.History != nil {
		return len(r.History.Iterations)
	}
	return 1
}

// SkillSummary aggregates every scenario result of one run
type SkillSummary struct {
	RunID     string
	Skill     string
	StartedAt time.Time
	Duration  time.Duration

	Mock     bool
	Ralph    bool
	Provider string

	// RalphConfig is the effective loop configuration in Ralph mode
	RalphConfig ralph.Config

	CriteriaPath      string
	CorrectPatterns   int
	IncorrectPatterns int
	CriteriaWarnings  []string

	// Results are in scenario-file order
	Results      []ScenarioResult
	Passed       int
	Failed       int
	AverageScore float64

	// Cancelled is set when the run context ended before every scenario finished
	Cancelled bool
}

// AllPassed reports whether no evaluated scenario failed
func (s *SkillSummary) AllPassed() bool {
	return s.Failed == 0
}

// Total is the number of evaluated scenarios
func (s *SkillSummary) Total() int {
	return len(s.Results)
}

// aggregate fills the pass/fail counts and average score
func (s *SkillSummary) aggregate() {
	s.Passed, s.Failed = 0, 0
	total := 0
	for _, r := range s.Results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Result != nil {
			total += r.Result.Score()
		}
	}
	s.AverageScore = 0
	if len(s.Results) > 0 {
		s.AverageScore = float64(total) / float64(len(s.Results))
	}
}
