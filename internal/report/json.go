package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// JSONReporter writes the summary as an indented JSON document
type JSONReporter struct{}

type jsonSummary struct {
	RunID        string         `json:"run_id"`
	Skill        string         `json:"skill"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	Mock         bool           `json:"mock"`
	Ralph        bool           `json:"ralph"`
	Provider     string         `json:"provider"`
	Criteria     jsonCriteria   `json:"criteria"`
	Total        int            `json:"total"`
	Passed       int            `json:"passed"`
	Failed       int            `json:"failed"`
	AverageScore float64        `json:"average_score"`
	Cancelled    bool           `json:"cancelled,omitempty"`
	Results      []jsonScenario `json:"results"`
}

type jsonCriteria struct {
	Path      string   `json:"path"`
	Correct   int      `json:"correct_patterns"`
	Incorrect int      `json:"incorrect_patterns"`
	Warnings  []string `json:"warnings,omitempty"`
}

type jsonScenario struct {
	Name       string            `json:"name"`
	Tags       []string          `json:"tags,omitempty"`
	Passed     bool              `json:"passed"`
	Score      int               `json:"score"`
	DurationMS int64             `json:"duration_ms"`
	Result     *evaluator.Result `json:"result"`
	StopReason string            `json:"stop_reason,omitempty"`
	Iterations []jsonIteration   `json:"iterations,omitempty"`
}

type jsonIteration struct {
	Iteration  int    `json:"iteration"`
	Score      int    `json:"score"`
	Passed     bool   `json:"passed"`
	Feedback   string `json:"feedback,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report writes s to w
func (j *JSONReporter) Report(w io.Writer, s *runner.SkillSummary) error {
	out := jsonSummary{
		RunID:      s.RunID,
		Skill:      s.Skill,
		StartedAt:  s.StartedAt,
		DurationMS: s.Duration.Milliseconds(),
		Mock:       s.Mock,
		Ralph:      s.Ralph,
		Provider:   s.Provider,
		Criteria: jsonCriteria{
			Path:      s.CriteriaPath,
			Correct:   s.CorrectPatterns,
			Incorrect: s.IncorrectPatterns,
			Warnings:  s.CriteriaWarnings,
		},
		Total:        s.Total(),
		Passed:       s.Passed,
		Failed:       s.Failed,
		AverageScore: s.AverageScore,
		Cancelled:    s.Cancelled,
		Results:      make([]jsonScenario, 0, len(s.Results)),
	}

	for _, r := range s.Results {
		js := jsonScenario{
			Name:       r.Scenario.Name,
			Tags:       r.Scenario.Tags,
			Passed:     r.Passed(),
			Score:      r.Result.Score(),
			DurationMS: r.Duration.Milliseconds(),
			Result:     r.Result,
		}
		if r.History != nil {
			js.StopReason = string(r.History.StopReason)
			for _, rec := range r.History.Iterations {
				js.Iterations = append(js.Iterations, jsonIteration{
					Iteration:  rec.Iteration,
					Score:      rec.Result.Score(),
					Passed:     rec.Result.Passed(),
					Feedback:   rec.Feedback,
					DurationMS: rec.Duration.Milliseconds(),
				})
			}
		}
		out.Results = append(out.Results, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
