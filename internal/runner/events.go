package runner

import "time"

// RunStartedPayload is attached to run.started events
type RunStartedPayload struct {
	RunID     string   `json:"run_id"`
	Scenarios []string `json:"scenarios"`
	Mock      bool     `json:"mock"`
	Ralph     bool     `json:"ralph"`
	Provider  string   `json:"provider"`
}

// CriteriaPayload is attached to criteria.loaded events
type CriteriaPayload struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}

// ScenarioPayload is attached to scenario.completed events
type ScenarioPayload struct {
	Score      int           `json:"score"`
	Passed     bool          `json:"passed"`
	Iterations int           `json:"iterations"`
	StopReason string        `json:"stop_reason,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunCompletedPayload is attached to run.completed events
type RunCompletedPayload struct {
	RunID        string        `json:"run_id"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	AverageScore float64       `json:"average_score"`
	Duration     time.Duration `json:"duration"`
	Cancelled    bool          `json:"cancelled"`
}
