package ralph

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevCBH/skill-harness/internal/evaluator"
)

// StopReason records why a loop ended
type StopReason string

const (
	StopThresholdMet  StopReason = "threshold_met"
	StopPerfectScore  StopReason = "perfect_score"
	StopMaxIterations StopReason = "max_iterations"
	StopNoImprovement StopReason = "no_improvement"
	StopRegression    StopReason = "regression"
	StopCancelled     StopReason = "cancelled"
)

// Success reports whether the loop ended by reaching its quality bar
func (r StopReason) Success() bool {
	return r == StopThresholdMet || r == StopPerfectScore
}

const (
	// DefaultMaxIterations bounds a loop when no limit is configured
	DefaultMaxIterations = 5

	// DefaultQualityThreshold is the score that ends a loop early
	DefaultQualityThreshold = 80
)

// Config controls loop termination
type Config struct {
	// MaxIterations is the hard iteration limit (at least 1)
	MaxIterations int `yaml:"max_iterations"`

	// QualityThreshold is the score in [0,100] that stops the loop
	QualityThreshold int `yaml:"threshold"`
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() Config {
	return Config{
		MaxIterations:    DefaultMaxIterations,
		QualityThreshold: DefaultQualityThreshold,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	var errs []error
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations))
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 100 {
		errs = append(errs, fmt.Errorf("threshold must be between 0 and 100, got %d", c.QualityThreshold))
	}
	return errors.Join(errs...)
}

// IterationRecord is one generate and evaluate pass
type IterationRecord struct {
	// Iteration is 1-based
	Iteration int

	// Prompt is exactly what was sent to the generator
	Prompt string

	Result *evaluator.Result

	// Feedback is the guidance carried into the next iteration.
	// Empty on the iteration that stopped the loop.
	Feedback string

	Duration time.Duration
}

// History is the outcome of one loop
type History struct {
	Scenario   string
	Iterations []IterationRecord

	// FinalResult is the result of the iteration that stopped the loop
	FinalResult *evaluator.Result
	StopReason  StopReason
}

// Scores returns the score of each iteration in order
func (h *History) Scores() []int {
	scores := make([]int, len(h.Iterations))
	for i, rec := range h.Iterations {
		scores[i] = rec.Result.Score()
	}
	return scores
}

// Improvement is the final score minus the first score
func (h *History) Improvement() int {
	if len(h.Iterations) == 0 {
		return 0
	}
	return h.FinalResult.Score() - h.Iterations[0].Result.Score()
}

// IterationPayload is attached to ralph.iteration.completed events
type IterationPayload struct {
	Score    int  `json:"score"`
	Passed   bool `json:"passed"`
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`

	// Stopping is set when this iteration ends the loop
	Stopping bool `json:"stopping"`
}

// StoppedPayload is attached to ralph.stopped events
type StoppedPayload struct {
	Reason     StopReason `json:"reason"`
	Iterations int        `json:"iterations"`
	Scores     []int      `json:"scores"`
	FinalScore int        `json:"final_score"`
	Passed     bool       `json:"passed"`
}
