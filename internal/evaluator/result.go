package evaluator

import (
	"encoding/json"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

// Result is the outcome of evaluating one code sample against one criteria set.
// Findings are fixed at construction, so Passed always agrees with them.
type Result struct {
	ScenarioName string
	Code         string

	findings         []Finding
	score            int
	rawScore         int
	matchedCorrect   []*criteria.CodePattern
	matchedIncorrect []*criteria.CodePattern
}

// NewResult builds a Result and scores it from its findings and matches
func NewResult(scenarioName, code string, findings []Finding, matchedIncorrect, matchedCorrect []*criteria.CodePattern) *Result {
	r := &Result{
		ScenarioName:     scenarioName,
		Code:             code,
		findings:         append([]Finding(nil), findings...),
		matchedIncorrect: append([]*criteria.CodePattern(nil), matchedIncorrect...),
		matchedCorrect:   append([]*criteria.CodePattern(nil), matchedCorrect...),
	}
	r.score, r.rawScore = Score(r.findings, len(r.matchedIncorrect), len(r.matchedCorrect))
	return r
}

// GenerationFailure records a provider error as a failing result
func GenerationFailure(scenarioName string, err error) *Result {
	return NewResult(scenarioName, "", []Finding{{
		Severity: SeverityError,
		Rule:     RuleGeneration,
		Message:  "generation failed: " + err.Error(),
	}}, nil, nil)
}

// Findings returns a copy of the findings in evaluation order
func (r *Result) Findings() []Finding {
	return append([]Finding(nil), r.findings...)
}

// Passed is true iff no finding has ERROR severity
func (r *Result) Passed() bool {
	return r.Count(SeverityError) == 0
}

// Score is the raw score clamped to [0,100]
func (r *Result) Score() int {
	return r.score
}

// RawScore is the score before clamping
func (r *Result) RawScore() int {
	return r.rawScore
}

// Count returns the number of findings with the given severity
func (r *Result) Count(sev Severity) int {
	n := 0
	for _, f := range r.findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// MatchedCorrect returns the correct patterns recognized in the code
func (r *Result) MatchedCorrect() []*criteria.CodePattern {
	return append([]*criteria.CodePattern(nil), r.matchedCorrect...)
}

// MatchedIncorrect returns the incorrect patterns found in the code
func (r *Result) MatchedIncorrect() []*criteria.CodePattern {
	return append([]*criteria.CodePattern(nil), r.matchedIncorrect...)
}

type resultJSON struct {
	Scenario         string    `json:"scenario"`
	Passed           bool      `json:"passed"`
	Score            int       `json:"score"`
	RawScore         int       `json:"raw_score"`
	Findings         []Finding `json:"findings"`
	MatchedCorrect   []int     `json:"matched_correct"`
	MatchedIncorrect []int     `json:"matched_incorrect"`
	Code             string    `json:"code,omitempty"`
}

// MarshalJSON includes the derived fields and refers to patterns by index
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Scenario:         r.ScenarioName,
		Passed:           r.Passed(),
		Score:            r.score,
		RawScore:         r.rawScore,
		Findings:         r.Findings(),
		MatchedCorrect:   patternIndexes(r.matchedCorrect),
		MatchedIncorrect: patternIndexes(r.matchedIncorrect),
		Code:             r.Code,
	}
	if out.Findings == nil {
		out.Findings = []Finding{}
	}
	return json.Marshal(out)
}

func patternIndexes(patterns []*criteria.CodePattern) []int {
	idx := make([]int, 0, len(patterns))
	for _, p := range patterns {
		idx = append(idx, p.Index)
	}
	return idx
}
