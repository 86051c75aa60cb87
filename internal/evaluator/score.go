package evaluator

const (
	BaseScore = 100
	MaxScore  = 100
	MinScore  = 0

	IncorrectPatternPenalty = 15
	ErrorPenalty            = 20
	WarningPenalty          = 5
	CorrectPatternBonus     = 5
)

// Score computes the clamped and raw score of an evaluation.
// An ERROR from a fatal rule (empty output, syntax, generation, internal)
// scores zero with no other adjustment.
func Score(findings []Finding, matchedIncorrect, matchedCorrect int) (score, raw int) {
	raw = BaseScore
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			if f.Rule.Fatal() {
				return MinScore, MinScore
			}
			raw -= ErrorPenalty
		case SeverityWarning:
			raw -= WarningPenalty
		}
	}
	raw -= IncorrectPatternPenalty * matchedIncorrect
	raw += CorrectPatternBonus * matchedCorrect

	return clamp(raw), raw
}

func clamp(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}
