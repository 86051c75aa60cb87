package criteria

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Marker is the classification implied by a piece of text
type Marker int

const (
	// MarkerNone means the text carries no marker
	MarkerNone Marker = iota
	MarkerCorrect
	MarkerIncorrect
	// MarkerAmbiguous means the text carries both kinds of marker
	MarkerAmbiguous
)

func (m Marker) String() string {
	switch m {
	case MarkerCorrect:
		return "correct"
	case MarkerIncorrect:
		return "incorrect"
	case MarkerAmbiguous:
		return "ambiguous"
	}
	return "none"
}

// Kind converts a decisive marker into a pattern kind
func (m Marker) Kind() (Kind, bool) {
	switch m {
	case MarkerCorrect:
		return KindCorrect, true
	case MarkerIncorrect:
		return KindIncorrect, true
	}
	return "", false
}

var (
	correctSymbols   = []string{"✅", "✔", "☑"}
	incorrectSymbols = []string{"❌", "✗", "✘", "⛔", "🚫"}

	// negated phrases count as incorrect markers and must not also count as correct
	negatedRe = regexp.MustCompile(`\bnot\s+(correct|recommended|right|good)\b`)

	correctWordsRe   = regexp.MustCompile(`\b(correct|good|right|recommended|preferred)\b|(^|[^\w])do:`)
	incorrectWordsRe = regexp.MustCompile(`\b(incorrect|wrong|bad|avoid|never|anti-?pattern|don['’]?t)\b`)

	// leadLabelRe matches an opening label such as "Correct:", "DON'T:" or "Avoid this:"
	leadLabelRe = regexp.MustCompile(`^(not\s+)?(correct|incorrect|wrong|bad|good|right|do|don['’]?t|avoid|never|anti-?pattern|recommended|preferred)\b[^:\n]{0,24}[:—–]`)

	// bareLabelRe matches a line that is nothing but a short label, e.g. "Wrong way"
	bareLabelRe = regexp.MustCompile(`^(not\s+)?(correct|incorrect|wrong|bad|good|right|anti-?pattern|recommended|preferred)(\s+[\w-]+){0,2}[.!]?$`)

	folder = cases.Fold()
)

// Classify returns the marker carried by text.
// Word-boundary matching keeps "incorrect" from counting as "correct".
func Classify(text string) Marker {
	if strings.TrimSpace(text) == "" {
		return MarkerNone
	}
	folded := folder.String(text)

	incorrect := containsAny(folded, incorrectSymbols)
	if negatedRe.MatchString(folded) {
		incorrect = true
		folded = negatedRe.ReplaceAllString(folded, " ")
	}
	incorrect = incorrect || incorrectWordsRe.MatchString(folded)
	correct := containsAny(folded, correctSymbols) || correctWordsRe.MatchString(folded)

	switch {
	case correct && incorrect:
		return MarkerAmbiguous
	case correct:
		return MarkerCorrect
	case incorrect:
		return MarkerIncorrect
	}
	return MarkerNone
}

// ClassifyLead returns the marker carried by the opening of text.
// Only marker-shaped openings count: a leading symbol, a "Label:" lead-in
// or a line that is just a short label. Marker words later in ordinary
// prose are ignored.
func ClassifyLead(text string) Marker {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(strings.TrimLeft(line, "*_>#-+ \t"))
	if line == "" {
		return MarkerNone
	}
	folded := folder.String(line)

	if hasPrefixAny(folded, correctSymbols) || hasPrefixAny(folded, incorrectSymbols) {
		return symbolMarker(folded)
	}
	if label := leadLabelRe.FindString(folded); label != "" {
		return Classify(label)
	}
	if bareLabelRe.MatchString(folded) {
		return Classify(folded)
	}
	return MarkerNone
}

func symbolMarker(s string) Marker {
	correct := containsAny(s, correctSymbols)
	incorrect := containsAny(s, incorrectSymbols)
	switch {
	case correct && incorrect:
		return MarkerAmbiguous
	case correct:
		return MarkerCorrect
	case incorrect:
		return MarkerIncorrect
	}
	return MarkerNone
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
