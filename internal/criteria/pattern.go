package criteria

// Kind classifies an example fence in an acceptance-criteria document
type Kind string

const (
	KindCorrect   Kind = "correct"
	KindIncorrect Kind = "incorrect"
)

// CodePattern is one fenced example extracted from an acceptance-criteria document.
// Patterns are created once by the loader and never mutated afterwards.
type CodePattern struct {
	// Code is the literal fence text
	Code string `json:"code"`

	// Kind is correct or incorrect usage
	Kind Kind `json:"kind"`

	// Language is the fence language, or the skill language when the fence has none
	Language Language `json:"language"`

	// Section is the title of the enclosing "##" section (empty before the first one)
	Section string `json:"section,omitempty"`

	// Index is the position of the pattern among classified fences, in document order
	Index int `json:"index"`

	// ImportLines holds the import statements found in Code, in order
	ImportLines []string `json:"import_lines,omitempty"`

	// BodyLines holds the remaining statement lines with comments stripped
	BodyLines []string `json:"body_lines,omitempty"`

	// IsImportOnly is true when the fence contains nothing but imports.
	// For such patterns the import path itself is the defect.
	IsImportOnly bool `json:"is_import_only"`
}

// IsMixed reports whether the pattern combines imports with usage lines
func (p *CodePattern) IsMixed() bool {
	return !p.IsImportOnly
}

// Section summarizes one "##" section of a criteria document
type Section struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Correct     int    `json:"correct"`
	Incorrect   int    `json:"incorrect"`
}

// Set holds every pattern parsed for one skill.
// A Set is read-only after Load returns and is shared by all evaluations of the skill.
type Set struct {
	SkillName  string   `json:"skill_name"`
	Language   Language `json:"language"`
	SourcePath string   `json:"source_path,omitempty"`

	CorrectPatterns   []*CodePattern `json:"correct_patterns"`
	IncorrectPatterns []*CodePattern `json:"incorrect_patterns"`

	Sections []Section `json:"sections,omitempty"`

	// Warnings collects non-fatal load problems such as ambiguous fences
	Warnings []string `json:"warnings,omitempty"`
}

// Len returns the total number of classified patterns
func (s *Set) Len() int {
	return len(s.CorrectPatterns) + len(s.IncorrectPatterns)
}

// Patterns returns all patterns in document order
func (s *Set) Patterns() []*CodePattern {
	all := make([]*CodePattern, 0, s.Len())
	i, j := 0, 0
	for i < len(s.CorrectPatterns) || j < len(s.IncorrectPatterns) {
		switch {
		case j >= len(s.IncorrectPatterns):
			all = append(all, s.CorrectPatterns[i])
			i++
		case i >= len(s.CorrectPatterns):
			all = append(all, s.IncorrectPatterns[j])
			j++
		case s.CorrectPatterns[i].Index < s.IncorrectPatterns[j].Index:
			all = append(all, s.CorrectPatterns[i])
			i++
		default:
			all = append(all, s.IncorrectPatterns[j])
			j++
		}
	}
	return all
}
