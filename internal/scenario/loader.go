package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDir is where scenario directories live, relative to the base directory
	DefaultDir = "tests/scenarios"

	// FileName is the scenario file inside a skill's scenario directory
	FileName = "scenarios.yaml"
)

// Loader locates and parses scenario files
type Loader struct {
	BaseDir string

	// Dir is relative to BaseDir
	Dir string
}

// NewLoader creates a Loader rooted at baseDir with the default layout
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir, Dir: DefaultDir}
}

// Path returns the scenario file location of a skill
func (l *Loader) Path(skill string) string {
	return filepath.Join(l.BaseDir, l.Dir, skill, FileName)
}

// Load reads and validates the scenario file of a skill.
// A missing file returns *NotFoundError; invalid entries return joined
// *ValidationError values.
func (l *Loader) Load(skill string) (*File, error) {
	path := l.Path(skill)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Skill: skill, Path: path}
		}
		return nil, fmt.Errorf("failed to read scenarios for %s: %w", skill, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes and validates scenario file content
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names, prompts, and patterns of every scenario
func Validate(f *File) error {
	var errs []error
	seen := make(map[string]int)

	for i, s := range f.Scenarios {
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			errs = append(errs, &ValidationError{Index: i, Field: "name", Message: "must not be empty"})
		default:
			if first, dup := seen[name]; dup {
				errs = append(errs, &ValidationError{
					Index:   i,
					Name:    name,
					Field:   "name",
					Message: fmt.Sprintf("duplicates scenarios[%d]", first),
				})
			} else {
				seen[name] = i
			}
		}

		if strings.TrimSpace(s.Prompt) == "" {
			errs = append(errs, &ValidationError{Index: i, Name: name, Field: "prompt", Message: "must not be empty"})
		}
		for j, p := range s.ExpectedPatterns {
			if p == "" {
				errs = append(errs, &ValidationError{Index: i, Name: name, Field: fmt.Sprintf("expected_patterns[%d]", j), Message: "must not be empty"})
			}
		}
		for j, p := range s.ForbiddenPatterns {
			if p == "" {
				errs = append(errs, &ValidationError{Index: i, Name: name, Field: fmt.Sprintf("forbidden_patterns[%d]", j), Message: "must not be empty"})
			}
		}
	}

	return errors.Join(errs...)
}
