package scenario

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by errors.Is for a missing scenario file
var ErrNotFound = errors.New("scenario file not found")

// NotFoundError reports a skill without a scenario file
type NotFoundError struct {
	Skill string
	Path  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scenarios for skill %q not found at %s", e.Skill, e.Path)
}

// Is makes errors.Is(err, ErrNotFound) succeed
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError describes one invalid entry of a scenario file
type ValidationError struct {
	// Index is the 0-based position of the scenario in the file
	Index   int
	Name    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("scenarios[%d] (%s).%s: %s", e.Index, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("scenarios[%d].%s: %s", e.Index, e.Field, e.Message)
}
