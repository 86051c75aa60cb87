package criteria

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by errors.Is for a missing criteria document
var ErrNotFound = errors.New("acceptance criteria not found")

// NotFoundError reports a skill without an acceptance-criteria document
type NotFoundError struct {
	Skill string
	Path  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("acceptance criteria for skill %q not found at %s", e.Skill, e.Path)
}

// Is makes errors.Is(err, ErrNotFound) succeed
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidSkillError reports a skill name that cannot name a directory
type InvalidSkillError struct {
	Skill string
}

func (e *InvalidSkillError) Error() string {
	return fmt.Sprintf("invalid skill name %q", e.Skill)
}
