package cli

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
)

var errSkillRequired = errors.New("a skill name is required (or use --list)")

// ExitError carries the exit code for an error returned by Execute
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks err as an invalid invocation; nil stays nil
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitUsage, Err: err}
}

// ExitCode maps an Execute error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailed
}
