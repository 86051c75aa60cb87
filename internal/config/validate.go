package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevCBH/skill-harness/internal/provider"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	for _, dir := range []struct {
		field string
		value string
	}{
		{"skills_dir", cfg.SkillsDir},
		{"criteria_file", cfg.CriteriaFile},
		{"scenarios_dir", cfg.ScenariosDir},
	} {
		if dir.value == "" {
			errs = append(errs, &ValidationError{
				Field:   dir.field,
				Value:   dir.value,
				Message: "must not be empty",
			})
		}
	}

	if _, err := provider.ParseType(cfg.Provider.Type); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "provider.type",
			Value:   cfg.Provider.Type,
			Message: "must be one of: mock, claude, ollama, gemini",
		})
	}

	// Empty timeout disables the bound
	if cfg.Provider.Timeout != "" {
		d, err := time.ParseDuration(cfg.Provider.Timeout)
		switch {
		case err != nil:
			errs = append(errs, &ValidationError{
				Field:   "provider.timeout",
				Value:   cfg.Provider.Timeout,
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		case d < 0:
			errs = append(errs, &ValidationError{
				Field:   "provider.timeout",
				Value:   cfg.Provider.Timeout,
				Message: "must not be negative",
			})
		}
	}

	if cfg.Ralph.MaxIterations < 1 {
		errs = append(errs, &ValidationError{
			Field:   "ralph.max_iterations",
			Value:   cfg.Ralph.MaxIterations,
			Message: "must be at least 1",
		})
	}

	if cfg.Ralph.Threshold < 0 || cfg.Ralph.Threshold > 100 {
		errs = append(errs, &ValidationError{
			Field:   "ralph.threshold",
			Value:   cfg.Ralph.Threshold,
			Message: "must be between 0 and 100",
		})
	}

	if cfg.Parallelism < 1 {
		errs = append(errs, &ValidationError{
			Field:   "parallelism",
			Value:   cfg.Parallelism,
			Message: "must be at least 1",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
