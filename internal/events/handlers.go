package events

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Logger receives the events (default: no-op)
	Logger *zap.Logger

	// IncludePayload includes event payload in log output
	IncludePayload bool
}

// LogHandler returns a handler that writes each event as a structured log entry.
// Failure events log at warn, run boundaries at info, everything else at debug.
func LogHandler(cfg LogConfig) Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(e Event) {
		fields := make([]zap.Field, 0, 6)
		fields = append(fields, zap.String("event", string(e.Type)))
		if e.Skill != "" {
			fields = append(fields, zap.String("skill", e.Skill))
		}
		if e.Scenario != "" {
			fields = append(fields, zap.String("scenario", e.Scenario))
		}
		if e.Iteration != nil {
			fields = append(fields, zap.Int("iteration", *e.Iteration))
		}
		if cfg.IncludePayload && e.Payload != nil {
			fields = append(fields, zap.Any("payload", e.Payload))
		}
		if e.Error != "" {
			fields = append(fields, zap.String("error", e.Error))
		}

		if ce := logger.Check(levelFor(e), e.String()); ce != nil {
			ce.Write(fields...)
		}
	}
}

func levelFor(e Event) zapcore.Level {
	switch {
	case e.IsFailure() || e.Type == CriteriaWarning || e.Type == RunCancelled:
		return zapcore.WarnLevel
	case e.Type == RunStarted || e.Type == RunCompleted:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
