package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JSONEvent is the wire format for events written to an events file
type JSONEvent struct {
	// Type identifies the event (e.g., "scenario.started", "ralph.stopped")
	Type string `json:"type"`

	// Timestamp is when the event occurred (RFC3339 format)
	Timestamp time.Time `json:"timestamp"`

	Skill     string `json:"skill,omitempty"`
	Scenario  string `json:"scenario,omitempty"`
	Iteration *int   `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// JSONEmitter writes events as JSON lines to a writer.
// Thread-safe for concurrent Emit calls.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter creates a new JSON emitter that writes to w.
// Each event is written as a single JSON line (newline-delimited).
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// Emit converts the Event to JSONEvent wire format and writes it
func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.enc.Encode(ToJSONEvent(event))
}

// JSONEmitterHandler returns a Handler that emits events as JSON lines.
// Encoding errors are logged, not propagated.
func JSONEmitterHandler(emitter *JSONEmitter, logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			logger.Warn("failed to emit JSON event", zap.String("event", string(e.Type)), zap.Error(err))
		}
	}
}

// ToJSONEvent converts an Event to the wire format
func ToJSONEvent(e Event) JSONEvent {
	return JSONEvent{
		Type:      string(e.Type),
		Timestamp: e.Time,
		Skill:     e.Skill,
		Scenario:  e.Scenario,
		Iteration: e.Iteration,
		Payload:   e.Payload,
		Error:     e.Error,
	}
}
