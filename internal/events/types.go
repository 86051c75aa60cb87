package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in a harness run
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Skill is the skill under test (empty for process-level events)
	Skill string `json:"skill,omitempty"`

	// Scenario is the scenario name (empty for skill-level events)
	Scenario string `json:"scenario,omitempty"`

	// Iteration is the Ralph loop iteration (nil outside the loop)
	Iteration *int `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Run lifecycle events
const (
	RunStarted   EventType = "run.started"
	RunCompleted EventType = "run.completed"
	RunFailed    EventType = "run.failed"

	// RunCancelled is emitted when a signal interrupts the run
	// Payload: RunCancelledPayload
	RunCancelled EventType = "run.cancelled"
)

// RunCancelledPayload names the signal that cancelled a run
type RunCancelledPayload struct {
	Signal string `json:"signal"`
}

// Criteria events
const (
	CriteriaLoaded  EventType = "criteria.loaded"
	CriteriaWarning EventType = "criteria.warning"
)

// Scenario lifecycle events
const (
	ScenarioStarted   EventType = "scenario.started"
	ScenarioCompleted EventType = "scenario.completed"

	// GenerationFailed is emitted when the provider returns an error or times out
	GenerationFailed EventType = "generation.failed"
)

// Ralph loop events
const (
	// RalphIterationCompleted is emitted after each evaluate step
	// Payload: ralph.IterationPayload
	RalphIterationCompleted EventType = "ralph.iteration.completed"

	// RalphStopped is emitted once per loop with the stop reason
	// Payload: ralph.StoppedPayload
	RalphStopped EventType = "ralph.stopped"
)

// Watch mode events
const (
	WatchTriggered EventType = "watch.triggered"
)

// NewEvent creates an event with the given type and skill
func NewEvent(eventType EventType, skill string) Event {
	return Event{
		Type:  eventType,
		Skill: skill,
	}
}

// WithScenario returns a copy of the event with the scenario set
func (e Event) WithScenario(name string) Event {
	e.Scenario = name
	return e
}

// WithIteration returns a copy of the event with the iteration number set
func (e Event) WithIteration(n int) Event {
	e.Iteration = &n
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Skill != "" {
		parts = append(parts, e.Skill)
	}

	if e.Scenario != "" {
		parts = append(parts, e.Scenario)
	}

	if e.Iteration != nil {
		parts = append(parts, fmt.Sprintf("iteration=#%d", *e.Iteration))
	}

	return strings.Join(parts, " ")
}
