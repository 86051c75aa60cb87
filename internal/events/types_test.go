package events

import (
	"errors"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(ScenarioStarted, "demo-py")

	if event.Type != ScenarioStarted {
		t.Errorf("expected Type to be %q, got %q", ScenarioStarted, event.Type)
	}

	if event.Skill != "demo-py" {
		t.Errorf("expected Skill to be %q, got %q", "demo-py", event.Skill)
	}
}

func TestEvent_WithIteration(t *testing.T) {
	event := NewEvent(RalphIterationCompleted, "demo-py")
	withIter := event.WithIteration(2)

	if withIter.Iteration == nil {
		t.Fatal("expected Iteration pointer to be set")
	}

	if *withIter.Iteration != 2 {
		t.Errorf("expected Iteration to be 2, got %d", *withIter.Iteration)
	}

	if event.Iteration != nil {
		t.Error("expected original event to be unchanged")
	}
}

func TestEvent_WithScenarioAndPayload(t *testing.T) {
	event := NewEvent(ScenarioCompleted, "demo-py").
		WithScenario("basic").
		WithPayload(map[string]int{"score": 90})

	if event.Scenario != "basic" {
		t.Errorf("expected Scenario to be basic, got %q", event.Scenario)
	}

	payload, ok := event.Payload.(map[string]int)
	if !ok || payload["score"] != 90 {
		t.Errorf("unexpected payload: %#v", event.Payload)
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent(GenerationFailed, "demo-py").WithError(errors.New("timeout"))

	if event.Error != "timeout" {
		t.Errorf("expected Error to be %q, got %q", "timeout", event.Error)
	}

	if NewEvent(GenerationFailed, "demo-py").WithError(nil).Error != "" {
		t.Error("expected nil error to leave Error empty")
	}
}

func TestEvent_IsFailure(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      bool
	}{
		{RunFailed, true},
		{GenerationFailed, true},
		{RunCompleted, false},
		{RalphStopped, false},
	}

	for _, tt := range tests {
		if got := NewEvent(tt.eventType, "").IsFailure(); got != tt.want {
			t.Errorf("IsFailure(%s) = %v, want %v", tt.eventType, got, tt.want)
		}
	}
}

func TestEvent_String(t *testing.T) {
	event := NewEvent(RalphIterationCompleted, "demo-py").WithScenario("basic").WithIteration(3)

	want := "[ralph.iteration.completed] demo-py basic iteration=#3"
	if got := event.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
