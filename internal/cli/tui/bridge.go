package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// Sender is the part of *tea.Program the bridge needs
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	program Sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(program Sender) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		if msg := EventToMsg(evt); msg != nil {
			b.program.Send(msg)
		}
	}
}

// EventToMsg converts an events.Event to a tea.Msg, or nil when the TUI
// does not display it
func EventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.RunStarted:
		msg := RunStartedMsg{}
		if p, ok := evt.Payload.(runner.RunStartedPayload); ok {
			msg.Scenarios = p.Scenarios
			msg.Provider = p.Provider
		}
		return msg

	case events.ScenarioStarted:
		return ScenarioStartedMsg{Name: evt.Scenario}

	case events.RalphIterationCompleted:
		msg := IterationMsg{Scenario: evt.Scenario}
		if evt.Iteration != nil {
			msg.Iteration = *evt.Iteration
		}
		if p, ok := evt.Payload.(ralph.IterationPayload); ok {
			msg.Score = p.Score
			msg.Stopping = p.Stopping
		}
		return msg

	case events.GenerationFailed:
		return GenerationFailedMsg{Scenario: evt.Scenario, Error: evt.Error}

	case events.ScenarioCompleted:
		msg := ScenarioCompletedMsg{Name: evt.Scenario}
		if p, ok := evt.Payload.(runner.ScenarioPayload); ok {
			msg.Score = p.Score
			msg.Passed = p.Passed
			msg.Iterations = p.Iterations
			msg.StopReason = p.StopReason
		}
		return msg

	case events.RunCancelled:
		line := "run cancelled, finishing in-flight scenarios"
		if p, ok := evt.Payload.(events.RunCancelledPayload); ok && p.Signal != "" {
			line = fmt.Sprintf("%s received, finishing in-flight scenarios", p.Signal)
		}
		return LogMsg{Line: line}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
