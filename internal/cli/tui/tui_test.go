package tui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/runner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeSender) all() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tea.Msg(nil), f.msgs...)
}

func TestEventToMsg(t *testing.T) {
	started := events.NewEvent(events.RunStarted, "demo").WithPayload(runner.RunStartedPayload{
		Scenarios: []string{"a", "b"},
		Provider:  "mock",
	})
	assert.Equal(t, RunStartedMsg{Scenarios: []string{"a", "b"}, Provider: "mock"}, EventToMsg(started))

	iter := events.NewEvent(events.RalphIterationCompleted, "demo").
		WithScenario("a").
		WithIteration(2).
		WithPayload(ralph.IterationPayload{Score: 70, Stopping: true})
	assert.Equal(t, IterationMsg{Scenario: "a", Iteration: 2, Score: 70, Stopping: true}, EventToMsg(iter))

	done := events.NewEvent(events.ScenarioCompleted, "demo").
		WithScenario("a").
		WithPayload(runner.ScenarioPayload{Score: 90, Passed: true, Iterations: 3, StopReason: "threshold_met"})
	assert.Equal(t, ScenarioCompletedMsg{Name: "a", Score: 90, Passed: true, Iterations: 3, StopReason: "threshold_met"}, EventToMsg(done))

	cancelled := events.NewEvent(events.RunCancelled, "demo").WithPayload(events.RunCancelledPayload{Signal: "interrupt"})
	assert.Equal(t, LogMsg{Line: "interrupt received, finishing in-flight scenarios"}, EventToMsg(cancelled))

	assert.Nil(t, EventToMsg(events.NewEvent(events.CriteriaLoaded, "demo")))
}

func TestBridge_Handler(t *testing.T) {
	sender := &fakeSender{}
	bridge := NewBridge(sender)
	handler := bridge.Handler()

	handler(events.NewEvent(events.ScenarioStarted, "demo").WithScenario("a"))
	handler(events.NewEvent(events.CriteriaLoaded, "demo"))
	bridge.SendDone()

	assert.Equal(t, []tea.Msg{ScenarioStartedMsg{Name: "a"}, DoneMsg{}}, sender.all())
}

func TestModel_ScenarioLifecycle(t *testing.T) {
	m := NewModel("demo", 2, true)

	m.Update(RunStartedMsg{Scenarios: []string{"a", "b"}, Provider: "mock"})
	m.Update(ScenarioStartedMsg{Name: "a"})
	m.Update(IterationMsg{Scenario: "a", Iteration: 1, Score: 60})

	require.Contains(t, m.Active, "a")
	assert.Equal(t, 2, m.Active["a"].Iteration)
	assert.Equal(t, 60, m.Active["a"].LastScore)
	assert.Contains(t, m.View(), "last score 60")

	m.Update(ScenarioCompletedMsg{Name: "a", Score: 85, Passed: true, Iterations: 2, StopReason: "threshold_met"})
	m.Update(ScenarioStartedMsg{Name: "b"})
	m.Update(ScenarioCompletedMsg{Name: "b", Score: 40, Passed: false, Iterations: 5, StopReason: "max_iterations"})

	assert.Empty(t, m.Active)
	assert.Equal(t, 1, m.Passed)
	assert.Equal(t, 1, m.Failed)

	view := m.View()
	assert.Contains(t, view, "Skill: demo")
	assert.Contains(t, view, "Scenarios: 2/2")
	assert.Contains(t, view, "2 iterations, threshold_met")
}

func TestModel_LogLinesAreBounded(t *testing.T) {
	m := NewModel("demo", 1, false)
	m.LogLimit = 2

	m.Update(LogMsg{Line: "one"})
	m.Update(GenerationFailedMsg{Scenario: "a", Error: "timeout"})
	m.Update(LogMsg{Line: "three"})

	assert.Equal(t, []string{"a: timeout", "three"}, m.LogLines)
}

func TestModel_QuitAndDone(t *testing.T) {
	m := NewModel("demo", 1, false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.Quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())

	m = NewModel("demo", 1, false)
	m.Update(DoneMsg{})
	assert.True(t, m.Done)
}

func TestLogWriter_SplitsLines(t *testing.T) {
	sender := &fakeSender{}
	w := NewLogWriter(sender)

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\n\npartial"))
	require.NoError(t, err)
	w.Close()

	assert.Equal(t, []tea.Msg{
		LogMsg{Line: "first"},
		LogMsg{Line: "second"},
		LogMsg{Line: "partial"},
	}, sender.all())

	// Writes after Close are dropped
	_, err = w.Write([]byte("late\n"))
	require.NoError(t, err)
	assert.Len(t, sender.all(), 3)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:02:03", formatDuration(3723e9))
}
