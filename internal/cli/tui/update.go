package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case RunStartedMsg:
		m.TotalScenarios = len(msg.Scenarios)
		m.Provider = msg.Provider

	case ScenarioStartedMsg:
		m.Active[msg.Name] = &ScenarioState{
			Name:      msg.Name,
			Iteration: 1,
			Phase:     "generating",
			StartTime: time.Now(),
		}

	case IterationMsg:
		if sc, ok := m.Active[msg.Scenario]; ok {
			sc.LastScore = msg.Score
			sc.Scored = true
			if msg.Stopping {
				sc.Phase = "finishing"
			} else {
				sc.Iteration = msg.Iteration + 1
				sc.Phase = "regenerating with feedback"
			}
		}

	case GenerationFailedMsg:
		m.appendLog(fmt.Sprintf("%s: %s", msg.Scenario, msg.Error))

	case ScenarioCompletedMsg:
		delete(m.Active, msg.Name)
		m.Finished = append(m.Finished, FinishedScenario(msg))
		if msg.Passed {
			m.Passed++
		} else {
			m.Failed++
		}

	case LogMsg:
		m.appendLog(msg.Line)
	}

	return m, nil
}

func (m *Model) appendLog(line string) {
	m.LogLines = append(m.LogLines, line)
	if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
		m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
	}
}
