package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ScenarioState tracks a scenario that is currently running
type ScenarioState struct {
	Name      string
	Iteration int
	LastScore int
	Scored    bool
	Phase     string
	StartTime time.Time
}

// FinishedScenario is a completed row in the TUI
type FinishedScenario struct {
	Name       string
	Score      int
	Passed     bool
	Iterations int
	StopReason string
}

// Model is the bubbletea model for the TUI
type Model struct {
	// Configuration
	Skill       string
	Provider    string
	Parallelism int
	Ralph       bool
	Styles      Styles

	// State
	TotalScenarios int
	Active         map[string]*ScenarioState
	Finished       []FinishedScenario
	Passed         int
	Failed         int
	StartTime      time.Time
	LogLines       []string
	LogLimit       int
	Width          int
	Height         int

	spinner spinner.Model

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new TUI model
func NewModel(skill string, parallelism int, ralph bool) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		Skill:       skill,
		Parallelism: parallelism,
		Ralph:       ralph,
		Styles:      DefaultStyles(),
		Active:      make(map[string]*ScenarioState),
		StartTime:   time.Now(),
		LogLimit:    8,
		spinner:     sp,
	}
	m.spinner.Style = m.Styles.Spinner
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
	)
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// RunStartedMsg carries the selected scenarios of a run
type RunStartedMsg struct {
	Scenarios []string
	Provider  string
}

// ScenarioStartedMsg indicates a scenario has started
type ScenarioStartedMsg struct {
	Name string
}

// IterationMsg reports a scored Ralph iteration
type IterationMsg struct {
	Scenario  string
	Iteration int
	Score     int
	Stopping  bool
}

// GenerationFailedMsg reports a provider failure
type GenerationFailedMsg struct {
	Scenario string
	Error    string
}

// ScenarioCompletedMsg indicates a scenario has finished
type ScenarioCompletedMsg struct {
	Name       string
	Score      int
	Passed     bool
	Iterations int
	StopReason string
}
