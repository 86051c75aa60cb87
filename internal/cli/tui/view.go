package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderFinished())
	b.WriteString(m.renderActive())

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if len(m.LogLines) > 0 {
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and run settings
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))

	info := fmt.Sprintf("provider: %s  parallel: %d", m.Provider, m.Parallelism)
	if m.Provider == "" {
		info = fmt.Sprintf("parallel: %d", m.Parallelism)
	}
	if m.Ralph {
		info += "  ralph"
	}

	return fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("Skill: "+m.Skill),
		m.Styles.Timer.Render(timer),
		m.Styles.Info.Render(info),
	)
}

func (m *Model) renderFinished() string {
	var b strings.Builder
	for _, f := range m.Finished {
		icon := m.Styles.Passed.Render(IconPassed)
		if !f.Passed {
			icon = m.Styles.Failed.Render(IconFailed)
		}
		line := fmt.Sprintf("  %s %s %3d/100", icon, m.Styles.ScenarioName.Render(f.Name), f.Score)
		if m.Ralph && f.Iterations > 0 {
			line += m.Styles.Info.Render(fmt.Sprintf("  %d iterations, %s", f.Iterations, f.StopReason))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderActive renders running scenarios sorted by name for stable display
func (m *Model) renderActive() string {
	if len(m.Active) == 0 {
		if len(m.Finished) == 0 {
			return "  Waiting for scenarios\n\n"
		}
		return "\n"
	}

	names := make([]string, 0, len(m.Active))
	for name := range m.Active {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		sc := m.Active[name]
		phase := sc.Phase
		if m.Ralph {
			phase = fmt.Sprintf("iteration %d: %s", sc.Iteration, sc.Phase)
		}
		line := fmt.Sprintf("  %s %s %s", m.spinner.View(), m.Styles.ScenarioName.Render(sc.Name), m.Styles.Phase.Render(phase))
		if sc.Scored {
			line += " " + m.Styles.Score.Render(fmt.Sprintf("(last score %d)", sc.LastScore))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderStatusLine renders the summary status line
func (m *Model) renderStatusLine() string {
	passed := m.Styles.Passed.Render(fmt.Sprintf("%d passed", m.Passed))
	failed := m.Styles.Failed.Render(fmt.Sprintf("%d failed", m.Failed))

	return fmt.Sprintf("  Scenarios: %d/%d %s | %s | %d running",
		m.Passed+m.Failed,
		m.TotalScenarios,
		passed,
		failed,
		len(m.Active),
	)
}

func (m *Model) renderLogs() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.Styles.LogTitle.Render("  Log"))
	b.WriteString("\n")
	for _, line := range m.LogLines {
		if m.Width > 4 && len(line) > m.Width-4 {
			line = line[:m.Width-4]
		}
		b.WriteString("  " + m.Styles.LogLine.Render(line) + "\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit", key))
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
