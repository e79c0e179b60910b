package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/opentiming/finishline/internal/race"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205")).
				Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dnfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Strikethrough(true)

	invalidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inputStyle = lipgloss.NewStyle().
			Bold(true)
)

// View renders the console
func (m Model) View() string {
	var b strings.Builder

	var sessionName string
	var panels []string
	var recentRows []string

	m.recorder.View(func(s *race.Session) {
		sessionName = s.Name
		for i, c := range s.Categories {
			panels = append(panels, renderCategory(c, i == m.selected))
		}
		for i, e := range s.RecentEntries(m.recentCount) {
			recentRows = append(recentRows, renderEntry(i+1, e))
		}
	})

	title := "finishline"
	if sessionName != "" {
		title += " - " + sessionName
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(panels) == 0 {
		b.WriteString(idleStyle.Render("No categories loaded."))
		b.WriteString("\n")
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-3s %-8s %-22s %-12s %-10s %-10s", "#", "ID", "Name", "Category", "Finish", "Elapsed")))
	b.WriteString("\n")
	if len(recentRows) == 0 {
		b.WriteString(idleStyle.Render("  no entries yet"))
		b.WriteString("\n")
	} else {
		for _, row := range recentRows {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	prompt := "bib> "
	if m.commandMode {
		prompt = "cmd> "
	}
	b.WriteString(inputStyle.Render(prompt + m.input + "_"))
	b.WriteString("\n")

	return b.String()
}

func renderCategory(c *race.Category, selected bool) string {
	var state string
	switch c.Timer.State {
	case race.TimerRunning:
		state = runningStyle.Render("RUNNING")
	case race.TimerPaused:
		state = pausedStyle.Render("PAUSED")
	case race.TimerStopped:
		state = idleStyle.Render("STOPPED")
	default:
		state = idleStyle.Render("READY")
	}

	body := fmt.Sprintf("%s\n%s  %s\n%d / %d finished",
		c.Name,
		race.FormatClock(c.Timer.Elapsed(time.Time{})),
		state,
		c.FinishedCount(),
		c.TotalParticipants(),
	)
	if selected {
		return selectedPanelStyle.Render(body)
	}
	return panelStyle.Render(body)
}

func renderEntry(n int, e *race.FinishEntry) string {
	row := fmt.Sprintf("  %-3d %-8s %-22s %-12s %-10s %-10s",
		n, e.ParticipantID, truncate(e.FullName(), 22), e.CategoryName,
		e.FormatFinish(), e.FormatElapsed())

	switch {
	case e.IsDNF:
		return dnfStyle.Render(row)
	case !e.IsValidID:
		return invalidStyle.Render(row)
	default:
		return row
	}
}

func (m Model) renderStatus() string {
	switch m.statusKind {
	case statusSuccess:
		return successStyle.Render(m.status)
	case statusWarning:
		return warningStyle.Render(m.status)
	case statusError:
		return errorStyle.Render(m.status)
	default:
		return m.status
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
