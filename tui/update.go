package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opentiming/finishline/internal/race"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab":
			if names := m.categoryNames(); len(names) > 0 {
				m.selected = (m.selected + 1) % len(names)
			}

		case "ctrl+z":
			m.undo()

		case "ctrl+s":
			m.saveSession()

		case "esc":
			m.input = ""
			m.commandMode = false

		case "backspace":
			if m.input != "" {
				m.input = m.input[:len(m.input)-1]
			}
			if m.input == "" {
				m.commandMode = false
			}

		case "enter":
			line := m.input
			m.input = ""
			m.commandMode = false
			if strings.HasPrefix(line, ":") {
				if quit := m.runCommand(strings.TrimPrefix(line, ":")); quit {
					return m, tea.Quit
				}
			} else {
				m.submit(line)
			}

		default:
			if msg.Type == tea.KeyRunes {
				m.input += string(msg.Runes)
				if strings.HasPrefix(m.input, ":") {
					m.commandMode = true
				}
			} else if msg.Type == tea.KeySpace {
				m.input += " "
			}
		}
	}

	return m, nil
}

func (m *Model) submit(raw string) {
	res, err := m.recorder.Submit(raw)
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("Error: %v", err))
		return
	}
	if res == nil {
		return
	}
	if len(res.Warnings) > 0 {
		m.setStatus(statusWarning, "Warning: "+strings.Join(res.Warnings, "; "))
		return
	}
	m.setStatus(statusSuccess, fmt.Sprintf("Recorded: %s (%s) - %s",
		res.Entry.FullName(), res.Entry.ParticipantID, res.Entry.FormatElapsed()))
}

func (m *Model) undo() {
	entry, ok := m.recorder.Undo()
	if !ok {
		m.setStatus(statusInfo, "Nothing to undo")
		return
	}
	m.setStatus(statusWarning, fmt.Sprintf("Undone: %s", entry.ParticipantID))
}

func (m *Model) saveSession() {
	if m.save == nil {
		return
	}
	path, err := m.save()
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("Save failed: %v", err))
		return
	}
	m.setStatus(statusSuccess, fmt.Sprintf("Session saved to %s", path))
}

// runCommand executes a ":" command; it reports whether to quit.
func (m *Model) runCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "q", "quit":
		return true

	case "help":
		m.setStatus(statusInfo,
			":start/:pause/:stop/:reset [category]  :edit N ID  :dnf N  :undnf N  :del N  :undo  :save  :export PATH  :quit")

	case "start", "pause", "stop", "reset":
		m.timerCommand(cmd, args)

	case "undo":
		m.undo()

	case "save":
		m.saveSession()

	case "export":
		if m.export == nil {
			return false
		}
		if len(args) != 1 {
			m.setStatus(statusError, "Usage: :export PATH")
			return false
		}
		if err := m.export(args[0]); err != nil {
			m.setStatus(statusError, fmt.Sprintf("Export failed: %v", err))
		} else {
			m.setStatus(statusSuccess, fmt.Sprintf("Results exported to %s", args[0]))
		}

	case "edit":
		if len(args) != 2 {
			m.setStatus(statusError, "Usage: :edit N NEW-ID")
			return false
		}
		entry, ok := m.recentEntry(args[0])
		if !ok {
			return false
		}
		res := m.recorder.Edit(entry.EntryID, args[1])
		switch {
		case res == nil:
			m.setStatus(statusInfo, "No change")
		case !res.Valid:
			m.setStatus(statusWarning, fmt.Sprintf("ID %s not found in any category", args[1]))
		case res.Moved:
			m.setStatus(statusSuccess, fmt.Sprintf("Updated: %s, moved %s -> %s",
				res.Entry.FullName(), res.FromCategory, res.Entry.CategoryName))
		default:
			m.setStatus(statusSuccess, fmt.Sprintf("Updated: %s (%s)", res.Entry.FullName(), args[1]))
		}

	case "dnf", "undnf":
		if len(args) != 1 {
			m.setStatus(statusError, "Usage: :"+cmd+" N")
			return false
		}
		entry, ok := m.recentEntry(args[0])
		if !ok {
			return false
		}
		if _, ok := m.recorder.MarkDNF(entry.EntryID, cmd == "dnf"); ok {
			m.setStatus(statusWarning, fmt.Sprintf("%s: %s", strings.ToUpper(cmd), entry.ParticipantID))
		}

	case "del", "delete":
		if len(args) != 1 {
			m.setStatus(statusError, "Usage: :del N")
			return false
		}
		entry, ok := m.recentEntry(args[0])
		if !ok {
			return false
		}
		if deleted, ok := m.recorder.Delete(entry.EntryID); ok {
			m.setStatus(statusWarning, fmt.Sprintf("Deleted entry for %s", deleted.ParticipantID))
		}

	default:
		m.setStatus(statusError, fmt.Sprintf("Unknown command :%s", cmd))
	}
	return false
}

func (m *Model) timerCommand(cmd string, args []string) {
	name := m.selectedCategory()
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}
	if name == "" {
		m.setStatus(statusError, "No categories loaded")
		return
	}

	var ok bool
	switch cmd {
	case "start":
		ok = m.recorder.StartTimer(name)
	case "pause":
		ok = m.recorder.PauseTimer(name)
	case "stop":
		ok = m.recorder.StopTimer(name)
	case "reset":
		ok = m.recorder.ResetTimer(name)
	}
	if !ok {
		m.setStatus(statusError, fmt.Sprintf("No category named %q", name))
		return
	}
	m.setStatus(statusInfo, fmt.Sprintf("Timer %s: %s", cmd, name))
}

// recentEntry resolves a 1-based index into the recent entries list
// as displayed.
func (m *Model) recentEntry(arg string) (*race.FinishEntry, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		m.setStatus(statusError, fmt.Sprintf("Bad entry number %q", arg))
		return nil, false
	}

	var entry *race.FinishEntry
	m.recorder.View(func(s *race.Session) {
		recent := s.RecentEntries(m.recentCount)
		if n <= len(recent) {
			entry = recent[n-1]
		}
	})
	if entry == nil {
		m.setStatus(statusError, fmt.Sprintf("No recent entry #%d", n))
		return nil, false
	}
	return entry, true
}
