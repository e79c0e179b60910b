package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opentiming/finishline/internal/race"
	"github.com/opentiming/finishline/internal/roster"
)

func testModel(t *testing.T) (Model, *race.Recorder) {
	t.Helper()

	session := race.NewSession()
	session.Name = "test"
	mtb := race.NewCategory("MTB")
	mtb.Participants["101"] = roster.Participant{ID: "101", FirstName: "Alice", LastName: "Smith"}
	road := race.NewCategory("Road")
	session.AddCategory(mtb)
	session.AddCategory(road)

	recorder := race.NewRecorder(session)
	m := NewModel(Options{
		Recorder:    recorder,
		Save:        func() (string, error) { return "/tmp/test.json", nil },
		RecentCount: 10,
	})
	return m, recorder
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, key tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: key})
	return next.(Model)
}

func TestEnterSubmitsBib(t *testing.T) {
	m, recorder := testModel(t)
	recorder.StartTimer("MTB")

	m = typeString(m, "101")
	m = press(m, tea.KeyEnter)

	recorder.View(func(s *race.Session) {
		if s.EntryCount() != 1 {
			t.Errorf("EntryCount = %d, want 1", s.EntryCount())
		}
	})
	if m.input != "" {
		t.Errorf("input should clear after enter, got %q", m.input)
	}
	if !strings.Contains(m.status, "Alice Smith") {
		t.Errorf("status = %q, want a recorded message", m.status)
	}
}

func TestSubmitUnknownIDShowsWarning(t *testing.T) {
	m, recorder := testModel(t)
	recorder.StartTimer("MTB")

	m = typeString(m, "999")
	m = press(m, tea.KeyEnter)

	if m.statusKind != statusWarning {
		t.Errorf("statusKind = %v, want warning; status %q", m.statusKind, m.status)
	}
}

func TestColonEntersCommandMode(t *testing.T) {
	m, _ := testModel(t)

	m = typeString(m, ":start")
	if !m.commandMode {
		t.Error("typing ':' should enter command mode")
	}
	m = press(m, tea.KeyEscape)
	if m.commandMode || m.input != "" {
		t.Error("esc should clear the input and leave command mode")
	}
}

func TestTimerCommands(t *testing.T) {
	m, recorder := testModel(t)

	m = typeString(m, ":start MTB")
	m = press(m, tea.KeyEnter)

	recorder.View(func(s *race.Session) {
		c, _ := s.Category("MTB")
		if !c.Timer.Running() {
			t.Error(":start MTB should start the MTB timer")
		}
	})

	// Without an argument the selected category is used.
	m = typeString(m, ":pause")
	m = press(m, tea.KeyEnter)
	recorder.View(func(s *race.Session) {
		c, _ := s.Category("MTB")
		if c.Timer.State != race.TimerPaused {
			t.Errorf("timer state = %v, want paused", c.Timer.State)
		}
	})
}

func TestTabCyclesSelection(t *testing.T) {
	m, _ := testModel(t)

	if got := m.selectedCategory(); got != "MTB" {
		t.Errorf("initial selection = %q, want MTB", got)
	}
	m = press(m, tea.KeyTab)
	if got := m.selectedCategory(); got != "Road" {
		t.Errorf("after tab = %q, want Road", got)
	}
	m = press(m, tea.KeyTab)
	if got := m.selectedCategory(); got != "MTB" {
		t.Errorf("after second tab = %q, want MTB", got)
	}
}

func TestDNFCommand(t *testing.T) {
	m, recorder := testModel(t)
	recorder.StartTimer("MTB")
	res, _ := recorder.Submit("101")

	m = typeString(m, ":dnf 1")
	m = press(m, tea.KeyEnter)

	recorder.View(func(s *race.Session) {
		c, _ := s.Category("MTB")
		e, _ := c.Entry(res.Entry.EntryID)
		if !e.IsDNF {
			t.Error(":dnf 1 should mark the most recent entry")
		}
	})
}

func TestEditCommand(t *testing.T) {
	m, recorder := testModel(t)
	recorder.StartTimer("MTB")
	recorder.Submit("101")

	m = typeString(m, ":edit 1 999")
	m = press(m, tea.KeyEnter)

	if m.statusKind != statusWarning {
		t.Errorf("editing to an unknown ID should warn, status %q", m.status)
	}
	recorder.View(func(s *race.Session) {
		entries := s.AllEntries()
		if len(entries) != 1 || entries[0].ParticipantID != "999" || entries[0].IsValidID {
			t.Errorf("entries = %+v", entries[0])
		}
	})
}

func TestUndoKey(t *testing.T) {
	m, recorder := testModel(t)
	recorder.Submit("101")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	m = next.(Model)

	recorder.View(func(s *race.Session) {
		if s.EntryCount() != 0 {
			t.Error("ctrl+z should undo the last entry")
		}
	})

	// Empty stack is a no-op with a notice.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	m = next.(Model)
	if !strings.Contains(m.status, "Nothing to undo") {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuitCommand(t *testing.T) {
	m, _ := testModel(t)
	m = typeString(m, ":q")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal(":q should quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd() = %v, want tea.QuitMsg", msg)
	}
}

func TestViewRenders(t *testing.T) {
	m, recorder := testModel(t)
	recorder.StartTimer("MTB")
	recorder.Submit("101")

	out := m.View()
	for _, want := range []string{"finishline", "MTB", "Road", "101", "bib>"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestTickSchedulesNextTick(t *testing.T) {
	m, _ := testModel(t)
	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}
