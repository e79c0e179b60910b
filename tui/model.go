package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opentiming/finishline/internal/race"
)

// statusKind colors the status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// SaveFunc persists the session and returns the path written.
type SaveFunc func() (string, error)

// ExportFunc writes the results workbook to the given path.
type ExportFunc func(path string) error

// Model is the operator console model.
type Model struct {
	recorder *race.Recorder
	save     SaveFunc
	export   ExportFunc

	// Input line. Normal mode records bibs; command mode (":") runs
	// corrections and timer control.
	input       string
	commandMode bool

	// UI state
	selected    int // selected category index for timer commands
	recentCount int
	status      string
	statusKind  statusKind
	width       int
	height      int
}

// Options configures a console model.
type Options struct {
	Recorder    *race.Recorder
	Save        SaveFunc
	Export      ExportFunc
	RecentCount int
}

// NewModel creates the console model.
func NewModel(opts Options) Model {
	recent := opts.RecentCount
	if recent <= 0 {
		recent = 15
	}
	return Model{
		recorder:    opts.Recorder,
		save:        opts.Save,
		export:      opts.Export,
		recentCount: recent,
		status:      "Type a bib number and press enter. :help lists commands.",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg refreshes the displayed elapsed times.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// categoryNames returns the session's category names in order.
func (m *Model) categoryNames() []string {
	var names []string
	m.recorder.View(func(s *race.Session) {
		for _, c := range s.Categories {
			names = append(names, c.Name)
		}
	})
	return names
}

// selectedCategory returns the currently selected category name.
func (m *Model) selectedCategory() string {
	names := m.categoryNames()
	if len(names) == 0 {
		return ""
	}
	if m.selected >= len(names) {
		return names[0]
	}
	return names[m.selected]
}
