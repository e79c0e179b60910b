package race

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FinishEntry records one timing event for a submitted bib number.
// FinishTime and ElapsedTime are set once at creation and never
// recomputed, even when the entry is later edited or moved to another
// category.
type FinishEntry struct {
	EntryID       string
	ParticipantID string
	CategoryName  string
	FinishTime    time.Time
	ElapsedTime   time.Duration

	// Identity snapshot from the roster at last resolution. Blank when
	// IsValidID is false.
	FirstName string
	LastName  string
	Team      string
	BirthYear string
	Gender    string

	IsValidID bool
	IsDNF     bool
	Notes     string
}

// NewEntryID returns a fresh globally unique entry identifier.
func NewEntryID() string {
	return uuid.NewString()
}

// FullName returns the participant's display name, falling back to the
// raw ID when no identity is known.
func (e *FinishEntry) FullName() string {
	switch {
	case e.FirstName != "" && e.LastName != "":
		return e.FirstName + " " + e.LastName
	case e.FirstName != "":
		return e.FirstName
	case e.LastName != "":
		return e.LastName
	default:
		return fmt.Sprintf("ID: %s", e.ParticipantID)
	}
}

// FormatElapsed renders the elapsed time as HH:MM:SS.
func (e *FinishEntry) FormatElapsed() string {
	return FormatClock(e.ElapsedTime)
}

// FormatFinish renders the wall-clock finish time as HH:MM:SS.
func (e *FinishEntry) FormatFinish() string {
	return e.FinishTime.Format("15:04:05")
}

func (e *FinishEntry) clearIdentity() {
	e.FirstName = ""
	e.LastName = ""
	e.Team = ""
	e.BirthYear = ""
	e.Gender = ""
}
