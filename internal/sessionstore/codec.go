package sessionstore

import (
	"fmt"
	"time"

	"github.com/opentiming/finishline/internal/race"
	"github.com/opentiming/finishline/internal/roster"
)

// timestampLayout is the written form: ISO-8601 at microsecond
// precision without a zone suffix.
const timestampLayout = "2006-01-02T15:04:05.000000"

// parseLayouts are the accepted forms on load. Files written by this
// tool use the first; the rest tolerate hand-edited files.
var parseLayouts = []string{
	timestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

type sessionJSON struct {
	SessionName string         `json:"session_name"`
	CreatedAt   string         `json:"created_at"`
	LastSaved   *string        `json:"last_saved"`
	Categories  []categoryJSON `json:"categories"`
}

type categoryJSON struct {
	Name         string                        `json:"name"`
	CSVPath      *string                       `json:"csv_path"`
	IDColumn     string                        `json:"id_column"`
	Timer        timerJSON                     `json:"timer"`
	Entries      []entryJSON                   `json:"entries"`
	Participants map[string]roster.Participant `json:"participants"`
}

type timerJSON struct {
	State       string  `json:"state"`
	StartTime   *string `json:"start_time"`
	StopTime    *string `json:"stop_time"`
	PauseTime   *string `json:"pause_time"`
	PausedTotal string  `json:"accumulated_pause_duration"`
}

type entryJSON struct {
	EntryID       string `json:"entry_id"`
	ParticipantID string `json:"participant_id"`
	CategoryName  string `json:"category_name"`
	FinishTime    string `json:"finish_time"`
	ElapsedTime   string `json:"elapsed_time"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Team          string `json:"team"`
	BirthYear     string `json:"birth_year"`
	Gender        string `json:"gender"`
	IsValidID     bool   `json:"is_valid_id"`
	IsDNF         bool   `json:"is_dnf"`
	Notes         string `json:"notes"`
}

func formatTime(t time.Time) string {
	return t.Format(timestampLayout)
}

func formatTimePtr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := formatTime(t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseTimePtr(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return parseTime(*s)
}

func encodeSession(s *race.Session) sessionJSON {
	out := sessionJSON{
		SessionName: s.Name,
		CreatedAt:   formatTime(s.CreatedAt),
		LastSaved:   formatTimePtr(s.LastSaved),
		Categories:  make([]categoryJSON, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, encodeCategory(c))
	}
	return out
}

func encodeCategory(c *race.Category) categoryJSON {
	out := categoryJSON{
		Name:         c.Name,
		IDColumn:     c.IDColumn,
		Timer:        encodeTimer(c.Timer),
		Entries:      make([]entryJSON, 0, len(c.Entries)),
		Participants: c.Participants,
	}
	if c.CSVPath != "" {
		path := c.CSVPath
		out.CSVPath = &path
	}
	for _, e := range c.Entries {
		out.Entries = append(out.Entries, encodeEntry(e))
	}
	return out
}

func encodeTimer(t *race.Timer) timerJSON {
	return timerJSON{
		State:       string(t.State),
		StartTime:   formatTimePtr(t.StartTime),
		StopTime:    formatTimePtr(t.StopTime),
		PauseTime:   formatTimePtr(t.PauseTime),
		PausedTotal: race.FormatDuration(t.PausedTotal),
	}
}

func encodeEntry(e *race.FinishEntry) entryJSON {
	return entryJSON{
		EntryID:       e.EntryID,
		ParticipantID: e.ParticipantID,
		CategoryName:  e.CategoryName,
		FinishTime:    formatTime(e.FinishTime),
		ElapsedTime:   race.FormatDuration(e.ElapsedTime),
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Team:          e.Team,
		BirthYear:     e.BirthYear,
		Gender:        e.Gender,
		IsValidID:     e.IsValidID,
		IsDNF:         e.IsDNF,
		Notes:         e.Notes,
	}
}

func decodeSession(in sessionJSON) (*race.Session, error) {
	createdAt, err := parseTime(in.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("session created_at: %w", err)
	}
	lastSaved, err := parseTimePtr(in.LastSaved)
	if err != nil {
		return nil, fmt.Errorf("session last_saved: %w", err)
	}

	s := &race.Session{
		Name:      in.SessionName,
		CreatedAt: createdAt,
		LastSaved: lastSaved,
	}
	for _, cj := range in.Categories {
		c, err := decodeCategory(cj)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cj.Name, err)
		}
		s.AddCategory(c)
	}
	return s, nil
}

func decodeCategory(in categoryJSON) (*race.Category, error) {
	timer, err := decodeTimer(in.Timer)
	if err != nil {
		return nil, fmt.Errorf("timer: %w", err)
	}

	c := race.NewCategory(in.Name)
	c.IDColumn = in.IDColumn
	c.Timer = timer
	if in.CSVPath != nil {
		c.CSVPath = *in.CSVPath
	}
	if in.Participants != nil {
		c.Participants = in.Participants
	}
	for _, ej := range in.Entries {
		e, err := decodeEntry(ej)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", ej.EntryID, err)
		}
		c.AddEntry(e)
	}
	return c, nil
}

func decodeTimer(in timerJSON) (*race.Timer, error) {
	switch race.TimerState(in.State) {
	case race.TimerNotStarted, race.TimerRunning, race.TimerPaused, race.TimerStopped:
	default:
		return nil, fmt.Errorf("unknown timer state %q", in.State)
	}

	startTime, err := parseTimePtr(in.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start_time: %w", err)
	}
	stopTime, err := parseTimePtr(in.StopTime)
	if err != nil {
		return nil, fmt.Errorf("stop_time: %w", err)
	}
	pauseTime, err := parseTimePtr(in.PauseTime)
	if err != nil {
		return nil, fmt.Errorf("pause_time: %w", err)
	}
	pausedTotal, err := race.ParseDuration(in.PausedTotal)
	if err != nil {
		return nil, fmt.Errorf("accumulated_pause_duration: %w", err)
	}

	t := race.NewTimer()
	t.State = race.TimerState(in.State)
	t.StartTime = startTime
	t.StopTime = stopTime
	t.PauseTime = pauseTime
	t.PausedTotal = pausedTotal
	return t, nil
}

func decodeEntry(in entryJSON) (*race.FinishEntry, error) {
	finishTime, err := parseTime(in.FinishTime)
	if err != nil {
		return nil, fmt.Errorf("finish_time: %w", err)
	}
	elapsed, err := race.ParseDuration(in.ElapsedTime)
	if err != nil {
		return nil, fmt.Errorf("elapsed_time: %w", err)
	}

	return &race.FinishEntry{
		EntryID:       in.EntryID,
		ParticipantID: in.ParticipantID,
		CategoryName:  in.CategoryName,
		FinishTime:    finishTime,
		ElapsedTime:   elapsed,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Team:          in.Team,
		BirthYear:     in.BirthYear,
		Gender:        in.Gender,
		IsValidID:     in.IsValidID,
		IsDNF:         in.IsDNF,
		Notes:         in.Notes,
	}, nil
}
