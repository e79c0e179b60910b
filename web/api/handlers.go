package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/opentiming/finishline/internal/race"
)

// EntryPayload is the wire shape of one finish entry.
type EntryPayload struct {
	EntryID       string `json:"entry_id"`
	ParticipantID string `json:"participant_id"`
	Category      string `json:"category"`
	Name          string `json:"name"`
	Team          string `json:"team"`
	FinishTime    string `json:"finish_time"`
	ElapsedTime   string `json:"elapsed_time"`
	IsValidID     bool   `json:"is_valid_id"`
	IsDNF         bool   `json:"is_dnf"`
}

// ResultPayload is one ranked row of the combined results.
type ResultPayload struct {
	Rank string `json:"rank"`
	EntryPayload
}

// CategoryPayload summarizes one category for status displays.
type CategoryPayload struct {
	Name         string `json:"name"`
	TimerState   string `json:"timer_state"`
	Elapsed      string `json:"elapsed"`
	Finished     int    `json:"finished"`
	Participants int    `json:"participants"`
}

func entryPayload(e *race.FinishEntry) EntryPayload {
	return EntryPayload{
		EntryID:       e.EntryID,
		ParticipantID: e.ParticipantID,
		Category:      e.CategoryName,
		Name:          e.FullName(),
		Team:          e.Team,
		FinishTime:    e.FormatFinish(),
		ElapsedTime:   e.FormatElapsed(),
		IsValidID:     e.IsValidID,
		IsDNF:         e.IsDNF,
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			SessionName string `json:"session_name"`
			Categories  int    `json:"categories"`
			Entries     int    `json:"entries"`
		}
		s.recorder.View(func(session *race.Session) {
			payload.SessionName = session.Name
			payload.Categories = len(session.Categories)
			payload.Entries = session.EntryCount()
		})
		writeJSON(w, payload)
	}
}

func (s *Server) categoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := []CategoryPayload{}
		s.recorder.View(func(session *race.Session) {
			for _, c := range session.Categories {
				payload = append(payload, CategoryPayload{
					Name:         c.Name,
					TimerState:   string(c.Timer.State),
					Elapsed:      race.FormatClock(c.Timer.Elapsed(time.Time{})),
					Finished:     c.FinishedCount(),
					Participants: c.TotalParticipants(),
				})
			}
		})
		writeJSON(w, payload)
	}
}

func (s *Server) resultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := []ResultPayload{}
		s.recorder.View(func(session *race.Session) {
			for _, row := range session.CombinedResults() {
				payload = append(payload, ResultPayload{
					Rank:         row.Rank,
					EntryPayload: entryPayload(row.Entry),
				})
			}
		})
		writeJSON(w, payload)
	}
}

func (s *Server) recentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := 15
		if raw := r.URL.Query().Get("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeError(w, http.StatusBadRequest, "n must be a positive integer")
				return
			}
			n = parsed
		}

		payload := []EntryPayload{}
		s.recorder.View(func(session *race.Session) {
			for _, e := range session.RecentEntries(n) {
				payload = append(payload, entryPayload(e))
			}
		})
		writeJSON(w, payload)
	}
}
