// Package archive keeps final standings of ended sessions in a local
// SQLite database, so results survive after the session files
// themselves are rotated away.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/opentiming/finishline/internal/race"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed results archival.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the archive database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ArchivedSession is one archived session header row.
type ArchivedSession struct {
	ID            int64
	Name          string
	CreatedAt     time.Time
	ArchivedAt    time.Time
	CategoryCount int
	EntryCount    int
}

// Result is one archived result row.
type Result struct {
	Category      string
	Rank          string
	ParticipantID string
	FirstName     string
	LastName      string
	Team          string
	BirthYear     string
	Gender        string
	FinishTime    string
	ElapsedTime   string
	IsValidID     bool
	IsDNF         bool
	Notes         string
}

// ArchiveSession writes the session's final standings in one
// transaction and returns the archive row ID.
func (s *Store) ArchiveSession(session *race.Session) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO sessions (name, created_at, archived_at, category_count, entry_count)
		VALUES (?, ?, ?, ?, ?)
	`, session.Name, session.CreatedAt, time.Now(), len(session.Categories), session.EntryCount())
	if err != nil {
		return 0, err
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (session_id, category, rank, participant_id, first_name, last_name,
			team, birth_year, gender, finish_time, elapsed_time, is_valid_id, is_dnf, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, c := range session.Categories {
		for _, row := range c.Ranked() {
			e := row.Entry
			if _, err := stmt.Exec(
				sessionID,
				c.Name,
				row.Rank,
				e.ParticipantID,
				e.FirstName,
				e.LastName,
				e.Team,
				e.BirthYear,
				e.Gender,
				e.FormatFinish(),
				race.FormatDuration(e.ElapsedTime),
				e.IsValidID,
				e.IsDNF,
				e.Notes,
			); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return sessionID, nil
}

// ListSessions returns archived session headers, newest first.
func (s *Store) ListSessions() ([]*ArchivedSession, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, archived_at, category_count, entry_count
		FROM sessions ORDER BY archived_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*ArchivedSession
	for rows.Next() {
		var a ArchivedSession
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.ArchivedAt, &a.CategoryCount, &a.EntryCount); err != nil {
			return nil, err
		}
		sessions = append(sessions, &a)
	}
	return sessions, rows.Err()
}

// SessionResults returns the archived result rows for one session in
// category and rank order.
func (s *Store) SessionResults(sessionID int64) ([]*Result, error) {
	rows, err := s.db.Query(`
		SELECT category, rank, participant_id, first_name, last_name, team,
			birth_year, gender, finish_time, elapsed_time, is_valid_id, is_dnf, notes
		FROM results WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var r Result
		var firstName, lastName, team, birthYear, gender, notes sql.NullString
		if err := rows.Scan(&r.Category, &r.Rank, &r.ParticipantID, &firstName, &lastName,
			&team, &birthYear, &gender, &r.FinishTime, &r.ElapsedTime, &r.IsValidID, &r.IsDNF, &notes); err != nil {
			return nil, err
		}
		r.FirstName = firstName.String
		r.LastName = lastName.String
		r.Team = team.String
		r.BirthYear = birthYear.String
		r.Gender = gender.String
		r.Notes = notes.String
		results = append(results, &r)
	}
	return results, rows.Err()
}
