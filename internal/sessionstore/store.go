// Package sessionstore persists sessions as JSON files with
// non-destructive overwrites: an existing file is renamed into the
// backups directory before the new content is written.
package sessionstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/opentiming/finishline/internal/race"
)

// Store reads and writes session files under a data directory.
type Store struct {
	dataDir string
	now     func() time.Time
}

// New creates a store rooted at dataDir. An empty dataDir uses the
// platform default.
func New(dataDir string) *Store {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return &Store{dataDir: dataDir, now: time.Now}
}

// SessionsDir returns the directory holding session files.
func (st *Store) SessionsDir() string {
	return filepath.Join(st.dataDir, "sessions")
}

// BackupsDir returns the directory holding pre-overwrite backups.
func (st *Store) BackupsDir() string {
	return filepath.Join(st.dataDir, "backups")
}

// SessionPath returns the file path for a session name.
func (st *Store) SessionPath(name string) string {
	return filepath.Join(st.SessionsDir(), SafeFilename(name)+".json")
}

// Save writes the session to its file, naming anonymous sessions by
// timestamp. When the target file already exists it is first renamed
// into the backups directory with a timestamp suffix. Updates
// s.LastSaved on success and returns the path written.
func (st *Store) Save(s *race.Session) (string, error) {
	if s.Name == "" {
		s.Name = "session_" + st.now().Format("20060102_150405")
	}
	path := st.SessionPath(s.Name)

	if err := os.MkdirAll(st.SessionsDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating sessions dir: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := st.backup(path); err != nil {
			return "", err
		}
	}

	saved := st.now()
	s.LastSaved = saved

	data, err := json.MarshalIndent(encodeSession(s), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.LastSaved = time.Time{}
		return "", fmt.Errorf("writing session file: %w", err)
	}
	return path, nil
}

func (st *Store) backup(path string) error {
	if err := os.MkdirAll(st.BackupsDir(), 0o755); err != nil {
		return fmt.Errorf("creating backups dir: %w", err)
	}
	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	backupName := fmt.Sprintf("%s_backup_%s.json", stem, st.now().Format("20060102_150405"))
	if err := os.Rename(path, filepath.Join(st.BackupsDir(), backupName)); err != nil {
		return fmt.Errorf("backing up previous session file: %w", err)
	}
	return nil
}

// Load reads a session file. A corrupt or malformed file returns an
// error without producing a partial session.
func (st *Store) Load(path string) (*race.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	s, err := decodeSession(in)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return s, nil
}

// Latest returns the path of the most recently modified session file,
// or "" when none exist.
func (st *Store) Latest() (string, error) {
	matches, err := filepath.Glob(filepath.Join(st.SessionsDir(), "*.json"))
	if err != nil {
		return "", err
	}

	var latest string
	var latestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = path
			latestMod = info.ModTime()
		}
	}
	return latest, nil
}

// List returns all session file paths, newest first.
func (st *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(st.SessionsDir(), "*.json"))
	if err != nil {
		return nil, err
	}

	type dated struct {
		path string
		mod  time.Time
	}
	var files []dated
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, dated{path: path, mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].mod.After(files[j].mod)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
