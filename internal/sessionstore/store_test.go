package sessionstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opentiming/finishline/internal/race"
	"github.com/opentiming/finishline/internal/roster"
)

func fixtureSession() *race.Session {
	s := race.NewSession()
	s.Name = "spring-cup"
	s.CreatedAt = time.Date(2025, 6, 14, 8, 30, 0, 0, time.Local)

	mtb := race.NewCategory("MTB")
	mtb.CSVPath = "/tmp/mtb.csv"
	mtb.IDColumn = "A"
	mtb.Participants["101"] = roster.Participant{
		ID: "101", FirstName: "Alice", LastName: "Smith", Team: "Vertex", BirthYear: "1990", Gender: "F",
	}
	mtb.Timer.State = race.TimerRunning
	mtb.Timer.StartTime = time.Date(2025, 6, 14, 9, 0, 0, 123456000, time.Local)
	mtb.Timer.PausedTotal = 90*time.Second + 250000*time.Microsecond

	mtb.AddEntry(&race.FinishEntry{
		EntryID:       race.NewEntryID(),
		ParticipantID: "101",
		CategoryName:  "MTB",
		FinishTime:    time.Date(2025, 6, 14, 9, 1, 35, 500000000, time.Local),
		ElapsedTime:   95*time.Second + 123456*time.Microsecond,
		FirstName:     "Alice",
		LastName:      "Smith",
		Team:          "Vertex",
		BirthYear:     "1990",
		Gender:        "F",
		IsValidID:     true,
	})
	mtb.AddEntry(&race.FinishEntry{
		EntryID:       race.NewEntryID(),
		ParticipantID: "999",
		CategoryName:  "MTB",
		FinishTime:    time.Date(2025, 6, 14, 9, 2, 0, 0, time.Local),
		ElapsedTime:   2 * time.Minute,
		IsDNF:         true,
		Notes:         "crashed at gate 4",
	})
	s.AddCategory(mtb)

	road := race.NewCategory("Road")
	road.IDColumn = "B"
	s.AddCategory(road)
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	s := fixtureSession()

	path, err := st.Save(s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := st.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != "spring-cup" {
		t.Errorf("Name = %q", loaded.Name)
	}
	if !loaded.CreatedAt.Equal(s.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, s.CreatedAt)
	}
	if loaded.LastSaved.IsZero() {
		t.Error("LastSaved should be set after a save")
	}
	if len(loaded.Categories) != 2 {
		t.Fatalf("len(Categories) = %d, want 2", len(loaded.Categories))
	}

	mtb := loaded.Categories[0]
	orig := s.Categories[0]
	if mtb.Name != "MTB" || mtb.CSVPath != "/tmp/mtb.csv" || mtb.IDColumn != "A" {
		t.Errorf("category header = %q/%q/%q", mtb.Name, mtb.CSVPath, mtb.IDColumn)
	}
	if mtb.Timer.State != race.TimerRunning {
		t.Errorf("timer state = %v", mtb.Timer.State)
	}
	if !mtb.Timer.StartTime.Equal(orig.Timer.StartTime) {
		t.Errorf("timer start = %v, want %v", mtb.Timer.StartTime, orig.Timer.StartTime)
	}
	if mtb.Timer.PausedTotal != orig.Timer.PausedTotal {
		t.Errorf("paused total = %v, want %v", mtb.Timer.PausedTotal, orig.Timer.PausedTotal)
	}

	if len(mtb.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(mtb.Entries))
	}
	e, oe := mtb.Entries[0], orig.Entries[0]
	if e.EntryID != oe.EntryID || e.ParticipantID != oe.ParticipantID {
		t.Errorf("entry identity = %q/%q", e.EntryID, e.ParticipantID)
	}
	// Microsecond precision is the contract.
	if e.ElapsedTime != oe.ElapsedTime {
		t.Errorf("elapsed = %v, want %v", e.ElapsedTime, oe.ElapsedTime)
	}
	if !e.FinishTime.Equal(oe.FinishTime) {
		t.Errorf("finish = %v, want %v", e.FinishTime, oe.FinishTime)
	}
	if e.FirstName != "Alice" || e.Team != "Vertex" || !e.IsValidID {
		t.Errorf("identity snapshot lost: %+v", e)
	}
	if dnf := mtb.Entries[1]; !dnf.IsDNF || dnf.Notes != "crashed at gate 4" {
		t.Errorf("dnf entry = %+v", dnf)
	}

	if mtb.Participants["101"].LastName != "Smith" {
		t.Errorf("participants = %+v", mtb.Participants)
	}
	if road := loaded.Categories[1]; road.Timer.State != race.TimerNotStarted {
		t.Errorf("road timer = %v, want not_started", road.Timer.State)
	}
}

func TestStore_SaveBacksUpExisting(t *testing.T) {
	st := New(t.TempDir())
	s := fixtureSession()

	if _, err := st.Save(s); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := st.Save(s); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	backups, err := filepath.Glob(filepath.Join(st.BackupsDir(), "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("len(backups) = %d, want 1", len(backups))
	}
	if !strings.Contains(filepath.Base(backups[0]), "spring-cup_backup_") {
		t.Errorf("backup name = %q", backups[0])
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	st := New(t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(path); err == nil {
		t.Error("expected an error for a corrupt file")
	}
}

func TestStore_LoadBadDuration(t *testing.T) {
	st := New(t.TempDir())
	s := fixtureSession()
	path, err := st.Save(s)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Violate the H:MM:SS contract and expect a fatal load error.
	mangled := strings.Replace(string(data), "0:01:35.123456", "95 seconds", 1)
	if mangled == string(data) {
		t.Fatal("fixture did not contain the expected duration string")
	}
	if err := os.WriteFile(path, []byte(mangled), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Load(path); err == nil {
		t.Error("expected a hard error for a malformed duration")
	}
}

func TestStore_Latest(t *testing.T) {
	st := New(t.TempDir())

	if latest, err := st.Latest(); err != nil || latest != "" {
		t.Errorf("Latest on empty dir = %q, %v", latest, err)
	}

	older := fixtureSession()
	older.Name = "older"
	olderPath, err := st.Save(older)
	if err != nil {
		t.Fatal(err)
	}
	newer := fixtureSession()
	newer.Name = "newer"
	newerPath, err := st.Save(newer)
	if err != nil {
		t.Fatal(err)
	}

	// Make modification order unambiguous.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(olderPath, past, past); err != nil {
		t.Fatal(err)
	}

	latest, err := st.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != newerPath {
		t.Errorf("Latest = %q, want %q", latest, newerPath)
	}

	paths, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 || paths[0] != newerPath {
		t.Errorf("List = %v, want newest first", paths)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spring-cup", "spring-cup"},
		{`race: heat/2 *final*`, "race_ heat_2 _final_"},
		{"...", "unnamed"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
