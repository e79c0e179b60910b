package race

import (
	"testing"
	"time"

	"github.com/opentiming/finishline/internal/roster"
)

func testEntry(id string, elapsed time.Duration) *FinishEntry {
	return &FinishEntry{
		EntryID:       NewEntryID(),
		ParticipantID: id,
		ElapsedTime:   elapsed,
		IsValidID:     true,
	}
}

func TestCategory_Ranked(t *testing.T) {
	c := NewCategory("MTB")
	fast := testEntry("101", 90*time.Second)
	slow := testEntry("102", 200*time.Second)
	mid := testEntry("103", 120*time.Second)
	dnf := testEntry("104", 100*time.Second)
	dnf.IsDNF = true

	c.AddEntry(slow)
	c.AddEntry(dnf)
	c.AddEntry(fast)
	c.AddEntry(mid)

	ranked := c.Ranked()
	if len(ranked) != 4 {
		t.Fatalf("len(Ranked()) = %d, want 4", len(ranked))
	}

	wantOrder := []struct {
		rank string
		id   string
	}{
		{"1", "101"},
		{"2", "103"},
		{"3", "102"},
		{"DNF", "104"},
	}
	for i, want := range wantOrder {
		got := ranked[i]
		if got.Rank != want.rank || got.Entry.ParticipantID != want.id {
			t.Errorf("Ranked()[%d] = %s/%s, want %s/%s",
				i, got.Rank, got.Entry.ParticipantID, want.rank, want.id)
		}
	}
}

func TestCategory_RankedTiesKeepSubmissionOrder(t *testing.T) {
	c := NewCategory("MTB")
	first := testEntry("1", time.Minute)
	second := testEntry("2", time.Minute)
	c.AddEntry(first)
	c.AddEntry(second)

	ranked := c.Ranked()
	if ranked[0].Entry.ParticipantID != "1" || ranked[1].Entry.ParticipantID != "2" {
		t.Error("tied elapsed times should keep submission order")
	}
}

func TestCategory_FinishedCountExcludesDNF(t *testing.T) {
	c := NewCategory("MTB")
	c.AddEntry(testEntry("1", time.Minute))
	dnf := testEntry("2", time.Minute)
	dnf.IsDNF = true
	c.AddEntry(dnf)

	if got := c.FinishedCount(); got != 1 {
		t.Errorf("FinishedCount() = %d, want 1", got)
	}
	if got := len(c.Entries); got != 2 {
		t.Errorf("ledger size = %d, want 2 (DNF stays in ledger)", got)
	}
}

func TestCategory_RemoveEntry(t *testing.T) {
	c := NewCategory("MTB")
	e := testEntry("1", time.Minute)
	c.AddEntry(e)

	if !c.RemoveEntry(e.EntryID) {
		t.Error("RemoveEntry should report true for a present entry")
	}
	if c.RemoveEntry(e.EntryID) {
		t.Error("RemoveEntry should report false for a missing entry")
	}
	if len(c.Entries) != 0 {
		t.Errorf("ledger size = %d, want 0", len(c.Entries))
	}
}

func TestCategory_RecentEntries(t *testing.T) {
	c := NewCategory("MTB")
	for i := 0; i < 5; i++ {
		c.AddEntry(testEntry("x", time.Duration(i)*time.Second))
	}

	recent := c.RecentEntries(3)
	if len(recent) != 3 {
		t.Fatalf("len(RecentEntries(3)) = %d, want 3", len(recent))
	}
	if recent[0].ElapsedTime != 2*time.Second {
		t.Errorf("RecentEntries should keep the newest entries, got first = %v", recent[0].ElapsedTime)
	}
}

func TestCategory_Participants(t *testing.T) {
	c := NewCategory("MTB")
	c.Participants["101"] = roster.Participant{ID: "101", FirstName: "Alice", LastName: "Smith"}

	if !c.HasParticipant("101") || !c.HasParticipant(" 101 ") {
		t.Error("HasParticipant should match trimmed IDs")
	}
	if c.HasParticipant("999") {
		t.Error("HasParticipant should miss unknown IDs")
	}

	p, ok := c.Participant("101")
	if !ok || p.FirstName != "Alice" {
		t.Errorf("Participant(101) = %+v, %v", p, ok)
	}
}
