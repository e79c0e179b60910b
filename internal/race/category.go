package race

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opentiming/finishline/internal/roster"
)

// Category is one race division: a roster of participants, a timer,
// and the ordered ledger of finish entries recorded against it.
type Category struct {
	Name     string
	CSVPath  string
	IDColumn string
	Timer    *Timer

	// Entries in submission order.
	Entries []*FinishEntry

	// Participants keyed by ID. Built once at load time, read-only
	// afterwards.
	Participants map[string]roster.Participant
}

// NewCategory creates an empty category with a fresh timer.
func NewCategory(name string) *Category {
	return &Category{
		Name:         name,
		Timer:        NewTimer(),
		Participants: make(map[string]roster.Participant),
	}
}

// LoadCategory creates a category backed by a roster file. The file is
// parsed once; a parse failure or missing ID column means the category
// is not created.
func LoadCategory(name, csvPath, idColumn string) (*Category, error) {
	participants, err := roster.Load(csvPath, idColumn)
	if err != nil {
		return nil, err
	}
	c := NewCategory(name)
	c.CSVPath = csvPath
	c.IDColumn = idColumn
	c.Participants = participants
	return c, nil
}

// HasParticipant reports whether the roster contains the given ID.
func (c *Category) HasParticipant(id string) bool {
	_, ok := c.Participants[strings.TrimSpace(id)]
	return ok
}

// Participant returns the roster record for an ID.
func (c *Category) Participant(id string) (roster.Participant, bool) {
	p, ok := c.Participants[strings.TrimSpace(id)]
	return p, ok
}

// AddEntry appends an entry to the ledger.
func (c *Category) AddEntry(e *FinishEntry) {
	c.Entries = append(c.Entries, e)
}

// RemoveEntry removes an entry by ID and reports whether it was found.
func (c *Category) RemoveEntry(entryID string) bool {
	for i, e := range c.Entries {
		if e.EntryID == entryID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entry returns the ledger entry with the given ID, if present.
func (c *Category) Entry(entryID string) (*FinishEntry, bool) {
	for _, e := range c.Entries {
		if e.EntryID == entryID {
			return e, true
		}
	}
	return nil, false
}

// TotalParticipants returns the roster size.
func (c *Category) TotalParticipants() int {
	return len(c.Participants)
}

// FinishedCount returns the number of non-DNF entries.
func (c *Category) FinishedCount() int {
	n := 0
	for _, e := range c.Entries {
		if !e.IsDNF {
			n++
		}
	}
	return n
}

// SortedEntries returns all entries ordered by ascending elapsed time.
// The sort is stable, so ties keep submission order.
func (c *Category) SortedEntries() []*FinishEntry {
	sorted := make([]*FinishEntry, len(c.Entries))
	copy(sorted, c.Entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ElapsedTime < sorted[j].ElapsedTime
	})
	return sorted
}

// RankedEntry pairs an entry with its rank label: a 1-based position
// among non-DNF finishers, or "DNF".
type RankedEntry struct {
	Rank  string
	Entry *FinishEntry
}

// Ranked returns entries in result order: finishers ranked by elapsed
// time, then DNF entries. DNF entries never consume a rank number.
func (c *Category) Ranked() []RankedEntry {
	sorted := c.SortedEntries()
	ranked := make([]RankedEntry, 0, len(sorted))

	rank := 0
	for _, e := range sorted {
		if e.IsDNF {
			continue
		}
		rank++
		ranked = append(ranked, RankedEntry{Rank: strconv.Itoa(rank), Entry: e})
	}
	for _, e := range sorted {
		if e.IsDNF {
			ranked = append(ranked, RankedEntry{Rank: "DNF", Entry: e})
		}
	}
	return ranked
}

// rankOf returns the rank label for one entry of this category.
func (c *Category) rankOf(entry *FinishEntry) string {
	if entry.IsDNF {
		return "DNF"
	}
	rank := 0
	for _, e := range c.SortedEntries() {
		if e.IsDNF {
			continue
		}
		rank++
		if e.EntryID == entry.EntryID {
			return strconv.Itoa(rank)
		}
	}
	return "DNF"
}

// RecentEntries returns up to n of the most recently submitted
// entries, oldest first.
func (c *Category) RecentEntries(n int) []*FinishEntry {
	if len(c.Entries) <= n {
		return c.Entries
	}
	return c.Entries[len(c.Entries)-n:]
}

// sortKey orders entries for combined cross-category views: DNF
// entries sort after every finisher.
func sortKey(e *FinishEntry) time.Duration {
	if e.IsDNF {
		return time.Duration(1<<63 - 1)
	}
	return e.ElapsedTime
}
