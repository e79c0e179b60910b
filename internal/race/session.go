package race

import (
	"sort"
	"strings"
	"time"
)

// Session is the full application state: an ordered collection of
// categories. Insertion order is display order and also the search
// order for participant resolution.
type Session struct {
	Name       string
	CreatedAt  time.Time
	LastSaved  time.Time
	Categories []*Category
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{CreatedAt: time.Now()}
}

// AddCategory appends a category to the session.
func (s *Session) AddCategory(c *Category) {
	s.Categories = append(s.Categories, c)
}

// RemoveCategory removes a category by name.
func (s *Session) RemoveCategory(name string) {
	kept := s.Categories[:0]
	for _, c := range s.Categories {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	s.Categories = kept
}

// Category returns the category with the given name, if present.
func (s *Session) Category(name string) (*Category, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FindParticipantCategory returns the first category in session order
// whose roster contains the ID. Cross-category ID collisions are not
// enforced; the first match wins.
func (s *Session) FindParticipantCategory(id string) (*Category, bool) {
	id = strings.TrimSpace(id)
	for _, c := range s.Categories {
		if c.HasParticipant(id) {
			return c, true
		}
	}
	return nil, false
}

// AllEntries returns every entry across all categories sorted by
// finish time, most recent first.
func (s *Session) AllEntries() []*FinishEntry {
	var all []*FinishEntry
	for _, c := range s.Categories {
		all = append(all, c.Entries...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].FinishTime.After(all[j].FinishTime)
	})
	return all
}

// RecentEntries returns up to n of the most recent entries across all
// categories.
func (s *Session) RecentEntries(n int) []*FinishEntry {
	all := s.AllEntries()
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// CombinedResult is one row of the cross-category results view.
type CombinedResult struct {
	CategoryName string
	Rank         string
	Entry        *FinishEntry
}

// CombinedResults returns all entries annotated with their own
// category's rank, globally ordered by elapsed time with DNF entries
// last.
func (s *Session) CombinedResults() []CombinedResult {
	var rows []CombinedResult
	for _, c := range s.Categories {
		for _, e := range c.Entries {
			rows = append(rows, CombinedResult{
				CategoryName: c.Name,
				Rank:         c.rankOf(e),
				Entry:        e,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKey(rows[i].Entry) < sortKey(rows[j].Entry)
	})
	return rows
}

// InvalidEntries returns entries whose participant ID did not resolve
// against any roster, paired with their category names.
func (s *Session) InvalidEntries() []CombinedResult {
	var rows []CombinedResult
	for _, c := range s.Categories {
		for _, e := range c.Entries {
			if !e.IsValidID {
				rows = append(rows, CombinedResult{CategoryName: c.Name, Entry: e})
			}
		}
	}
	return rows
}

// EntryCount returns the total number of entries in the session.
func (s *Session) EntryCount() int {
	n := 0
	for _, c := range s.Categories {
		n += len(c.Entries)
	}
	return n
}

// Clear resets the session to its initial empty state.
func (s *Session) Clear() {
	s.Categories = nil
	s.Name = ""
	s.CreatedAt = time.Now()
	s.LastSaved = time.Time{}
}
