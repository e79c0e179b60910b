package race

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNoCategories is returned by Submit when the session has no
// categories to record against.
var ErrNoCategories = errors.New("no categories configured")

// undoDepth bounds the undo stack; the oldest record is dropped
// silently on overflow.
const undoDepth = 10

// undoRecord identifies one entry creation. Undo resolves identifiers
// back to live objects at pop time, so an intervening edit or
// cross-category move never leaves the stack pointing at a stale slot.
type undoRecord struct {
	entryID      string
	categoryName string
}

// SubmitResult reports the outcome of one bib submission.
type SubmitResult struct {
	Entry        *FinishEntry
	CategoryName string
	Warnings     []string
}

// EditResult reports the outcome of correcting an entry's ID.
type EditResult struct {
	Entry *FinishEntry
	Valid bool
	// Moved is set when the new ID belongs to a different category and
	// the entry changed ledgers.
	Moved bool
	// FromCategory is the previous owner when Moved is set.
	FromCategory string
}

// Recorder runs the entry-reconciliation workflow over a session:
// submit, edit, delete, DNF, undo, and timer control. It serializes
// all mutation behind a mutex so the autosave loop and the live
// results server can read while the operator console mutates.
type Recorder struct {
	mu      sync.RWMutex
	session *Session
	undo    []undoRecord

	// owner indexes entry ID to current owning category name.
	owner map[string]string

	onEntry func(*FinishEntry)
	now     func() time.Time
}

// NewRecorder creates a recorder over the given session.
func NewRecorder(s *Session) *Recorder {
	r := &Recorder{now: time.Now}
	r.attach(s)
	return r
}

// Replace swaps in a different session (e.g. after loading one from
// disk), rebuilding the entry index and clearing the undo stack.
func (r *Recorder) Replace(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attach(s)
}

func (r *Recorder) attach(s *Session) {
	r.session = s
	r.undo = nil
	r.owner = make(map[string]string)
	for _, c := range s.Categories {
		for _, e := range c.Entries {
			r.owner[e.EntryID] = c.Name
		}
	}
}

// SetEntryListener registers a callback invoked after each successful
// submission. Must be set before the recorder is shared.
func (r *Recorder) SetEntryListener(fn func(*FinishEntry)) {
	r.onEntry = fn
}

// View runs fn with read access to the session. fn must not retain or
// mutate the session.
func (r *Recorder) View(fn func(*Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.session)
}

// Update runs fn with exclusive access to the session, for mutations
// outside the recorder's own workflow (adding categories, renaming).
func (r *Recorder) Update(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.session)
	// Categories may have been added or removed; refresh the index.
	r.reindex()
}

func (r *Recorder) reindex() {
	r.owner = make(map[string]string)
	for _, c := range r.session.Categories {
		for _, e := range c.Entries {
			r.owner[e.EntryID] = c.Name
		}
	}
}

// Submit records a finish for a raw operator-typed ID. An empty input
// is a no-op returning (nil, nil). An ID missing from every roster
// still produces an entry, flagged invalid, attributed to the first
// running category (or the first category). Only an empty session
// fails.
func (r *Recorder) Submit(raw string) (*SubmitResult, error) {
	r.mu.Lock()
	res, err := r.submitLocked(raw)
	r.mu.Unlock()

	if err == nil && res != nil && r.onEntry != nil {
		r.onEntry(res.Entry)
	}
	return res, err
}

func (r *Recorder) submitLocked(raw string) (*SubmitResult, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return nil, nil
	}

	var warnings []string

	category, found := r.session.FindParticipantCategory(id)
	if !found {
		warnings = append(warnings,
			fmt.Sprintf("ID %s not found in any category; entry recorded as invalid", id))
		for _, c := range r.session.Categories {
			if c.Timer.Running() {
				category = c
				break
			}
		}
		if category == nil && len(r.session.Categories) > 0 {
			category = r.session.Categories[0]
		}
		if category == nil {
			return nil, ErrNoCategories
		}
	}

	if !category.Timer.Running() {
		warnings = append(warnings,
			fmt.Sprintf("timer for %s is not running", category.Name))
	}

	finishTime := r.now()
	entry := &FinishEntry{
		EntryID:       NewEntryID(),
		ParticipantID: id,
		CategoryName:  category.Name,
		FinishTime:    finishTime,
		ElapsedTime:   category.Timer.Elapsed(finishTime),
		IsValidID:     found,
	}
	if p, ok := category.Participant(id); ok && found {
		entry.FirstName = p.FirstName
		entry.LastName = p.LastName
		entry.Team = p.Team
		entry.BirthYear = p.BirthYear
		entry.Gender = p.Gender
	}

	category.AddEntry(entry)
	r.owner[entry.EntryID] = category.Name

	r.undo = append(r.undo, undoRecord{entryID: entry.EntryID, categoryName: category.Name})
	if len(r.undo) > undoDepth {
		r.undo = r.undo[1:]
	}

	return &SubmitResult{Entry: entry, CategoryName: category.Name, Warnings: warnings}, nil
}

// Edit corrects an entry's participant ID, re-resolving it against
// every roster. A match in a different category moves the entry to
// that category's ledger; no match marks it invalid in place. Finish
// and elapsed times are never recomputed. Unknown entry IDs and
// unchanged values are no-ops returning nil.
func (r *Recorder) Edit(entryID, newID string) *EditResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	newID = strings.TrimSpace(newID)
	if newID == "" {
		return nil
	}

	current, entry := r.findLocked(entryID)
	if entry == nil || entry.ParticipantID == newID {
		return nil
	}

	entry.ParticipantID = newID

	target, found := r.session.FindParticipantCategory(newID)
	if !found {
		entry.IsValidID = false
		entry.clearIdentity()
		return &EditResult{Entry: entry, Valid: false}
	}

	p, _ := target.Participant(newID)
	entry.FirstName = p.FirstName
	entry.LastName = p.LastName
	entry.Team = p.Team
	entry.BirthYear = p.BirthYear
	entry.Gender = p.Gender
	entry.IsValidID = true

	res := &EditResult{Entry: entry, Valid: true}
	if target.Name != current.Name {
		// Remove before append so a failure cannot duplicate the entry.
		if current.RemoveEntry(entry.EntryID) {
			entry.CategoryName = target.Name
			target.AddEntry(entry)
			r.owner[entry.EntryID] = target.Name
			res.Moved = true
			res.FromCategory = current.Name
		}
	}
	return res
}

// Undo removes the most recently created entry, wherever it lives
// now. Edits and DNF marks are never undone. Returns false when the
// stack is empty.
func (r *Recorder) Undo() (*FinishEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.undo) == 0 {
		return nil, false
	}
	rec := r.undo[len(r.undo)-1]
	r.undo = r.undo[:len(r.undo)-1]

	category, entry := r.findLocked(rec.entryID)
	if entry == nil {
		// Already removed by an explicit delete; the record is spent.
		return nil, false
	}
	category.RemoveEntry(entry.EntryID)
	delete(r.owner, entry.EntryID)
	return entry, true
}

// Delete removes an entry from its owning ledger. Irreversible: no
// undo record is pushed.
func (r *Recorder) Delete(entryID string) (*FinishEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, entry := r.findLocked(entryID)
	if entry == nil {
		return nil, false
	}
	category.RemoveEntry(entryID)
	delete(r.owner, entryID)
	return entry, true
}

// MarkDNF sets or clears an entry's DNF flag in place.
func (r *Recorder) MarkDNF(entryID string, dnf bool) (*FinishEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, entry := r.findLocked(entryID)
	if entry == nil {
		return nil, false
	}
	entry.IsDNF = dnf
	return entry, true
}

// findLocked resolves an entry ID to its current owning category and
// live entry via the owner index.
func (r *Recorder) findLocked(entryID string) (*Category, *FinishEntry) {
	name, ok := r.owner[entryID]
	if !ok {
		return nil, nil
	}
	category, ok := r.session.Category(name)
	if !ok {
		return nil, nil
	}
	entry, ok := category.Entry(entryID)
	if !ok {
		return nil, nil
	}
	return category, entry
}

// StartTimer starts or resumes a category's timer.
func (r *Recorder) StartTimer(categoryName string) bool {
	return r.withTimer(categoryName, (*Timer).Start)
}

// PauseTimer pauses a category's timer.
func (r *Recorder) PauseTimer(categoryName string) bool {
	return r.withTimer(categoryName, (*Timer).Pause)
}

// StopTimer stops a category's timer.
func (r *Recorder) StopTimer(categoryName string) bool {
	return r.withTimer(categoryName, (*Timer).Stop)
}

// ResetTimer resets a category's timer to not-started.
func (r *Recorder) ResetTimer(categoryName string) bool {
	return r.withTimer(categoryName, (*Timer).Reset)
}

func (r *Recorder) withTimer(categoryName string, fn func(*Timer)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.session.Category(categoryName)
	if !ok {
		return false
	}
	fn(category.Timer)
	return true
}

// UndoDepth returns the number of undoable creations.
func (r *Recorder) UndoDepth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.undo)
}
