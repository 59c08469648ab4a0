package session

import (
	"sync"
	"time"
)

// DefaultHistoryCap bounds per-session history when no cap is configured.
const DefaultHistoryCap = 50

// record is the mutable per-user state. Each record carries its own
// mutex so operations on one user never block another user's requests;
// the store-level lock only guards the map itself.
type record struct {
	mu sync.Mutex

	programme          string
	currentTerm        string
	selectedCourseCode string
	mode               Mode
	history            []Turn
	createdAt          time.Time
	updatedAt          time.Time
}

// Store is a keyed in-memory session store. Sessions are created lazily
// on first access and live until Reset; operations for one user id are
// serialized, operations across user ids run independently.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*record
	historyCap int

	onEvict func()          // optional callback per evicted history turn
	onCount func(count int) // optional callback when the session count changes
}

// NewStore creates a session store. historyCap <= 0 selects
// DefaultHistoryCap.
func NewStore(historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Store{
		sessions:   make(map[string]*record),
		historyCap: historyCap,
	}
}

// OnEvict sets a callback invoked once per history turn silently evicted.
func (s *Store) OnEvict(fn func()) {
	s.onEvict = fn
}

// OnCount sets a callback invoked when the number of live sessions changes.
func (s *Store) OnCount(fn func(count int)) {
	s.onCount = fn
}

// get returns the record for userID, creating it lazily.
func (s *Store) get(userID string) *record {
	s.mu.RLock()
	rec, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	// Double-check after acquiring the write lock.
	rec, ok = s.sessions[userID]
	if !ok {
		now := time.Now()
		rec = &record{mode: ModeUnset, createdAt: now, updatedAt: now}
		s.sessions[userID] = rec
		if s.onCount != nil {
			s.onCount(len(s.sessions))
		}
	}
	s.mu.Unlock()
	return rec
}

// Snapshot returns an immutable copy of the session for userID,
// creating the session if it does not exist yet.
func (s *Store) Snapshot(userID string) Snapshot {
	rec := s.get(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	history := make([]Turn, len(rec.history))
	copy(history, rec.history)

	return Snapshot{
		UserID:             userID,
		Programme:          rec.programme,
		CurrentTerm:        rec.currentTerm,
		SelectedCourseCode: rec.selectedCourseCode,
		Mode:               rec.mode,
		History:            history,
		CreatedAt:          rec.createdAt,
		UpdatedAt:          rec.updatedAt,
	}
}

// SetProgramme persists the detected programme into the session.
func (s *Store) SetProgramme(userID, programme string) {
	rec := s.get(userID)
	rec.mu.Lock()
	rec.programme = programme
	rec.updatedAt = time.Now()
	rec.mu.Unlock()
}

// SetCurrentTerm persists the student's current term.
func (s *Store) SetCurrentTerm(userID, term string) {
	rec := s.get(userID)
	rec.mu.Lock()
	rec.currentTerm = term
	rec.updatedAt = time.Now()
	rec.mu.Unlock()
}

// SetMode persists the conversation mode.
func (s *Store) SetMode(userID string, mode Mode) {
	rec := s.get(userID)
	rec.mu.Lock()
	rec.mode = mode
	rec.updatedAt = time.Now()
	rec.mu.Unlock()
}

// SetSelectedCourse persists the course the conversation is focused on.
func (s *Store) SetSelectedCourse(userID, courseCode string) {
	rec := s.get(userID)
	rec.mu.Lock()
	rec.selectedCourseCode = courseCode
	rec.updatedAt = time.Now()
	rec.mu.Unlock()
}

// AddToHistory appends one turn. Once the history cap is reached the
// oldest turn is evicted silently; eviction is not an error condition.
func (s *Store) AddToHistory(userID, role, text string) {
	rec := s.get(userID)
	rec.mu.Lock()
	rec.history = append(rec.history, Turn{Role: role, Text: text, At: time.Now()})
	evicted := 0
	for len(rec.history) > s.historyCap {
		rec.history = rec.history[1:]
		evicted++
	}
	rec.updatedAt = time.Now()
	rec.mu.Unlock()

	if s.onEvict != nil {
		for range evicted {
			s.onEvict()
		}
	}
}

// Reset clears history, mode, programme, term and selected course but
// keeps the identity slot: the next request from the same user id reuses
// it immediately.
func (s *Store) Reset(userID string) {
	s.mu.RLock()
	rec, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	rec.mu.Lock()
	rec.programme = ""
	rec.currentTerm = ""
	rec.selectedCourseCode = ""
	rec.mode = ModeUnset
	rec.history = nil
	rec.updatedAt = time.Now()
	rec.mu.Unlock()
}

// Count returns the number of sessions currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
