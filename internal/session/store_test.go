package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestLazyCreation(t *testing.T) {
	t.Parallel()
	s := NewStore(10)

	snap := s.Snapshot("u1")
	if snap.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", snap.UserID)
	}
	if snap.Mode != ModeUnset {
		t.Errorf("Mode = %q, want UNSET", snap.Mode)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}

	// A second access reuses the same session.
	s.SetProgramme("u1", "Applied AI")
	if got := s.Snapshot("u1").Programme; got != "Applied AI" {
		t.Errorf("Programme = %q, want Applied AI", got)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1 after reuse", s.Count())
	}
}

func TestHistoryRingBuffer(t *testing.T) {
	t.Parallel()

	const histCap = 5
	s := NewStore(histCap)

	evictions := 0
	s.OnEvict(func() { evictions++ })

	for i := range histCap + 1 {
		s.AddToHistory("u1", RoleStudent, fmt.Sprintf("turn %d", i))
	}

	history := s.Snapshot("u1").History
	if len(history) != histCap {
		t.Fatalf("history length = %d, want %d", len(history), histCap)
	}
	// Oldest entry (turn 0) must be gone.
	if history[0].Text != "turn 1" {
		t.Errorf("oldest surviving turn = %q, want 'turn 1'", history[0].Text)
	}
	if history[histCap-1].Text != fmt.Sprintf("turn %d", histCap) {
		t.Errorf("newest turn = %q", history[histCap-1].Text)
	}
	if evictions != 1 {
		t.Errorf("evictions = %d, want 1", evictions)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	s := NewStore(10)

	s.SetProgramme("u1", "Applied AI")
	s.SetCurrentTerm("u1", "Year2_T1")
	s.SetSelectedCourse("u1", "ACE6313")
	s.SetMode("u1", ModeDetails)
	s.AddToHistory("u1", RoleStudent, "hello")

	s.Reset("u1")

	snap := s.Snapshot("u1")
	if snap.Programme != "" || snap.CurrentTerm != "" || snap.SelectedCourseCode != "" {
		t.Errorf("reset should clear fields: %+v", snap)
	}
	if snap.Mode != ModeUnset {
		t.Errorf("Mode = %q, want UNSET", snap.Mode)
	}
	if len(snap.History) != 0 {
		t.Errorf("history should be cleared, got %d turns", len(snap.History))
	}

	// Identity slot is reusable immediately.
	s.SetProgramme("u1", "Intelligent Robotics")
	if got := s.Snapshot("u1").Programme; got != "Intelligent Robotics" {
		t.Errorf("Programme after reuse = %q", got)
	}

	// Resetting an unknown user is a no-op.
	s.Reset("nobody")
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	s := NewStore(10)

	s.AddToHistory("u1", RoleStudent, "original")
	snap := s.Snapshot("u1")
	snap.History[0].Text = "mutated"

	if got := s.Snapshot("u1").History[0].Text; got != "original" {
		t.Errorf("mutating a snapshot leaked into the store: %q", got)
	}
}

func TestHistoryTexts(t *testing.T) {
	t.Parallel()
	s := NewStore(10)

	s.AddToHistory("u1", RoleStudent, "first")
	s.AddToHistory("u1", RoleAdvisor, "second")

	texts := s.Snapshot("u1").HistoryTexts()
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Errorf("HistoryTexts() = %v", texts)
	}
}

func TestConcurrentAccessSameUser(t *testing.T) {
	t.Parallel()

	const turns = 200
	s := NewStore(turns)

	var wg sync.WaitGroup
	for i := range turns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddToHistory("u1", RoleStudent, fmt.Sprintf("turn %d", i))
		}(i)
	}
	wg.Wait()

	if got := len(s.Snapshot("u1").History); got != turns {
		t.Errorf("history length = %d, want %d (no lost appends)", got, turns)
	}
}

func TestConcurrentAccessDistinctUsers(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	counts := 0
	s.OnCount(func(c int) { counts = c })

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			s.SetProgramme(user, "FAIE")
			s.AddToHistory(user, RoleStudent, "hi")
		}(i)
	}
	wg.Wait()

	if s.Count() != 50 {
		t.Errorf("Count() = %d, want 50", s.Count())
	}
	if counts == 0 {
		t.Error("OnCount callback never fired")
	}
}
