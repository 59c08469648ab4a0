// Package session holds per-user conversational state for multi-turn
// advising: detected programme, current term, conversation mode and a
// bounded history of turns.
package session

import "time"

// Mode is the conversation mode persisted across turns.
type Mode string

// Conversation modes.
const (
	ModeUnset     Mode = "UNSET"
	ModeStructure Mode = "STRUCTURE"
	ModeDetails   Mode = "DETAILS"
	ModeMixed     Mode = "MIXED"
)

// Roles for history turns.
const (
	RoleStudent = "student"
	RoleAdvisor = "advisor"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role string
	Text string
	At   time.Time
}

// Snapshot is an immutable copy of one session, safe to hand to the
// pure router and detector without further locking.
type Snapshot struct {
	UserID             string
	Programme          string
	CurrentTerm        string
	SelectedCourseCode string
	Mode               Mode
	History            []Turn
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HistoryTexts returns just the turn texts, oldest first. Used by the
// programme detector's history scan.
func (s Snapshot) HistoryTexts() []string {
	if len(s.History) == 0 {
		return nil
	}
	texts := make([]string, len(s.History))
	for i, t := range s.History {
		texts[i] = t.Text
	}
	return texts
}
