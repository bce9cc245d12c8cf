package attempt

import (
	"strings"
	"time"
)

// Participant is the quiz taker as enrolled by the surrounding product.
// The engine reads it and touches LastActiveAt on question fetch, nothing else.
type Participant struct {
	ID           string
	DisplayName  string
	Tier         string
	School       string
	LastActiveAt time.Time
}

// Result is one completed attempt. Immutable once written except for the
// rank fields, which the ranking calculator fills in after the window closes.
type Result struct {
	ID              string
	ParticipantID   string
	ParticipantName string
	Score           int
	TotalQuestions  int
	Tier            string
	ElapsedSeconds  int
	Suspicious      bool
	QuizDate        time.Time
	Rank            *int
	RankComputedAt  *time.Time
	CreatedAt       time.Time
}

// ServedQuestion is the authoritative record of one issued question.
type ServedQuestion struct {
	ID           string `json:"id"`
	CorrectIndex int    `json:"correct_index"`
	Category     string `json:"category"`
}

// ServedSet pins down exactly which questions (and answer keys) were issued
// to a participant for a quiz date, so scoring never trusts the client.
type ServedSet struct {
	ParticipantID string
	QuizDate      time.Time
	Tier          string
	Questions     []ServedQuestion
	CreatedAt     time.Time
}

// DateOf truncates an instant to its calendar date in the reference timezone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NormalizeParticipantID canonicalizes identifiers for case-insensitive lookup.
func NormalizeParticipantID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
