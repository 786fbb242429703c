package models

import (
	"github.com/google/uuid"
	"time"
)

// QuestionSource identifies where a cached question came from.
type QuestionSource string

const (
	QuestionSourceOpenTDB   QuestionSource = "opentdb"
	QuestionSourceGenerated QuestionSource = "generated"
	QuestionSourceManual    QuestionSource = "manual"
)

// Question is a cached multiple-choice question for one age band.
type Question struct {
	ID           uuid.UUID      `json:"id"`
	AgeBand      AgeBand        `json:"age_band"`
	Prompt       string         `json:"prompt"`
	Choices      []string       `json:"choices"`
	CorrectIndex int            `json:"correct_index"`
	Explanation  *string        `json:"explanation,omitempty"`
	DedupKey     string         `json:"dedup_key"`
	QualityScore int            `json:"quality_score"`
	Source       QuestionSource `json:"source"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RoomQuestion records that a question has been served to a room. It is
// bookkeeping for no-repeat selection, not a correctness guarantee.
type RoomQuestion struct {
	RoomID      uuid.UUID `json:"room_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	RoundNumber int       `json:"round_number"`
	UsedAt      time.Time `json:"used_at"`
}
