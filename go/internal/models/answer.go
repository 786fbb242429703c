package models

import (
	"github.com/google/uuid"
	"time"
)

// Answer is one player's submission for one round. The unique key
// (room_id, player_id, round_number) makes the first write win; later
// submissions for the same round are dropped at the store.
type Answer struct {
	ID          uuid.UUID `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	RoundNumber int       `json:"round_number"`
	QuestionID  uuid.UUID `json:"question_id"`
	AnswerIndex int       `json:"answer_index"`
	IsCorrect   *bool     `json:"is_correct,omitempty"`
	Points      int       `json:"points"`
	AnsweredAt  time.Time `json:"answered_at"`
}

// FeedbackKind categorizes why a question was skipped.
type FeedbackKind string

const (
	FeedbackSkip          FeedbackKind = "skip"
	FeedbackInappropriate FeedbackKind = "inappropriate"
	FeedbackConfusing     FeedbackKind = "confusing"
)

// ValidFeedbackKind reports whether kind is a known feedback category.
func ValidFeedbackKind(kind FeedbackKind) bool {
	switch kind {
	case FeedbackSkip, FeedbackInappropriate, FeedbackConfusing:
		return true
	}
	return false
}

// QuestionFeedback records a player's complaint about a question.
type QuestionFeedback struct {
	ID         uuid.UUID    `json:"id"`
	RoomID     uuid.UUID    `json:"room_id"`
	PlayerID   uuid.UUID    `json:"player_id"`
	QuestionID uuid.UUID    `json:"question_id"`
	Kind       FeedbackKind `json:"kind"`
	CreatedAt  time.Time    `json:"created_at"`
}
