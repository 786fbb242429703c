// Package events defines the room event types and payloads that flow
// through the outbox to connected clients.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
)

// Event types, stored in room_outbox.event_type and used as the
// JetStream subject suffix.
const (
	TypeRoomCreated     = "ROOM_CREATED"
	TypePlayerJoined    = "PLAYER_JOINED"
	TypeAnswerSubmitted = "ANSWER_SUBMITTED"
	TypeRoundAdvanced   = "ROUND_ADVANCED"
	TypeQuestionSkipped = "QUESTION_SKIPPED"
	TypeGameReset       = "GAME_RESET"
)

// RoomCreatedPayload announces a new room.
type RoomCreatedPayload struct {
	Code        string         `json:"code"`
	AgeBand     models.AgeBand `json:"age_band"`
	QuestionID  uuid.UUID      `json:"question_id"`
	RoundEndsAt time.Time      `json:"round_ends_at"`
}

// PlayerJoinedPayload announces a new player so lobbies update live.
type PlayerJoinedPayload struct {
	PlayerID  uuid.UUID `json:"player_id"`
	TeamName  string    `json:"team_name"`
	TeamColor string    `json:"team_color"`
}

// AnswerSubmittedPayload tells the room someone locked in. The chosen
// index is deliberately omitted so clients cannot peek.
type AnswerSubmittedPayload struct {
	PlayerID    uuid.UUID `json:"player_id"`
	RoundNumber int       `json:"round_number"`
	AnsweredAt  time.Time `json:"answered_at"`
}

// PlayerScore is one row of the leaderboard delta carried on advance.
type PlayerScore struct {
	PlayerID    uuid.UUID `json:"player_id"`
	TeamName    string    `json:"team_name"`
	TeamColor   string    `json:"team_color"`
	RoundPoints int       `json:"round_points"`
	TotalScore  int       `json:"total_score"`
}

// RoundAdvancedPayload announces the next round: the new question, its
// deadline, and the scores from the round that just closed.
type RoundAdvancedPayload struct {
	RoundNumber int           `json:"round_number"`
	QuestionID  uuid.UUID     `json:"question_id"`
	RoundEndsAt time.Time     `json:"round_ends_at"`
	Scores      []PlayerScore `json:"scores,omitempty"`
}

// QuestionSkippedPayload announces an in-place question swap. The round
// number is unchanged from the round being played.
type QuestionSkippedPayload struct {
	RoundNumber int                 `json:"round_number"`
	QuestionID  uuid.UUID           `json:"question_id"`
	RoundEndsAt time.Time           `json:"round_ends_at"`
	Feedback    models.FeedbackKind `json:"feedback"`
}

// GameResetPayload announces a fresh game in the same room.
type GameResetPayload struct {
	QuestionID  uuid.UUID     `json:"question_id"`
	RoundEndsAt time.Time     `json:"round_ends_at"`
	Players     []PlayerScore `json:"players,omitempty"`
}
