package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
)

// AnswerStore is the slice of the answer store the engine needs.
type AnswerStore interface {
	ListByRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]models.Answer, error)
	SetResult(ctx context.Context, id uuid.UUID, correct bool, points int) error
}

// PlayerStore is the slice of the player store the engine needs.
type PlayerStore interface {
	AddScore(ctx context.Context, id uuid.UUID, points int) error
}

// PlayerResult is one player's outcome for a round.
type PlayerResult struct {
	PlayerID    uuid.UUID `json:"player_id"`
	AnswerIndex int       `json:"answer_index"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
}

// RoundSummary reports what a round scoring pass did.
type RoundSummary struct {
	RoomID      uuid.UUID      `json:"room_id"`
	RoundNumber int            `json:"round_number"`
	Results     []PlayerResult `json:"results"`
}

// Engine scores a round's answers. Callers run it with tx-bound stores
// so the awards commit or roll back together with the round advance.
type Engine struct {
	answers AnswerStore
	players PlayerStore
}

func NewEngine(answers AnswerStore, players PlayerStore) *Engine {
	return &Engine{answers: answers, players: players}
}

// ScoreRound marks every answer of the round and credits player totals.
// Only answers for the scored question count; answers left over from a
// question that was skipped mid-round are marked incorrect. If nobody
// was correct every answer is marked and nothing is awarded.
func (e *Engine) ScoreRound(ctx context.Context, roomID uuid.UUID, roundNumber int, question *models.Question, deadline *time.Time) (*RoundSummary, error) {
	answers, err := e.answers.ListByRound(ctx, roomID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for scoring: %w", err)
	}

	summary := &RoundSummary{RoomID: roomID, RoundNumber: roundNumber}
	for _, a := range answers {
		correct := a.QuestionID == question.ID && a.AnswerIndex == question.CorrectIndex
		points := 0
		if correct {
			points = Points(deadline, a.AnsweredAt)
		}
		if err := e.answers.SetResult(ctx, a.ID, correct, points); err != nil {
			return nil, fmt.Errorf("failed to record answer result: %w", err)
		}
		if points > 0 {
			if err := e.players.AddScore(ctx, a.PlayerID, points); err != nil {
				return nil, fmt.Errorf("failed to award points: %w", err)
			}
		}
		summary.Results = append(summary.Results, PlayerResult{
			PlayerID:    a.PlayerID,
			AnswerIndex: a.AnswerIndex,
			Correct:     correct,
			Points:      points,
		})
	}
	return summary, nil
}
