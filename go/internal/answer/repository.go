package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// Repository runs answer queries against a pool or a transaction.
type Repository struct {
	db sqlutil.DB
}

func NewRepository(db sqlutil.DB) *Repository {
	return &Repository{db: db}
}

// InsertAnswerRequest carries one submission.
type InsertAnswerRequest struct {
	ID          uuid.UUID
	RoomID      uuid.UUID
	PlayerID    uuid.UUID
	RoundNumber int
	QuestionID  uuid.UUID
	AnswerIndex int
	AnsweredAt  time.Time
}

// Insert stores a submission. The first write per (room, player, round)
// wins; a conflicting insert is dropped and reported as not inserted.
func (r *Repository) Insert(ctx context.Context, req InsertAnswerRequest) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO answers (id, room_id, player_id, round_number, question_id, answer_index, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT answers_room_player_round_key DO NOTHING`,
		req.ID, req.RoomID, req.PlayerID, req.RoundNumber, req.QuestionID, req.AnswerIndex, req.AnsweredAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert answer: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ListByRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]models.Answer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, player_id, round_number, question_id, answer_index, is_correct, points, answered_at
		FROM answers
		WHERE room_id = $1 AND round_number = $2
		ORDER BY answered_at`,
		roomID, roundNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		err := rows.Scan(
			&a.ID, &a.RoomID, &a.PlayerID, &a.RoundNumber, &a.QuestionID,
			&a.AnswerIndex, &a.IsCorrect, &a.Points, &a.AnsweredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SetResult records the scoring outcome for one answer.
func (r *Repository) SetResult(ctx context.Context, id uuid.UUID, correct bool, points int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE answers SET is_correct = $2, points = $3 WHERE id = $1`,
		id, correct, points,
	)
	if err != nil {
		return fmt.Errorf("failed to set answer result: %w", err)
	}
	return nil
}

// PlayerIDsForRound returns who has answered in a round, for the
// all-answered early close check.
func (r *Repository) PlayerIDsForRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player_id FROM answers WHERE room_id = $1 AND round_number = $2`,
		roomID, roundNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered players: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan answered player: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
