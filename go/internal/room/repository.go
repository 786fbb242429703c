package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// Repository runs room queries against a pool or a transaction.
type Repository struct {
	db sqlutil.DB
}

func NewRepository(db sqlutil.DB) *Repository {
	return &Repository{db: db}
}

// CreateRoomRequest carries everything needed to open a room on round 1.
type CreateRoomRequest struct {
	ID          uuid.UUID
	Code        string
	AgeBand     models.AgeBand
	QuestionID  uuid.UUID
	RoundEndsAt time.Time
}

const roomColumns = `id, code, age_band, round_number, current_question_id, round_ends_at, status, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO rooms (id, code, age_band, round_number, current_question_id, round_ends_at, status)
		VALUES ($1, $2, $3, 1, $4, $5, 'active')
		RETURNING `+roomColumns,
		req.ID, req.Code, req.AgeBand, req.QuestionID, req.RoundEndsAt,
	)
	rm, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return rm, nil
}

func (r *Repository) ByCode(ctx context.Context, code string) (*models.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE code = $1`, code)
	rm, err := scanRoom(row)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}
	return rm, nil
}

func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	rm, err := scanRoom(row)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return rm, nil
}

func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check room code: %w", err)
	}
	return exists, nil
}

// AdvanceRound bumps the round, installs the next question and stamps
// the combined reveal-plus-question deadline. The round_number guard is
// the concurrency gate: of any number of concurrent ticks, exactly one
// update matches.
func (r *Repository) AdvanceRound(ctx context.Context, id uuid.UUID, fromRound int, questionID uuid.UUID, endsAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rooms
		SET round_number = round_number + 1,
		    current_question_id = $3,
		    round_ends_at = $4,
		    updated_at = now()
		WHERE id = $1 AND round_number = $2 AND status = 'active'`,
		id, fromRound, questionID, endsAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to advance round: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SwapQuestion replaces the current question without touching the round
// number. Used by skip.
func (r *Repository) SwapQuestion(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rooms
		SET current_question_id = $2, round_ends_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'active'`,
		id, questionID, endsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to swap question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Reset puts the room back on round 1 with a fresh question.
func (r *Repository) Reset(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rooms
		SET round_number = 1,
		    current_question_id = $2,
		    round_ends_at = $3,
		    status = 'active',
		    updated_at = now()
		WHERE id = $1`,
		id, questionID, endsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to reset room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE rooms SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set room status: %w", err)
	}
	return nil
}

// NextDeadline returns the earliest round deadline across active rooms,
// or nil when no room has one.
func (r *Repository) NextDeadline(ctx context.Context) (*time.Time, error) {
	var next *time.Time
	err := r.db.QueryRow(ctx, `
		SELECT MIN(round_ends_at) FROM rooms
		WHERE status = 'active' AND round_ends_at IS NOT NULL`,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return next, nil
}

// DueRoomCodes returns codes of active rooms whose deadline has passed.
func (r *Repository) DueRoomCodes(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT code FROM rooms
		WHERE status = 'active' AND round_ends_at IS NOT NULL AND round_ends_at <= $1
		ORDER BY round_ends_at
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due rooms: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan due room: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func scanRoom(row interface{ Scan(...any) error }) (*models.Room, error) {
	var (
		rm         models.Room
		questionID uuid.NullUUID
	)
	err := row.Scan(
		&rm.ID, &rm.Code, &rm.AgeBand, &rm.RoundNumber,
		&questionID, &rm.RoundEndsAt, &rm.Status,
		&rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rm.CurrentQuestionID = sqlutil.FromNullUUID(questionID)
	return &rm, nil
}
