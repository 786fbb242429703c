package question

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// Repository runs question cache queries against a pool or a
// transaction.
type Repository struct {
	db sqlutil.DB
}

func NewRepository(db sqlutil.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuestionRequest carries a validated question for caching.
type CreateQuestionRequest struct {
	ID           uuid.UUID
	AgeBand      models.AgeBand
	Prompt       string
	Choices      []string
	CorrectIndex int
	Explanation  *string
	DedupKey     string
	QualityScore int
	Source       models.QuestionSource
}

const questionColumns = `id, age_band, prompt, choices, correct_index, explanation, dedup_key, quality_score, source, created_at`

// Insert caches a question. Returns false when an equivalent question
// (same band and dedup key) is already cached.
func (r *Repository) Insert(ctx context.Context, req CreateQuestionRequest) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO question_cache
			(id, age_band, prompt, choices, correct_index, explanation, dedup_key, quality_score, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT question_cache_band_dedup_key DO NOTHING`,
		req.ID, req.AgeBand, req.Prompt, req.Choices, req.CorrectIndex,
		req.Explanation, req.DedupKey, req.QualityScore, req.Source,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert question: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	row := r.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM question_cache WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// Candidates returns up to limit questions in a band at or above
// minQuality, best first, excluding the given ids.
func (r *Repository) Candidates(ctx context.Context, band models.AgeBand, minQuality int, exclude []uuid.UUID, limit int) ([]models.Question, error) {
	if exclude == nil {
		exclude = []uuid.UUID{}
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+questionColumns+` FROM question_cache
		WHERE age_band = $1 AND quality_score >= $2 AND NOT (id = ANY($3))
		ORDER BY quality_score DESC, created_at
		LIMIT $4`,
		band, minQuality, exclude, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *Repository) CountByBand(ctx context.Context, band models.AgeBand) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM question_cache WHERE age_band = $1`, band).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// UsedQuestionIDs returns ids already served to a room.
func (r *Repository) UsedQuestionIDs(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT question_id FROM room_questions WHERE room_id = $1`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list used questions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan used question: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordUsage marks a question as served to a room. Duplicate records
// are dropped.
func (r *Repository) RecordUsage(ctx context.Context, roomID, questionID uuid.UUID, roundNumber int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO room_questions (room_id, question_id, round_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, question_id) DO NOTHING`,
		roomID, questionID, roundNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to record question usage: %w", err)
	}
	return nil
}

// ClearUsage forgets which questions a room has seen. Used by game
// reset so a fresh game can reuse the full pool.
func (r *Repository) ClearUsage(ctx context.Context, roomID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM room_questions WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to clear question usage: %w", err)
	}
	return nil
}

// FeedbackRequest records why a player skipped a question.
type FeedbackRequest struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	PlayerID   uuid.UUID
	QuestionID uuid.UUID
	Kind       models.FeedbackKind
}

func (r *Repository) InsertFeedback(ctx context.Context, req FeedbackRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO question_feedback (id, room_id, player_id, question_id, feedback_kind)
		VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.RoomID, req.PlayerID, req.QuestionID, req.Kind,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question feedback: %w", err)
	}
	return nil
}

func scanQuestion(row interface{ Scan(...any) error }) (*models.Question, error) {
	var q models.Question
	err := row.Scan(
		&q.ID, &q.AgeBand, &q.Prompt, &q.Choices, &q.CorrectIndex,
		&q.Explanation, &q.DedupKey, &q.QualityScore, &q.Source, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
