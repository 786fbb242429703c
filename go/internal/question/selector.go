package question

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmcvetta/randutil"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/models"
)

const (
	// candidateWindow caps how many candidates one selection reads.
	candidateWindow = 200

	// pickWindow is the slice of best candidates the random pick is
	// drawn from. Large enough that consecutive rooms don't all see the
	// same opening question, small enough to keep quality high.
	pickWindow = 50
)

// SelectorRepository is the slice of the question store selection needs.
type SelectorRepository interface {
	Candidates(ctx context.Context, band models.AgeBand, minQuality int, exclude []uuid.UUID, limit int) ([]models.Question, error)
	UsedQuestionIDs(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	RecordUsage(ctx context.Context, roomID, questionID uuid.UUID, roundNumber int) error
	ByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// Selector picks the next question for a room: prefer unused questions
// at or above the quality floor, widen below the floor when the band
// runs dry, and allow repeats before giving up entirely.
type Selector struct {
	repo       SelectorRepository
	minQuality int
}

func NewSelector(repo SelectorRepository) *Selector {
	return &Selector{repo: repo, minQuality: models.MinQualityScore}
}

// NewSelectorWithFloor overrides the default quality floor.
func NewSelectorWithFloor(repo SelectorRepository, minQuality int) *Selector {
	return &Selector{repo: repo, minQuality: minQuality}
}

// SelectNext returns the next question for the room. It never writes;
// callers record usage once the question is actually installed.
func (s *Selector) SelectNext(ctx context.Context, roomID uuid.UUID, band models.AgeBand) (*models.Question, error) {
	used, err := s.repo.UsedQuestionIDs(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load used questions: %w", err)
	}

	candidates, err := s.repo.Candidates(ctx, band, s.minQuality, used, candidateWindow)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		// Quality floor exhausted for this room; widen to any quality.
		candidates, err = s.repo.Candidates(ctx, band, 0, used, candidateWindow)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		// Every cached question has been used; allow repeats.
		log.Warn().
			Str("room_id", roomID.String()).
			Str("age_band", string(band)).
			Msg("question pool exhausted for room, allowing repeats")
		candidates, err = s.repo.Candidates(ctx, band, 0, nil, candidateWindow)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoQuestionsAvailable, band)
	}

	top := candidates
	if len(top) > pickWindow {
		top = top[:pickWindow]
	}
	idx, err := randutil.IntRange(0, len(top))
	if err != nil {
		return nil, fmt.Errorf("failed to pick question: %w", err)
	}
	return &top[idx], nil
}

// ByID returns one cached question.
func (s *Selector) ByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return s.repo.ByID(ctx, id)
}

// RecordUsage notes that a question went live in a room. The record is
// advisory: it only steers future selection away from repeats, so a
// failure is logged and play continues.
func (s *Selector) RecordUsage(ctx context.Context, roomID, questionID uuid.UUID, roundNumber int) {
	if err := s.repo.RecordUsage(ctx, roomID, questionID, roundNumber); err != nil {
		log.Warn().
			Err(err).
			Str("room_id", roomID.String()).
			Str("question_id", questionID.String()).
			Msg("failed to record question usage")
	}
}
