package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/events"
)

// OutboxRepository defines what the app layer needs from the repository
type OutboxRepository interface {
	Insert(ctx context.Context, roomID uuid.UUID, eventType string, payload []byte) error
	FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
}

// App handles outbox business logic
type App struct {
	repo OutboxRepository
}

// NewApp creates a new outbox App
func NewApp(repo OutboxRepository) *App {
	return &App{
		repo: repo,
	}
}

// InsertRoomCreated inserts a RoomCreated event into the outbox
func (a *App) InsertRoomCreated(ctx context.Context, roomID uuid.UUID, payload events.RoomCreatedPayload) error {
	return a.insert(ctx, roomID, events.TypeRoomCreated, payload)
}

// InsertPlayerJoined inserts a PlayerJoined event into the outbox
func (a *App) InsertPlayerJoined(ctx context.Context, roomID uuid.UUID, payload events.PlayerJoinedPayload) error {
	return a.insert(ctx, roomID, events.TypePlayerJoined, payload)
}

// InsertAnswerSubmitted inserts an AnswerSubmitted event into the outbox
func (a *App) InsertAnswerSubmitted(ctx context.Context, roomID uuid.UUID, payload events.AnswerSubmittedPayload) error {
	return a.insert(ctx, roomID, events.TypeAnswerSubmitted, payload)
}

// InsertRoundAdvanced inserts a RoundAdvanced event into the outbox
func (a *App) InsertRoundAdvanced(ctx context.Context, roomID uuid.UUID, payload events.RoundAdvancedPayload) error {
	return a.insert(ctx, roomID, events.TypeRoundAdvanced, payload)
}

// InsertQuestionSkipped inserts a QuestionSkipped event into the outbox
func (a *App) InsertQuestionSkipped(ctx context.Context, roomID uuid.UUID, payload events.QuestionSkippedPayload) error {
	return a.insert(ctx, roomID, events.TypeQuestionSkipped, payload)
}

// InsertGameReset inserts a GameReset event into the outbox
func (a *App) InsertGameReset(ctx context.Context, roomID uuid.UUID, payload events.GameResetPayload) error {
	return a.insert(ctx, roomID, events.TypeGameReset, payload)
}

func (a *App) insert(ctx context.Context, roomID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("invalid %s payload: %w", eventType, err)
	}

	if err := a.repo.Insert(ctx, roomID, eventType, data); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}

	log.Debug().
		Str("room_id", roomID.String()).
		Str("event_type", eventType).
		Msg("outbox event inserted")

	return nil
}

// FetchUnsent returns unpublished events, oldest first.
func (a *App) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	return a.repo.FetchUnsent(ctx, limit)
}

// FetchByID returns one unpublished event.
func (a *App) FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	return a.repo.FetchByID(ctx, id)
}

// MarkSent records that an event reached the broker.
func (a *App) MarkSent(ctx context.Context, id uuid.UUID) error {
	return a.repo.MarkSent(ctx, id)
}
