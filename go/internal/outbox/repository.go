package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// Repository runs outbox queries against a pool or a transaction.
// Inserts ride the same transaction as the state change they announce;
// the NOTIFY trigger fires on commit.
type Repository struct {
	db sqlutil.DB
}

func NewRepository(db sqlutil.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, roomID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO room_outbox (id, room_id, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), roomID, eventType, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, event_type, payload, created_at
		FROM room_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.RoomID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	var ev OutboxEvent
	err := r.db.QueryRow(ctx, `
		SELECT id, room_id, event_type, payload, created_at
		FROM room_outbox
		WHERE id = $1 AND sent_at IS NULL`,
		id,
	).Scan(&ev.ID, &ev.RoomID, &ev.EventType, &ev.Payload, &ev.CreatedAt)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, fmt.Errorf("outbox event not found or already sent")
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return &ev, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE room_outbox SET sent_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}
