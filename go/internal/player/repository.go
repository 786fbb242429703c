package player

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// Repository runs player queries against a pool or a transaction.
type Repository struct {
	db sqlutil.DB
}

func NewRepository(db sqlutil.DB) *Repository {
	return &Repository{db: db}
}

// CreatePlayerRequest carries the fields for a new player row.
type CreatePlayerRequest struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	DeviceID  string
	TeamName  string
	TeamColor string
}

const playerColumns = `id, room_id, device_id, team_name, team_color, score, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO players (id, room_id, device_id, team_name, team_color, score)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING `+playerColumns,
		req.ID, req.RoomID, req.DeviceID, req.TeamName, req.TeamColor,
	)
	p, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// ByDevice looks up the player a device maps to in a room. Join is
// idempotent because of the (room_id, device_id) unique key; callers
// check here first and reuse the existing player.
func (r *Repository) ByDevice(ctx context.Context, roomID uuid.UUID, deviceID string) (*models.Player, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE room_id = $1 AND device_id = $2`,
		roomID, deviceID,
	)
	p, err := scanPlayer(row)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by device: %w", err)
	}
	return p, nil
}

func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *Repository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players WHERE room_id = $1 ORDER BY created_at`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *Repository) AddScore(ctx context.Context, id uuid.UUID, points int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET score = score + $2, updated_at = now() WHERE id = $1`,
		id, points,
	)
	if err != nil {
		return fmt.Errorf("failed to add score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// ResetTeam reassigns a player's identity and zeroes the score. Used by
// game reset.
func (r *Repository) ResetTeam(ctx context.Context, id uuid.UUID, teamName, teamColor string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE players
		SET team_name = $2, team_color = $3, score = 0, updated_at = now()
		WHERE id = $1`,
		id, teamName, teamColor,
	)
	if err != nil {
		return fmt.Errorf("failed to reset player team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func scanPlayer(row interface{ Scan(...any) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.RoomID, &p.DeviceID, &p.TeamName, &p.TeamColor,
		&p.Score, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
