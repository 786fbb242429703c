package models

import (
	"github.com/google/uuid"
	"time"
)

// Player represents a device that has joined a room. Players are
// identified by an opaque device ID and presented as a team name plus
// color rather than a typed-in display name.
type Player struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	DeviceID  string    `json:"device_id"`
	TeamName  string    `json:"team_name"`
	TeamColor string    `json:"team_color"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
