package models

import (
	"github.com/google/uuid"
	"time"
)

// AgeBand defines the audience a room's questions are drawn from.
type AgeBand string

const (
	AgeBandKids   AgeBand = "kids"
	AgeBandTweens AgeBand = "tweens"
	AgeBandFamily AgeBand = "family"
	AgeBandAdults AgeBand = "adults"
)

// ValidAgeBand reports whether band is one of the known age bands.
func ValidAgeBand(band AgeBand) bool {
	switch band {
	case AgeBandKids, AgeBandTweens, AgeBandFamily, AgeBandAdults:
		return true
	}
	return false
}

// RoomStatus defines the lifecycle status of a room.
type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusClosed RoomStatus = "closed"
)

// Room represents a live trivia room.
type Room struct {
	ID                uuid.UUID  `json:"id"`
	Code              string     `json:"code"`
	AgeBand           AgeBand    `json:"age_band"`
	RoundNumber       int        `json:"round_number"`
	CurrentQuestionID *uuid.UUID `json:"current_question_id,omitempty"`
	RoundEndsAt       *time.Time `json:"round_ends_at,omitempty"`
	Status            RoomStatus `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
