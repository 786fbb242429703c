package room

import "errors"

var (
	// ErrRoomNotFound indicates no room exists for the given code or id.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomClosed indicates the room exists but is no longer playable.
	ErrRoomClosed = errors.New("room is closed")

	// ErrCodeExhausted indicates code generation could not find a free
	// code within the retry budget.
	ErrCodeExhausted = errors.New("could not generate a unique room code")
)
