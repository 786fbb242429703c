package player

import "errors"

// ErrPlayerNotFound is returned when no player matches the lookup.
var ErrPlayerNotFound = errors.New("player not found")
