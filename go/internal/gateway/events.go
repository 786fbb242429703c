package gateway

import (
	"encoding/json"
	"time"

	"github.com/popqiz/popqiz/go/internal/events"
)

// RoomEvent is the envelope pushed to WebSocket clients.
type RoomEvent struct {
	ID        string          `json:"id"`        // Event UUID
	RoomID    string          `json:"room_id"`   // Room UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType represents the type of room event
type EventType string

const (
	EventTypeRoomCreated     EventType = events.TypeRoomCreated
	EventTypePlayerJoined    EventType = events.TypePlayerJoined
	EventTypeAnswerSubmitted EventType = events.TypeAnswerSubmitted
	EventTypeRoundAdvanced   EventType = events.TypeRoundAdvanced
	EventTypeQuestionSkipped EventType = events.TypeQuestionSkipped
	EventTypeGameReset       EventType = events.TypeGameReset
)

// knownEventTypes guards against forwarding junk subjects to clients.
var knownEventTypes = map[EventType]bool{
	EventTypeRoomCreated:     true,
	EventTypePlayerJoined:    true,
	EventTypeAnswerSubmitted: true,
	EventTypeRoundAdvanced:   true,
	EventTypeQuestionSkipped: true,
	EventTypeGameReset:       true,
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *RoomEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeRoomCreated:
		var payload events.RoomCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypePlayerJoined:
		var payload events.PlayerJoinedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAnswerSubmitted:
		var payload events.AnswerSubmittedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeRoundAdvanced:
		var payload events.RoundAdvancedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeQuestionSkipped:
		var payload events.QuestionSkippedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeGameReset:
		var payload events.GameResetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
