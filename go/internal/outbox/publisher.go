package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// StreamName is the JetStream stream that carries room events.
const StreamName = "ROOM_EVENTS"

// SubjectPrefix is the subject root; the event type is appended.
const SubjectPrefix = "room.events"

// Envelope is the wire format published to JetStream.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	RoomID    string          `json:"roomId"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// JetStreamPublisher publishes outbox events to NATS JetStream.
type JetStreamPublisher struct {
	js jetstream.JetStream
}

// NewJetStreamPublisher ensures the stream exists and returns a
// publisher bound to it.
func NewJetStreamPublisher(ctx context.Context, js jetstream.JetStream) (*JetStreamPublisher, error) {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}
	return &JetStreamPublisher{js: js}, nil
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	envelope := Envelope{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		RoomID:    event.RoomID.String(),
		Timestamp: event.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:   event.Payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, event.EventType)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// LogPublisher drops events into the log. Useful when running without a
// broker in development.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("room_id", event.RoomID.String()).
		Msg("publishing event")
	return nil
}
