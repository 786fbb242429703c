package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/events"
	"github.com/popqiz/popqiz/go/internal/gateway"
	"github.com/popqiz/popqiz/go/internal/models"
)

// Client is the server surface the session needs. Implementations talk
// HTTP to the room API.
type Client interface {
	// Tick nudges the server's advance check for this room.
	Tick(ctx context.Context) error

	// FetchState returns the authoritative snapshot and whether the
	// local player has already answered the current round.
	FetchState(ctx context.Context) (Snapshot, bool, error)

	// FetchQuestion loads question content for display.
	FetchQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)

	// SubmitAnswer sends the player's locked-in choice.
	SubmitAnswer(ctx context.Context, roundNumber, index int) error
}

// Session drives the phase state machine for one connected device. All
// inputs, pushed events, heartbeat snapshots, local taps and fired
// timers, funnel through a single event queue, so the reducer sees a
// serialized history no matter how they raced on the wire.
type Session struct {
	client Client
	clock  clockwork.Clock

	eventCh chan Event
	sched   *Scheduler

	mu       sync.RWMutex
	state    State
	question *models.Question
}

func NewSession(client Client, clock clockwork.Clock, snap Snapshot, answered bool) *Session {
	s := &Session{
		client:  client,
		clock:   clock,
		eventCh: make(chan Event, 64),
	}
	s.sched = NewScheduler(clock, s.eventCh)

	state, effects := NewState(snap, answered, clock.Now())
	s.state = state
	s.apply(context.Background(), effects)
	return s
}

// Run processes events and heartbeats until ctx is done.
func (s *Session) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(models.HeartbeatInterval)
	defer ticker.Stop()
	defer s.sched.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.eventCh:
			s.dispatch(ctx, ev)
		case <-ticker.Chan():
			s.heartbeat(ctx)
		}
	}
}

// Handle enqueues an event for the reducer. It is safe from any
// goroutine; the WebSocket feed and UI both call it.
func (s *Session) Handle(ev Event) {
	s.eventCh <- ev
}

// Select records the local player tapping a choice.
func (s *Session) Select(index int) {
	s.Handle(AnswerSelected{Index: index})
}

// State returns the current synchronizer state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Question returns the loaded question content, nil while in flight.
func (s *Session) Question() *models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question
}

// HandleRoomEvent translates a pushed room event into reducer inputs.
// Events that do not move the phase machine are dropped here.
func (s *Session) HandleRoomEvent(ev *gateway.RoomEvent) {
	roomID, err := uuid.Parse(ev.RoomID)
	if err != nil {
		log.Warn().Str("event_id", ev.ID).Msg("room event with bad room id")
		return
	}

	payload, err := gateway.ParseEventPayload(ev)
	if err != nil {
		log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to parse room event payload")
		return
	}

	switch p := payload.(type) {
	case events.RoundAdvancedPayload:
		if len(p.Scores) > 0 {
			s.Handle(ScoresEvent{Scores: p.Scores})
		}
		endsAt := p.RoundEndsAt
		s.Handle(SnapshotEvent{Snap: Snapshot{
			RoomID:      roomID,
			RoundNumber: p.RoundNumber,
			QuestionID:  p.QuestionID,
			RoundEndsAt: &endsAt,
			Status:      models.RoomStatusActive,
		}})
	case events.QuestionSkippedPayload:
		endsAt := p.RoundEndsAt
		s.Handle(SnapshotEvent{Snap: Snapshot{
			RoomID:      roomID,
			RoundNumber: p.RoundNumber,
			QuestionID:  p.QuestionID,
			RoundEndsAt: &endsAt,
			Status:      models.RoomStatusActive,
		}})
	case events.GameResetPayload:
		if len(p.Players) > 0 {
			s.Handle(ScoresEvent{Scores: p.Players})
		}
		endsAt := p.RoundEndsAt
		s.Handle(SnapshotEvent{Snap: Snapshot{
			RoomID:      roomID,
			RoundNumber: 1,
			QuestionID:  p.QuestionID,
			RoundEndsAt: &endsAt,
			Status:      models.RoomStatusActive,
		}})
	}
}

func (s *Session) dispatch(ctx context.Context, ev Event) {
	if tf, ok := ev.(TimerFired); ok && tf.Seq != s.sched.Seq() {
		// A replaced timer's fire was already in the queue.
		return
	}

	s.mu.Lock()
	next, effects := Reduce(s.state, ev, s.clock.Now())
	s.state = next
	s.mu.Unlock()

	s.apply(ctx, effects)
}

func (s *Session) apply(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case ScheduleTimer:
			s.sched.Replace(e.Kind, e.Duration)
		case CancelTimer:
			s.sched.Cancel()
		case LoadQuestion:
			s.loadQuestion(ctx, e.QuestionID)
		case SubmitAnswer:
			s.submitAnswer(ctx, e.RoundNumber, e.Index)
		}
	}
}

func (s *Session) loadQuestion(ctx context.Context, id uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		q, err := s.client.FetchQuestion(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("question_id", id.String()).Msg("failed to load question")
			return
		}
		s.mu.Lock()
		// Only publish if the round has not moved on meanwhile.
		if s.state.QuestionID == q.ID {
			s.question = q
		}
		s.mu.Unlock()
	}()
}

func (s *Session) submitAnswer(ctx context.Context, roundNumber, index int) {
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		// The server keeps only the first write per round, so retries
		// and duplicates are harmless. A failure means the answer was
		// never stored, and the reducer rolls the lock back so the
		// player can retry.
		if err := s.client.SubmitAnswer(ctx, roundNumber, index); err != nil {
			log.Warn().Err(err).Int("round", roundNumber).Msg("failed to submit answer")
			s.Handle(SubmitFailed{RoundNumber: roundNumber})
		}
	}()
}

func (s *Session) heartbeat(ctx context.Context) {
	if err := s.client.Tick(ctx); err != nil {
		log.Debug().Err(err).Msg("heartbeat tick failed")
	}
	snap, _, err := s.client.FetchState(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("heartbeat state fetch failed")
		return
	}
	s.dispatch(ctx, SnapshotEvent{Snap: snap})
}
