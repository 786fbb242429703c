package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/events"
)

// Event is one typed input to the reducer. Every input, whether from
// the push feed, the heartbeat, a local tap or a fired timer, goes
// through the same queue so ordering races collapse into one place.
type Event interface {
	isEvent()
}

// SnapshotEvent carries an authoritative room snapshot.
type SnapshotEvent struct {
	Snap Snapshot
}

// ScoresEvent carries a leaderboard update.
type ScoresEvent struct {
	Scores []events.PlayerScore
}

// AnswerSelected is the local player tapping a choice.
type AnswerSelected struct {
	Index int
}

// SubmitFailed reports that sending the player's answer upstream
// failed. The round number pins it to the attempt, so a late failure
// from a previous round cannot roll back the current one.
type SubmitFailed struct {
	RoundNumber int
}

// TimerFired is a phase timer completing. Seq lets the session drop
// fires from timers that have since been replaced.
type TimerFired struct {
	Kind TimerKind
	Seq  uint64
}

func (SnapshotEvent) isEvent()  {}
func (ScoresEvent) isEvent()    {}
func (AnswerSelected) isEvent() {}
func (SubmitFailed) isEvent()   {}
func (TimerFired) isEvent()     {}

// Effect is a side effect requested by the reducer. The session runtime
// executes them; the reducer itself stays pure.
type Effect interface {
	isEffect()
}

// ScheduleTimer arms the phase timer, replacing any armed one.
type ScheduleTimer struct {
	Kind     TimerKind
	Duration time.Duration
}

// CancelTimer disarms the phase timer.
type CancelTimer struct{}

// LoadQuestion asks the runtime to fetch question content for display.
type LoadQuestion struct {
	QuestionID uuid.UUID
}

// SubmitAnswer asks the runtime to send the player's choice upstream.
type SubmitAnswer struct {
	RoundNumber int
	Index       int
}

func (ScheduleTimer) isEffect() {}
func (CancelTimer) isEffect()   {}
func (LoadQuestion) isEffect()  {}
func (SubmitAnswer) isEffect()  {}
