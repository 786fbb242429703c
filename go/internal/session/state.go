// Package session is the client-side synchronizer for a trivia room.
// It folds the heartbeat snapshots and pushed room events into a single
// phase state machine, so a device that misses, duplicates or reorders
// updates still converges on what the server says.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/events"
	"github.com/popqiz/popqiz/go/internal/models"
)

// Phase is the coarse display phase.
type Phase string

const (
	// PhaseQuestion shows the live question and accepts a tap.
	PhaseQuestion Phase = "question"

	// PhaseReveal shows the correct answer, then the leaderboard as a
	// sub-view, until the next round cuts in.
	PhaseReveal Phase = "reveal"
)

// RevealStage is the sub-view within PhaseReveal.
type RevealStage string

const (
	StageAnswer      RevealStage = "answer"
	StageLeaderboard RevealStage = "leaderboard"
)

// TimerKind identifies which phase timer is armed. At most one timer is
// ever armed; arming a new one replaces the old.
type TimerKind int

const (
	TimerNone TimerKind = iota
	TimerQuestionDeadline
	TimerReveal
	TimerLeaderboard
)

// Snapshot is the authoritative room view, as reported by the server
// through the state endpoint or reconstructed from a pushed event.
type Snapshot struct {
	RoomID      uuid.UUID
	RoundNumber int
	QuestionID  uuid.UUID
	RoundEndsAt *time.Time
	Status      models.RoomStatus
}

// Advance is a server-observed round change held back while the reveal
// or leaderboard is still being displayed.
type Advance struct {
	RoundNumber int
	QuestionID  uuid.UUID
	RoundEndsAt *time.Time
}

// State is the synchronizer state. It is a value; Reduce returns a new
// one rather than mutating.
type State struct {
	Phase       Phase
	RevealStage RevealStage
	RoundNumber int
	QuestionID  uuid.UUID
	RoundEndsAt *time.Time

	// SelectedAnswer is the local player's locked-in choice for the
	// current round, nil until they tap.
	SelectedAnswer *int

	// ActiveTimer is the timer the reducer believes is armed. A fired
	// timer of any other kind is stale and ignored.
	ActiveTimer TimerKind

	// Pending holds a round advance observed mid-reveal. The displayed
	// reveal and leaderboard finish on their own clock, then the
	// pending round cuts in.
	Pending *Advance

	// Scores is the latest leaderboard delta.
	Scores []events.PlayerScore
}

// ShowingLeaderboard reports whether the leaderboard sub-view is up.
func (s State) ShowingLeaderboard() bool {
	return s.Phase == PhaseReveal && s.RevealStage == StageLeaderboard
}
