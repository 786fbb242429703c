package session

import (
	"time"

	"github.com/popqiz/popqiz/go/internal/models"
)

// NewState builds the initial state from the first snapshot. answered
// reports whether the local player already has an answer on the current
// round (a reconnect mid-round).
func NewState(snap Snapshot, answered bool, now time.Time) (State, []Effect) {
	s := State{
		RoundNumber: snap.RoundNumber,
		QuestionID:  snap.QuestionID,
		RoundEndsAt: snap.RoundEndsAt,
	}

	load := LoadQuestion{QuestionID: snap.QuestionID}

	if answered {
		s.Phase = PhaseReveal
		s.RevealStage = StageAnswer
		s.ActiveTimer = TimerReveal
		return s, []Effect{load, ScheduleTimer{Kind: TimerReveal, Duration: models.RevealDisplayDuration}}
	}

	if snap.RoundEndsAt != nil && now.Before(*snap.RoundEndsAt) {
		s.Phase = PhaseQuestion
		s.ActiveTimer = TimerQuestionDeadline
		return s, []Effect{load, ScheduleTimer{Kind: TimerQuestionDeadline, Duration: snap.RoundEndsAt.Sub(now)}}
	}

	// Deadline already passed: hold on the leaderboard until the server
	// advances the round.
	s.Phase = PhaseReveal
	s.RevealStage = StageLeaderboard
	s.ActiveTimer = TimerNone
	return s, []Effect{load}
}

// Reduce applies one event and returns the next state plus the side
// effects to execute. It is pure: same inputs, same outputs.
func Reduce(s State, ev Event, now time.Time) (State, []Effect) {
	switch ev := ev.(type) {
	case SnapshotEvent:
		return reduceSnapshot(s, ev.Snap, now)
	case ScoresEvent:
		s.Scores = ev.Scores
		return s, nil
	case AnswerSelected:
		return reduceAnswerSelected(s, ev)
	case SubmitFailed:
		return reduceSubmitFailed(s, ev, now)
	case TimerFired:
		return reduceTimerFired(s, ev, now)
	default:
		return s, nil
	}
}

func reduceSnapshot(s State, snap Snapshot, now time.Time) (State, []Effect) {
	switch {
	case snap.RoundNumber < s.RoundNumber:
		// The game was reset. Start over from the snapshot.
		return enterQuestion(s, snap.RoundNumber, snap, now)

	case snap.RoundNumber > s.RoundNumber:
		return reduceRoundAdvance(s, snap, now)

	default:
		return reduceSameRound(s, snap, now)
	}
}

// reduceRoundAdvance handles the server moving on while we display the
// previous round. The reveal and leaderboard get their full display
// time; the new round is staged in Pending and cut in afterwards.
func reduceRoundAdvance(s State, snap Snapshot, now time.Time) (State, []Effect) {
	pending := &Advance{
		RoundNumber: snap.RoundNumber,
		QuestionID:  snap.QuestionID,
		RoundEndsAt: snap.RoundEndsAt,
	}

	switch {
	case s.Phase == PhaseQuestion:
		// Round ended under us (everyone answered, or our deadline
		// timer lags the server). Show the reveal before moving on.
		s.Phase = PhaseReveal
		s.RevealStage = StageAnswer
		s.Pending = pending
		s.ActiveTimer = TimerReveal
		return s, []Effect{CancelTimer{}, ScheduleTimer{Kind: TimerReveal, Duration: models.RevealDisplayDuration}}

	case s.RevealStage == StageAnswer:
		// Already revealing. Re-arm for the full reveal so a snapshot
		// arriving mid-display doesn't cut it short.
		s.Pending = pending
		s.ActiveTimer = TimerReveal
		return s, []Effect{CancelTimer{}, ScheduleTimer{Kind: TimerReveal, Duration: models.RevealDisplayDuration}}

	default: // leaderboard
		if s.ActiveTimer == TimerLeaderboard {
			// Let the leaderboard finish; its timer will cut over.
			s.Pending = pending
			return s, nil
		}
		// We were parked on the leaderboard waiting for exactly this.
		return enterQuestion(s, snap.RoundNumber, snap, now)
	}
}

// reduceSameRound handles a snapshot for the round we're already on.
func reduceSameRound(s State, snap Snapshot, now time.Time) (State, []Effect) {
	if snap.QuestionID == s.QuestionID {
		// Unrelated change (scores, timestamps). Keep phase and timers.
		s.RoundEndsAt = snap.RoundEndsAt
		return s, nil
	}

	// Same round, different question: a skip.
	if s.ShowingLeaderboard() && s.ActiveTimer == TimerLeaderboard {
		// Mid-leaderboard display; absorb silently and let the timer
		// cut over to the replacement.
		s.Pending = &Advance{
			RoundNumber: snap.RoundNumber,
			QuestionID:  snap.QuestionID,
			RoundEndsAt: snap.RoundEndsAt,
		}
		return s, nil
	}
	return enterQuestion(s, snap.RoundNumber, snap, now)
}

func reduceAnswerSelected(s State, ev AnswerSelected) (State, []Effect) {
	if s.Phase != PhaseQuestion {
		return s, nil
	}
	if s.SelectedAnswer != nil {
		// Already locked in. A second tap never reaches the network.
		return s, nil
	}

	idx := ev.Index
	s.SelectedAnswer = &idx
	s.Phase = PhaseReveal
	s.RevealStage = StageAnswer
	s.ActiveTimer = TimerReveal
	return s, []Effect{
		SubmitAnswer{RoundNumber: s.RoundNumber, Index: idx},
		CancelTimer{},
		ScheduleTimer{Kind: TimerReveal, Duration: models.RevealDisplayDuration},
	}
}

// reduceSubmitFailed rolls back the optimistic answer lock after the
// send failed. The server never saw the answer, so while the round is
// still live the player gets the question back to retry.
func reduceSubmitFailed(s State, ev SubmitFailed, now time.Time) (State, []Effect) {
	if ev.RoundNumber != s.RoundNumber || s.SelectedAnswer == nil || s.Pending != nil {
		return s, nil
	}
	if s.RoundEndsAt == nil || !now.Before(*s.RoundEndsAt) {
		// The round closed anyway; a retry could no longer score and
		// the next advance resets the selection.
		return s, nil
	}
	s.SelectedAnswer = nil
	s.Phase = PhaseQuestion
	s.RevealStage = ""
	s.ActiveTimer = TimerQuestionDeadline
	return s, []Effect{
		CancelTimer{},
		ScheduleTimer{Kind: TimerQuestionDeadline, Duration: s.RoundEndsAt.Sub(now)},
	}
}

func reduceTimerFired(s State, ev TimerFired, now time.Time) (State, []Effect) {
	if ev.Kind != s.ActiveTimer {
		// A replaced timer racing its own cancellation.
		return s, nil
	}

	switch ev.Kind {
	case TimerQuestionDeadline:
		s.Phase = PhaseReveal
		s.RevealStage = StageAnswer
		s.ActiveTimer = TimerReveal
		return s, []Effect{ScheduleTimer{Kind: TimerReveal, Duration: models.RevealDisplayDuration}}

	case TimerReveal:
		s.RevealStage = StageLeaderboard
		s.ActiveTimer = TimerLeaderboard
		return s, []Effect{ScheduleTimer{Kind: TimerLeaderboard, Duration: models.LeaderboardDisplayDuration}}

	case TimerLeaderboard:
		if s.Pending != nil {
			pending := *s.Pending
			snap := Snapshot{
				RoundNumber: pending.RoundNumber,
				QuestionID:  pending.QuestionID,
				RoundEndsAt: pending.RoundEndsAt,
			}
			return enterQuestion(s, pending.RoundNumber, snap, now)
		}
		// Nothing staged; hold the leaderboard until the server says
		// otherwise.
		s.ActiveTimer = TimerNone
		return s, nil

	default:
		return s, nil
	}
}

// enterQuestion resets display state onto the given round and question.
func enterQuestion(s State, roundNumber int, snap Snapshot, now time.Time) (State, []Effect) {
	s.Phase = PhaseQuestion
	s.RevealStage = ""
	s.RoundNumber = roundNumber
	s.QuestionID = snap.QuestionID
	s.RoundEndsAt = snap.RoundEndsAt
	s.SelectedAnswer = nil
	s.Pending = nil

	effects := []Effect{LoadQuestion{QuestionID: snap.QuestionID}, CancelTimer{}}
	if snap.RoundEndsAt != nil {
		remaining := snap.RoundEndsAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		s.ActiveTimer = TimerQuestionDeadline
		effects = append(effects, ScheduleTimer{Kind: TimerQuestionDeadline, Duration: remaining})
	} else {
		s.ActiveTimer = TimerNone
	}
	return s, effects
}
