package models

import "time"

// Round timing contract. The server-side round controller and the
// client-side session reducer both derive their timers from these
// values; changing one side without the other desynchronizes every
// connected room.
const (
	// QuestionDuration is how long players may answer a question.
	QuestionDuration = 20 * time.Second

	// RevealDuration is the server-side gap budgeted between a round
	// ending and the next question becoming answerable.
	RevealDuration = 10 * time.Second

	// AdvanceSlack absorbs clock skew and delivery latency when the
	// next round's deadline is stamped.
	AdvanceSlack = 1 * time.Second

	// AdvanceWindow is the deadline offset written on round advance:
	// reveal, then a full question window, plus slack.
	AdvanceWindow = RevealDuration + QuestionDuration + AdvanceSlack

	// RevealDisplayDuration is how long clients show the answer reveal
	// before cross-fading to the leaderboard.
	RevealDisplayDuration = 7 * time.Second

	// LeaderboardDisplayDuration is how long clients hold on the
	// leaderboard before cutting to the next question.
	LeaderboardDisplayDuration = 5 * time.Second

	// HeartbeatInterval is how often clients tick the server while a
	// room is open.
	HeartbeatInterval = 2 * time.Second
)

// Scoring contract.
const (
	// BasePoints is the award for a correct answer before the speed
	// multiplier is applied.
	BasePoints = 500

	// MinQualityScore is the default quality floor for question
	// selection. Selection widens below it only when a band has no
	// unused questions above the floor.
	MinQualityScore = 70
)
