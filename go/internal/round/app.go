// Package round owns the room lifecycle: creating and joining rooms,
// accepting answers, and driving the shared round clock that every
// connected device follows.
package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/answer"
	"github.com/popqiz/popqiz/go/internal/events"
	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/player"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
	"github.com/popqiz/popqiz/go/internal/scoring"
)

// RoomStore defines what the controller needs from the room repository.
type RoomStore interface {
	Create(ctx context.Context, req room.CreateRoomRequest) (*models.Room, error)
	ByCode(ctx context.Context, code string) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	AdvanceRound(ctx context.Context, id uuid.UUID, fromRound int, questionID uuid.UUID, endsAt time.Time) (bool, error)
	SwapQuestion(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error
	Reset(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error
}

// PlayerStore defines what the controller needs from the player repository.
type PlayerStore interface {
	Create(ctx context.Context, req player.CreatePlayerRequest) (*models.Player, error)
	ByDevice(ctx context.Context, roomID uuid.UUID, deviceID string) (*models.Player, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
	AddScore(ctx context.Context, id uuid.UUID, points int) error
	ResetTeam(ctx context.Context, id uuid.UUID, teamName, teamColor string) error
}

// AnswerStore defines what the controller needs from the answer repository.
type AnswerStore interface {
	Insert(ctx context.Context, req answer.InsertAnswerRequest) (bool, error)
	ListByRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]models.Answer, error)
	SetResult(ctx context.Context, id uuid.UUID, correct bool, points int) error
	PlayerIDsForRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]uuid.UUID, error)
}

// QuestionProvider supplies and tracks questions for rooms.
type QuestionProvider interface {
	SelectNext(ctx context.Context, roomID uuid.UUID, band models.AgeBand) (*models.Question, error)
	RecordUsage(ctx context.Context, roomID, questionID uuid.UUID, roundNumber int)
	ByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// UsageStore clears a room's question history. It only runs inside the
// reset transaction, so a failed reset keeps the running game's
// no-repeat history intact.
type UsageStore interface {
	ClearUsage(ctx context.Context, roomID uuid.UUID) error
}

// FeedbackStore records skip feedback.
type FeedbackStore interface {
	InsertFeedback(ctx context.Context, req question.FeedbackRequest) error
}

// OutboxStore defines the outbox inserts the controller emits. Inserts
// run on the same transaction as the change they announce.
type OutboxStore interface {
	InsertRoomCreated(ctx context.Context, roomID uuid.UUID, payload events.RoomCreatedPayload) error
	InsertPlayerJoined(ctx context.Context, roomID uuid.UUID, payload events.PlayerJoinedPayload) error
	InsertAnswerSubmitted(ctx context.Context, roomID uuid.UUID, payload events.AnswerSubmittedPayload) error
	InsertRoundAdvanced(ctx context.Context, roomID uuid.UUID, payload events.RoundAdvancedPayload) error
	InsertQuestionSkipped(ctx context.Context, roomID uuid.UUID, payload events.QuestionSkippedPayload) error
	InsertGameReset(ctx context.Context, roomID uuid.UUID, payload events.GameResetPayload) error
}

// Stores is the set of tx-bound stores handed to a transactional step.
type Stores struct {
	Rooms    RoomStore
	Players  PlayerStore
	Answers  AnswerStore
	Feedback FeedbackStore
	Usage    UsageStore
	Outbox   OutboxStore
}

// Transactor runs fn inside one database transaction, binding every
// store in Stores to it.
type Transactor interface {
	InTx(ctx context.Context, fn func(s Stores) error) error
}

// Controller coordinates rooms, players, questions and scoring.
type Controller struct {
	rooms     RoomStore
	players   PlayerStore
	answers   AnswerStore
	questions QuestionProvider
	tx        Transactor
	clock     clockwork.Clock
}

func NewController(rooms RoomStore, players PlayerStore, answers AnswerStore, questions QuestionProvider, tx Transactor, clock clockwork.Clock) *Controller {
	return &Controller{
		rooms:     rooms,
		players:   players,
		answers:   answers,
		questions: questions,
		tx:        tx,
		clock:     clock,
	}
}

// RoomSession is what a device gets back from create or join: the room,
// its player identity in it, and the live question.
type RoomSession struct {
	Room     *models.Room     `json:"room"`
	Player   *models.Player   `json:"player"`
	Question *models.Question `json:"question,omitempty"`
}

// CreateRoom opens a room on round 1 with a first question already
// live, and joins the creating device as the first player.
func (c *Controller) CreateRoom(ctx context.Context, band models.AgeBand, deviceID string) (*RoomSession, error) {
	if !models.ValidAgeBand(band) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAgeBand, band)
	}
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}

	code, err := room.UniqueCode(ctx, c.rooms)
	if err != nil {
		return nil, err
	}

	roomID := uuid.New()
	q, err := c.questions.SelectNext(ctx, roomID, band)
	if err != nil {
		return nil, err
	}

	teamName, teamColor, err := player.AssignTeam(nil)
	if err != nil {
		return nil, err
	}

	endsAt := c.clock.Now().Add(models.QuestionDuration)
	var (
		rm *models.Room
		pl *models.Player
	)
	err = c.tx.InTx(ctx, func(s Stores) error {
		var err error
		rm, err = s.Rooms.Create(ctx, room.CreateRoomRequest{
			ID:          roomID,
			Code:        code,
			AgeBand:     band,
			QuestionID:  q.ID,
			RoundEndsAt: endsAt,
		})
		if err != nil {
			return err
		}
		pl, err = s.Players.Create(ctx, player.CreatePlayerRequest{
			ID:        uuid.New(),
			RoomID:    rm.ID,
			DeviceID:  deviceID,
			TeamName:  teamName,
			TeamColor: teamColor,
		})
		if err != nil {
			return err
		}
		if err := s.Outbox.InsertRoomCreated(ctx, rm.ID, events.RoomCreatedPayload{
			Code:        rm.Code,
			AgeBand:     rm.AgeBand,
			QuestionID:  q.ID,
			RoundEndsAt: endsAt,
		}); err != nil {
			return err
		}
		return s.Outbox.InsertPlayerJoined(ctx, rm.ID, events.PlayerJoinedPayload{
			PlayerID:  pl.ID,
			TeamName:  pl.TeamName,
			TeamColor: pl.TeamColor,
		})
	})
	if err != nil {
		return nil, err
	}

	c.questions.RecordUsage(ctx, rm.ID, q.ID, 1)

	log.Info().
		Str("room_id", rm.ID.String()).
		Str("code", rm.Code).
		Str("age_band", string(band)).
		Msg("room created")

	return &RoomSession{Room: rm, Player: pl, Question: q}, nil
}

// JoinRoom adds a device to a room, or returns the existing player when
// the device already joined. Team color and name are assigned here.
func (c *Controller) JoinRoom(ctx context.Context, code, deviceID string) (*RoomSession, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rm.Status != models.RoomStatusActive {
		return nil, room.ErrRoomClosed
	}

	q, err := c.currentQuestion(ctx, rm)
	if err != nil {
		return nil, err
	}

	// Rejoin is a lookup, not a new identity.
	if existing, err := c.players.ByDevice(ctx, rm.ID, deviceID); err == nil {
		return &RoomSession{Room: rm, Player: existing, Question: q}, nil
	} else if !errors.Is(err, player.ErrPlayerNotFound) {
		return nil, err
	}

	others, err := c.players.ListByRoom(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	teamName, teamColor, err := player.AssignTeam(others)
	if err != nil {
		return nil, err
	}

	var pl *models.Player
	err = c.tx.InTx(ctx, func(s Stores) error {
		var err error
		pl, err = s.Players.Create(ctx, player.CreatePlayerRequest{
			ID:        uuid.New(),
			RoomID:    rm.ID,
			DeviceID:  deviceID,
			TeamName:  teamName,
			TeamColor: teamColor,
		})
		if err != nil {
			return err
		}
		return s.Outbox.InsertPlayerJoined(ctx, rm.ID, events.PlayerJoinedPayload{
			PlayerID:  pl.ID,
			TeamName:  pl.TeamName,
			TeamColor: pl.TeamColor,
		})
	})
	if err != nil {
		// Two devices racing the same join: the loser reuses the row
		// the winner inserted.
		if existing, lookupErr := c.players.ByDevice(ctx, rm.ID, deviceID); lookupErr == nil {
			return &RoomSession{Room: rm, Player: existing, Question: q}, nil
		}
		return nil, err
	}

	log.Info().
		Str("room_id", rm.ID.String()).
		Str("player_id", pl.ID.String()).
		Str("team", pl.TeamName).
		Msg("player joined")

	return &RoomSession{Room: rm, Player: pl, Question: q}, nil
}

// SubmitAnswer records a player's choice for the current round. The
// first submission per round wins; repeats are acknowledged without
// effect so a retrying client is indistinguishable from a fast tap.
func (c *Controller) SubmitAnswer(ctx context.Context, code string, playerID uuid.UUID, roundNumber, answerIndex int) (bool, error) {
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if rm.Status != models.RoomStatusActive {
		return false, room.ErrRoomClosed
	}
	if rm.RoundNumber != roundNumber {
		return false, fmt.Errorf("%w: round %d is not current", ErrInvalidSubmission, roundNumber)
	}
	q, err := c.currentQuestion(ctx, rm)
	if err != nil {
		return false, err
	}
	if q == nil {
		return false, fmt.Errorf("%w: room has no live question", ErrInvalidSubmission)
	}
	if answerIndex < 0 || answerIndex >= len(q.Choices) {
		return false, fmt.Errorf("%w: answer index %d out of range", ErrInvalidSubmission, answerIndex)
	}

	now := c.clock.Now()
	var inserted bool
	err = c.tx.InTx(ctx, func(s Stores) error {
		var err error
		inserted, err = s.Answers.Insert(ctx, answer.InsertAnswerRequest{
			ID:          uuid.New(),
			RoomID:      rm.ID,
			PlayerID:    playerID,
			RoundNumber: roundNumber,
			QuestionID:  q.ID,
			AnswerIndex: answerIndex,
			AnsweredAt:  now,
		})
		if err != nil || !inserted {
			return err
		}
		return s.Outbox.InsertAnswerSubmitted(ctx, rm.ID, events.AnswerSubmittedPayload{
			PlayerID:    playerID,
			RoundNumber: roundNumber,
			AnsweredAt:  now,
		})
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// TickResult reports what a heartbeat did.
type TickResult struct {
	Advanced    bool                  `json:"advanced"`
	RoundNumber int                   `json:"round_number"`
	Summary     *scoring.RoundSummary `json:"summary,omitempty"`
}

// Tick is the room heartbeat. When the current round is over (deadline
// passed, or everyone has answered) it scores the round and advances to
// the next question in one transaction. Concurrent ticks are safe: the
// round-number guard on the advance lets exactly one through.
func (c *Controller) Tick(ctx context.Context, code string) (*TickResult, error) {
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rm.Status != models.RoomStatusActive {
		return &TickResult{Advanced: false, RoundNumber: rm.RoundNumber}, nil
	}

	now := c.clock.Now()
	due := rm.RoundEndsAt != nil && !now.Before(*rm.RoundEndsAt)
	if !due {
		allIn, err := c.allPlayersAnswered(ctx, rm)
		if err != nil {
			return nil, err
		}
		due = allIn
	}
	if !due {
		return &TickResult{Advanced: false, RoundNumber: rm.RoundNumber}, nil
	}

	currentQ, err := c.currentQuestion(ctx, rm)
	if err != nil {
		return nil, err
	}
	if currentQ == nil {
		return nil, fmt.Errorf("room %s has no live question to score", rm.Code)
	}

	// Pick the next question before touching the room. A selection
	// failure must leave the in-progress round untouched.
	next, err := c.questions.SelectNext(ctx, rm.ID, rm.AgeBand)
	if err != nil {
		return nil, err
	}

	endsAt := now.Add(models.AdvanceWindow)
	var (
		advanced bool
		summary  *scoring.RoundSummary
	)
	err = c.tx.InTx(ctx, func(s Stores) error {
		ok, err := s.Rooms.AdvanceRound(ctx, rm.ID, rm.RoundNumber, next.ID, endsAt)
		if err != nil {
			return err
		}
		if !ok {
			// Another tick advanced this round first.
			return nil
		}
		advanced = true

		engine := scoring.NewEngine(s.Answers, s.Players)
		summary, err = engine.ScoreRound(ctx, rm.ID, rm.RoundNumber, currentQ, rm.RoundEndsAt)
		if err != nil {
			return err
		}

		scores, err := c.buildScores(ctx, s, rm.ID, summary)
		if err != nil {
			return err
		}
		return s.Outbox.InsertRoundAdvanced(ctx, rm.ID, events.RoundAdvancedPayload{
			RoundNumber: rm.RoundNumber + 1,
			QuestionID:  next.ID,
			RoundEndsAt: endsAt,
			Scores:      scores,
		})
	})
	if err != nil {
		return nil, err
	}
	if !advanced {
		return &TickResult{Advanced: false, RoundNumber: rm.RoundNumber}, nil
	}

	c.questions.RecordUsage(ctx, rm.ID, next.ID, rm.RoundNumber+1)

	log.Info().
		Str("room_id", rm.ID.String()).
		Int("round", rm.RoundNumber+1).
		Str("question_id", next.ID.String()).
		Msg("round advanced")

	return &TickResult{Advanced: true, RoundNumber: rm.RoundNumber + 1, Summary: summary}, nil
}

// SkipResult reports the replacement question installed by a skip.
type SkipResult struct {
	Question    *models.Question `json:"question"`
	RoundEndsAt time.Time        `json:"round_ends_at"`
}

// Skip swaps the current question in place, restarting the question
// window on the same round number. No scoring happens and nobody's
// score changes; the feedback is kept for pool curation.
func (c *Controller) Skip(ctx context.Context, code string, playerID uuid.UUID, kind models.FeedbackKind) (*SkipResult, error) {
	if !models.ValidFeedbackKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFeedback, kind)
	}
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rm.Status != models.RoomStatusActive {
		return nil, room.ErrRoomClosed
	}
	currentQ, err := c.currentQuestion(ctx, rm)
	if err != nil {
		return nil, err
	}
	if currentQ == nil {
		return nil, fmt.Errorf("%w: room has no live question", ErrInvalidSubmission)
	}

	next, err := c.questions.SelectNext(ctx, rm.ID, rm.AgeBand)
	if err != nil {
		return nil, err
	}

	endsAt := c.clock.Now().Add(models.QuestionDuration)
	err = c.tx.InTx(ctx, func(s Stores) error {
		if err := s.Feedback.InsertFeedback(ctx, question.FeedbackRequest{
			ID:         uuid.New(),
			RoomID:     rm.ID,
			PlayerID:   playerID,
			QuestionID: currentQ.ID,
			Kind:       kind,
		}); err != nil {
			return err
		}
		if err := s.Rooms.SwapQuestion(ctx, rm.ID, next.ID, endsAt); err != nil {
			return err
		}
		return s.Outbox.InsertQuestionSkipped(ctx, rm.ID, events.QuestionSkippedPayload{
			RoundNumber: rm.RoundNumber,
			QuestionID:  next.ID,
			RoundEndsAt: endsAt,
			Feedback:    kind,
		})
	})
	if err != nil {
		return nil, err
	}

	c.questions.RecordUsage(ctx, rm.ID, next.ID, rm.RoundNumber)

	log.Info().
		Str("room_id", rm.ID.String()).
		Str("skipped_question_id", currentQ.ID.String()).
		Str("feedback", string(kind)).
		Msg("question skipped")

	return &SkipResult{Question: next, RoundEndsAt: endsAt}, nil
}

// Reset starts a fresh game in the same room: scores to zero, new team
// identities, question history cleared, back to round 1 with a live
// question.
func (c *Controller) Reset(ctx context.Context, code string) (*RoomSession, error) {
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	players, err := c.players.ListByRoom(ctx, rm.ID)
	if err != nil {
		return nil, err
	}

	// Reassign the palette from scratch, avoiding collisions among the
	// new identities only.
	type assignment struct {
		id    uuid.UUID
		name  string
		color string
	}
	assigned := make([]models.Player, 0, len(players))
	assignments := make([]assignment, 0, len(players))
	for _, p := range players {
		name, color, err := player.AssignTeam(assigned)
		if err != nil {
			return nil, err
		}
		assigned = append(assigned, models.Player{TeamName: name, TeamColor: color})
		assignments = append(assignments, assignment{id: p.ID, name: name, color: color})
	}

	q, err := c.questions.SelectNext(ctx, rm.ID, rm.AgeBand)
	if err != nil {
		return nil, err
	}

	endsAt := c.clock.Now().Add(models.QuestionDuration)
	err = c.tx.InTx(ctx, func(s Stores) error {
		for _, a := range assignments {
			if err := s.Players.ResetTeam(ctx, a.id, a.name, a.color); err != nil {
				return err
			}
		}
		if err := s.Rooms.Reset(ctx, rm.ID, q.ID, endsAt); err != nil {
			return err
		}
		// History is wiped with the reset itself. If the transaction
		// rolls back, the running game keeps its no-repeat history.
		if err := s.Usage.ClearUsage(ctx, rm.ID); err != nil {
			return err
		}
		roster := make([]events.PlayerScore, len(assignments))
		for i, a := range assignments {
			roster[i] = events.PlayerScore{PlayerID: a.id, TeamName: a.name, TeamColor: a.color}
		}
		return s.Outbox.InsertGameReset(ctx, rm.ID, events.GameResetPayload{
			QuestionID:  q.ID,
			RoundEndsAt: endsAt,
			Players:     roster,
		})
	})
	if err != nil {
		return nil, err
	}

	c.questions.RecordUsage(ctx, rm.ID, q.ID, 1)

	log.Info().
		Str("room_id", rm.ID.String()).
		Int("players", len(assignments)).
		Msg("game reset")

	fresh, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &RoomSession{Room: fresh, Question: q}, nil
}

// RoomSnapshot is the authoritative room view served to clients.
type RoomSnapshot struct {
	Room       *models.Room     `json:"room"`
	Players    []models.Player  `json:"players"`
	Question   *models.Question `json:"question,omitempty"`
	ServerTime time.Time        `json:"server_time"`
}

// RoomState returns the current snapshot for reconciliation.
func (c *Controller) RoomState(ctx context.Context, code string) (*RoomSnapshot, error) {
	rm, err := c.rooms.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	players, err := c.players.ListByRoom(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	q, err := c.currentQuestion(ctx, rm)
	if err != nil {
		return nil, err
	}
	return &RoomSnapshot{
		Room:       rm,
		Players:    players,
		Question:   q,
		ServerTime: c.clock.Now(),
	}, nil
}

func (c *Controller) currentQuestion(ctx context.Context, rm *models.Room) (*models.Question, error) {
	if rm.CurrentQuestionID == nil {
		return nil, nil
	}
	return c.questions.ByID(ctx, *rm.CurrentQuestionID)
}

// allPlayersAnswered reports whether every player in the room has an
// answer on the current round. Empty rooms never end early.
func (c *Controller) allPlayersAnswered(ctx context.Context, rm *models.Room) (bool, error) {
	players, err := c.players.ListByRoom(ctx, rm.ID)
	if err != nil {
		return false, err
	}
	if len(players) == 0 {
		return false, nil
	}
	answeredIDs, err := c.answers.PlayerIDsForRound(ctx, rm.ID, rm.RoundNumber)
	if err != nil {
		return false, err
	}
	answered := make(map[uuid.UUID]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}
	for _, p := range players {
		if !answered[p.ID] {
			return false, nil
		}
	}
	return true, nil
}

// buildScores joins the scoring summary with post-award player totals
// for the RoundAdvanced payload.
func (c *Controller) buildScores(ctx context.Context, s Stores, roomID uuid.UUID, summary *scoring.RoundSummary) ([]events.PlayerScore, error) {
	players, err := s.Players.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	roundPoints := make(map[uuid.UUID]int, len(summary.Results))
	for _, r := range summary.Results {
		roundPoints[r.PlayerID] = r.Points
	}
	scores := make([]events.PlayerScore, len(players))
	for i, p := range players {
		scores[i] = events.PlayerScore{
			PlayerID:    p.ID,
			TeamName:    p.TeamName,
			TeamColor:   p.TeamColor,
			RoundPoints: roundPoints[p.ID],
			TotalScore:  p.Score,
		}
	}
	return scores, nil
}
