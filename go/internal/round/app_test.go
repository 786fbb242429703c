package round

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popqiz/popqiz/go/internal/answer"
	"github.com/popqiz/popqiz/go/internal/events"
	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/player"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
)

// fakeWorld is an in-memory implementation of every store the
// controller touches, shared between the direct stores and the
// transactor so tests see one consistent state.
type fakeWorld struct {
	rooms    map[uuid.UUID]*models.Room
	players  map[uuid.UUID]*models.Player
	answers  []*models.Answer
	feedback []question.FeedbackRequest
	events   []string

	questions map[uuid.UUID]models.Question
	nextQueue []models.Question
	usage     map[uuid.UUID][]uuid.UUID
	selectErr error

	lastRoundAdvanced   *events.RoundAdvancedPayload
	lastQuestionSkipped *events.QuestionSkippedPayload

	// blockAdvance simulates a concurrent tick having already bumped
	// the round, so the guarded update matches nothing.
	blockAdvance bool

	resetErr error
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		rooms:     make(map[uuid.UUID]*models.Room),
		players:   make(map[uuid.UUID]*models.Player),
		questions: make(map[uuid.UUID]models.Question),
		usage:     make(map[uuid.UUID][]uuid.UUID),
	}
}

func (w *fakeWorld) queueQuestion(q models.Question) {
	w.questions[q.ID] = q
	w.nextQueue = append(w.nextQueue, q)
}

// RoomStore

func (w *fakeWorld) Create(ctx context.Context, req room.CreateRoomRequest) (*models.Room, error) {
	endsAt := req.RoundEndsAt
	rm := &models.Room{
		ID:                req.ID,
		Code:              req.Code,
		AgeBand:           req.AgeBand,
		RoundNumber:       1,
		CurrentQuestionID: &req.QuestionID,
		RoundEndsAt:       &endsAt,
		Status:            models.RoomStatusActive,
	}
	w.rooms[rm.ID] = rm
	return rm, nil
}

func (w *fakeWorld) ByCode(ctx context.Context, code string) (*models.Room, error) {
	for _, rm := range w.rooms {
		if rm.Code == code {
			copied := *rm
			return &copied, nil
		}
	}
	return nil, room.ErrRoomNotFound
}

func (w *fakeWorld) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, rm := range w.rooms {
		if rm.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (w *fakeWorld) AdvanceRound(ctx context.Context, id uuid.UUID, fromRound int, questionID uuid.UUID, endsAt time.Time) (bool, error) {
	if w.blockAdvance {
		return false, nil
	}
	rm, ok := w.rooms[id]
	if !ok || rm.RoundNumber != fromRound || rm.Status != models.RoomStatusActive {
		return false, nil
	}
	rm.RoundNumber++
	rm.CurrentQuestionID = &questionID
	rm.RoundEndsAt = &endsAt
	return true, nil
}

func (w *fakeWorld) SwapQuestion(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error {
	rm := w.rooms[id]
	rm.CurrentQuestionID = &questionID
	rm.RoundEndsAt = &endsAt
	return nil
}

func (w *fakeWorld) Reset(ctx context.Context, id uuid.UUID, questionID uuid.UUID, endsAt time.Time) error {
	if w.resetErr != nil {
		return w.resetErr
	}
	rm := w.rooms[id]
	rm.RoundNumber = 1
	rm.CurrentQuestionID = &questionID
	rm.RoundEndsAt = &endsAt
	rm.Status = models.RoomStatusActive
	return nil
}

// PlayerStore

func (w *fakeWorld) CreatePlayer(ctx context.Context, req player.CreatePlayerRequest) (*models.Player, error) {
	for _, p := range w.players {
		if p.RoomID == req.RoomID && p.DeviceID == req.DeviceID {
			return nil, errors.New("duplicate device")
		}
	}
	pl := &models.Player{
		ID:        req.ID,
		RoomID:    req.RoomID,
		DeviceID:  req.DeviceID,
		TeamName:  req.TeamName,
		TeamColor: req.TeamColor,
	}
	w.players[pl.ID] = pl
	return pl, nil
}

func (w *fakeWorld) ByDevice(ctx context.Context, roomID uuid.UUID, deviceID string) (*models.Player, error) {
	for _, p := range w.players {
		if p.RoomID == roomID && p.DeviceID == deviceID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, player.ErrPlayerNotFound
}

func (w *fakeWorld) ByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	if p, ok := w.players[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, player.ErrPlayerNotFound
}

func (w *fakeWorld) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	var out []models.Player
	for _, p := range w.players {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (w *fakeWorld) AddScore(ctx context.Context, id uuid.UUID, points int) error {
	w.players[id].Score += points
	return nil
}

func (w *fakeWorld) ResetTeam(ctx context.Context, id uuid.UUID, teamName, teamColor string) error {
	p := w.players[id]
	p.TeamName = teamName
	p.TeamColor = teamColor
	p.Score = 0
	return nil
}

// AnswerStore

func (w *fakeWorld) Insert(ctx context.Context, req answer.InsertAnswerRequest) (bool, error) {
	for _, a := range w.answers {
		if a.RoomID == req.RoomID && a.PlayerID == req.PlayerID && a.RoundNumber == req.RoundNumber {
			return false, nil
		}
	}
	w.answers = append(w.answers, &models.Answer{
		ID:          req.ID,
		RoomID:      req.RoomID,
		PlayerID:    req.PlayerID,
		RoundNumber: req.RoundNumber,
		QuestionID:  req.QuestionID,
		AnswerIndex: req.AnswerIndex,
		AnsweredAt:  req.AnsweredAt,
	})
	return true, nil
}

func (w *fakeWorld) ListByRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range w.answers {
		if a.RoomID == roomID && a.RoundNumber == roundNumber {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (w *fakeWorld) SetResult(ctx context.Context, id uuid.UUID, correct bool, points int) error {
	for _, a := range w.answers {
		if a.ID == id {
			a.IsCorrect = &correct
			a.Points = points
			return nil
		}
	}
	return errors.New("answer not found")
}

func (w *fakeWorld) PlayerIDsForRound(ctx context.Context, roomID uuid.UUID, roundNumber int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, a := range w.answers {
		if a.RoomID == roomID && a.RoundNumber == roundNumber {
			out = append(out, a.PlayerID)
		}
	}
	return out, nil
}

// FeedbackStore

func (w *fakeWorld) InsertFeedback(ctx context.Context, req question.FeedbackRequest) error {
	w.feedback = append(w.feedback, req)
	return nil
}

// QuestionProvider

func (w *fakeWorld) SelectNext(ctx context.Context, roomID uuid.UUID, band models.AgeBand) (*models.Question, error) {
	if w.selectErr != nil {
		return nil, w.selectErr
	}
	if len(w.nextQueue) == 0 {
		return nil, question.ErrNoQuestionsAvailable
	}
	q := w.nextQueue[0]
	w.nextQueue = w.nextQueue[1:]
	return &q, nil
}

func (w *fakeWorld) RecordUsage(ctx context.Context, roomID, questionID uuid.UUID, roundNumber int) {
	w.usage[roomID] = append(w.usage[roomID], questionID)
}

func (w *fakeWorld) QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	if q, ok := w.questions[id]; ok {
		return &q, nil
	}
	return nil, question.ErrQuestionNotFound
}

func (w *fakeWorld) ClearUsage(ctx context.Context, roomID uuid.UUID) error {
	delete(w.usage, roomID)
	return nil
}

// Outbox

func (w *fakeWorld) record(eventType string) error {
	w.events = append(w.events, eventType)
	return nil
}

func (w *fakeWorld) InsertRoomCreated(ctx context.Context, roomID uuid.UUID, payload events.RoomCreatedPayload) error {
	return w.record(events.TypeRoomCreated)
}

func (w *fakeWorld) InsertPlayerJoined(ctx context.Context, roomID uuid.UUID, payload events.PlayerJoinedPayload) error {
	return w.record(events.TypePlayerJoined)
}

func (w *fakeWorld) InsertAnswerSubmitted(ctx context.Context, roomID uuid.UUID, payload events.AnswerSubmittedPayload) error {
	return w.record(events.TypeAnswerSubmitted)
}

func (w *fakeWorld) InsertRoundAdvanced(ctx context.Context, roomID uuid.UUID, payload events.RoundAdvancedPayload) error {
	w.lastRoundAdvanced = &payload
	return w.record(events.TypeRoundAdvanced)
}

func (w *fakeWorld) InsertQuestionSkipped(ctx context.Context, roomID uuid.UUID, payload events.QuestionSkippedPayload) error {
	w.lastQuestionSkipped = &payload
	return w.record(events.TypeQuestionSkipped)
}

func (w *fakeWorld) InsertGameReset(ctx context.Context, roomID uuid.UUID, payload events.GameResetPayload) error {
	return w.record(events.TypeGameReset)
}

// Adapters to split the one fake across the controller's interfaces.

type worldPlayers struct{ *fakeWorld }

func (w worldPlayers) Create(ctx context.Context, req player.CreatePlayerRequest) (*models.Player, error) {
	return w.CreatePlayer(ctx, req)
}

type worldQuestions struct{ *fakeWorld }

func (w worldQuestions) ByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return w.QuestionByID(ctx, id)
}

type worldTransactor struct{ *fakeWorld }

func (w worldTransactor) InTx(ctx context.Context, fn func(s Stores) error) error {
	return fn(Stores{
		Rooms:    w.fakeWorld,
		Players:  worldPlayers{w.fakeWorld},
		Answers:  w.fakeWorld,
		Feedback: w.fakeWorld,
		Usage:    w.fakeWorld,
		Outbox:   w.fakeWorld,
	})
}

func newTestController(w *fakeWorld, clock clockwork.Clock) *Controller {
	return NewController(w, worldPlayers{w}, w, worldQuestions{w}, worldTransactor{w}, clock)
}

func mcq(band models.AgeBand, correct int) models.Question {
	return models.Question{
		ID:           uuid.New(),
		AgeBand:      band,
		Prompt:       "Which planet is known as the red planet?",
		Choices:      []string{"Venus", "Mars", "Jupiter"},
		CorrectIndex: correct,
		QualityScore: 90,
	}
}

func TestController_CreateRoom(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	t.Run("opens room on round one with a live question", func(t *testing.T) {
		w := newFakeWorld()
		q := mcq(models.AgeBandFamily, 1)
		w.queueQuestion(q)
		c := newTestController(w, clock)

		session, err := c.CreateRoom(ctx, models.AgeBandFamily, "device-1")
		require.NoError(t, err)

		assert.Len(t, session.Room.Code, room.CodeLength)
		assert.Equal(t, 1, session.Room.RoundNumber)
		assert.Equal(t, q.ID, *session.Room.CurrentQuestionID)
		require.NotNil(t, session.Room.RoundEndsAt)
		assert.Equal(t, clock.Now().Add(models.QuestionDuration), *session.Room.RoundEndsAt)

		assert.Equal(t, "device-1", session.Player.DeviceID)
		assert.NotEmpty(t, session.Player.TeamName)
		assert.NotEmpty(t, session.Player.TeamColor)

		assert.Equal(t, []string{events.TypeRoomCreated, events.TypePlayerJoined}, w.events)
		assert.Equal(t, []uuid.UUID{q.ID}, w.usage[session.Room.ID])
	})

	t.Run("rejects unknown band", func(t *testing.T) {
		c := newTestController(newFakeWorld(), clock)
		_, err := c.CreateRoom(ctx, models.AgeBand("seniors"), "device-1")
		assert.ErrorIs(t, err, ErrInvalidAgeBand)
	})

	t.Run("rejects missing device", func(t *testing.T) {
		c := newTestController(newFakeWorld(), clock)
		_, err := c.CreateRoom(ctx, models.AgeBandKids, "")
		assert.ErrorIs(t, err, ErrDeviceRequired)
	})

	t.Run("fails when the band has no questions", func(t *testing.T) {
		c := newTestController(newFakeWorld(), clock)
		_, err := c.CreateRoom(ctx, models.AgeBandKids, "device-1")
		assert.ErrorIs(t, err, question.ErrNoQuestionsAvailable)
	})
}

func TestController_JoinRoom(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	setup := func(t *testing.T) (*fakeWorld, *Controller, *RoomSession) {
		w := newFakeWorld()
		w.queueQuestion(mcq(models.AgeBandFamily, 0))
		c := newTestController(w, clock)
		session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
		require.NoError(t, err)
		return w, c, session
	}

	t.Run("assigns a distinct team", func(t *testing.T) {
		_, c, created := setup(t)

		joined, err := c.JoinRoom(ctx, created.Room.Code, "guest")
		require.NoError(t, err)
		assert.NotEqual(t, created.Player.ID, joined.Player.ID)
		assert.NotEqual(t, created.Player.TeamName, joined.Player.TeamName)
		assert.NotEqual(t, created.Player.TeamColor, joined.Player.TeamColor)
		assert.Equal(t, created.Question.ID, joined.Question.ID)
	})

	t.Run("rejoin returns the existing identity", func(t *testing.T) {
		w, c, created := setup(t)

		again, err := c.JoinRoom(ctx, created.Room.Code, "host")
		require.NoError(t, err)
		assert.Equal(t, created.Player.ID, again.Player.ID)

		// No second join event for a rejoin.
		joins := 0
		for _, ev := range w.events {
			if ev == events.TypePlayerJoined {
				joins++
			}
		}
		assert.Equal(t, 1, joins)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, c, _ := setup(t)
		_, err := c.JoinRoom(ctx, "ZZZZZZ", "guest")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)
	})
}

func TestController_SubmitAnswer(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	setup := func(t *testing.T) (*fakeWorld, *Controller, *RoomSession) {
		w := newFakeWorld()
		w.queueQuestion(mcq(models.AgeBandAdults, 1))
		c := newTestController(w, clock)
		session, err := c.CreateRoom(ctx, models.AgeBandAdults, "host")
		require.NoError(t, err)
		return w, c, session
	}

	t.Run("first submission wins", func(t *testing.T) {
		w, c, session := setup(t)

		accepted, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Contains(t, w.events, events.TypeAnswerSubmitted)
	})

	t.Run("repeat submission is dropped silently", func(t *testing.T) {
		w, c, session := setup(t)

		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
		require.NoError(t, err)

		accepted, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 2)
		require.NoError(t, err)
		assert.False(t, accepted)

		// The original answer is untouched and only one event went out.
		require.Len(t, w.answers, 1)
		assert.Equal(t, 1, w.answers[0].AnswerIndex)
		count := 0
		for _, ev := range w.events {
			if ev == events.TypeAnswerSubmitted {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("stale round is rejected", func(t *testing.T) {
		_, c, session := setup(t)
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 2, 0)
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})

	t.Run("answer index out of range", func(t *testing.T) {
		_, c, session := setup(t)
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 3)
		assert.ErrorIs(t, err, ErrInvalidSubmission)

		_, err = c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, -1)
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})
}

func TestController_Tick(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, clock clockwork.Clock) (*fakeWorld, *Controller, *RoomSession) {
		w := newFakeWorld()
		w.queueQuestion(mcq(models.AgeBandFamily, 1))
		c := newTestController(w, clock)
		session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
		require.NoError(t, err)
		return w, c, session
	}

	t.Run("not due yet", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		_, c, session := setup(t, clock)

		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.False(t, result.Advanced)
		assert.Equal(t, 1, result.RoundNumber)
	})

	t.Run("deadline passed advances and scores", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)
		w.queueQuestion(mcq(models.AgeBandFamily, 0))

		// Answer correctly five seconds in.
		clock.Advance(5 * time.Second)
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
		require.NoError(t, err)

		clock.Advance(models.QuestionDuration)
		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.True(t, result.Advanced)
		assert.Equal(t, 2, result.RoundNumber)

		require.NotNil(t, result.Summary)
		require.Len(t, result.Summary.Results, 1)
		assert.True(t, result.Summary.Results[0].Correct)
		assert.Equal(t, 750, result.Summary.Results[0].Points)
		assert.Equal(t, 750, w.players[session.Player.ID].Score)

		rm, err := w.ByCode(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.Equal(t, 2, rm.RoundNumber)
		assert.Equal(t, clock.Now().Add(models.AdvanceWindow), *rm.RoundEndsAt)

		require.NotNil(t, w.lastRoundAdvanced)
		assert.Equal(t, 2, w.lastRoundAdvanced.RoundNumber)
		require.Len(t, w.lastRoundAdvanced.Scores, 1)
		assert.Equal(t, 750, w.lastRoundAdvanced.Scores[0].TotalScore)
	})

	t.Run("everyone answered closes the round early", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)
		w.queueQuestion(mcq(models.AgeBandFamily, 0))

		clock.Advance(2 * time.Second)
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 0)
		require.NoError(t, err)

		// Deadline still 18 seconds away.
		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.True(t, result.Advanced)
	})

	t.Run("empty room never ends early", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w := newFakeWorld()
		w.queueQuestion(mcq(models.AgeBandFamily, 1))
		c := newTestController(w, clock)
		session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
		require.NoError(t, err)

		// Remove the only player; the room must wait for its deadline.
		delete(w.players, session.Player.ID)

		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.False(t, result.Advanced)
	})

	t.Run("losing a concurrent advance scores nothing", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)
		w.queueQuestion(mcq(models.AgeBandFamily, 0))

		clock.Advance(5 * time.Second)
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
		require.NoError(t, err)

		clock.Advance(models.QuestionDuration)
		w.blockAdvance = true

		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.False(t, result.Advanced)
		assert.Equal(t, 0, w.players[session.Player.ID].Score)
		assert.Nil(t, w.answers[0].IsCorrect)
		assert.Nil(t, w.lastRoundAdvanced)
	})

	t.Run("selection failure leaves the round untouched", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)

		clock.Advance(models.QuestionDuration + time.Second)
		_, err := c.Tick(ctx, session.Room.Code)
		assert.ErrorIs(t, err, question.ErrNoQuestionsAvailable)

		rm, err := w.ByCode(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.Equal(t, 1, rm.RoundNumber)
	})
}

func TestController_Skip(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, clock clockwork.Clock) (*fakeWorld, *Controller, *RoomSession) {
		w := newFakeWorld()
		w.queueQuestion(mcq(models.AgeBandFamily, 1))
		c := newTestController(w, clock)
		session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
		require.NoError(t, err)
		return w, c, session
	}

	t.Run("swaps the question without bumping the round", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)
		replacement := mcq(models.AgeBandFamily, 0)
		w.queueQuestion(replacement)

		clock.Advance(8 * time.Second)
		result, err := c.Skip(ctx, session.Room.Code, session.Player.ID, models.FeedbackConfusing)
		require.NoError(t, err)
		assert.Equal(t, replacement.ID, result.Question.ID)
		assert.Equal(t, clock.Now().Add(models.QuestionDuration), result.RoundEndsAt)

		rm, err := w.ByCode(ctx, session.Room.Code)
		require.NoError(t, err)
		assert.Equal(t, 1, rm.RoundNumber)
		assert.Equal(t, replacement.ID, *rm.CurrentQuestionID)

		require.Len(t, w.feedback, 1)
		assert.Equal(t, session.Question.ID, w.feedback[0].QuestionID)
		assert.Equal(t, models.FeedbackConfusing, w.feedback[0].Kind)

		require.NotNil(t, w.lastQuestionSkipped)
		assert.Equal(t, 1, w.lastQuestionSkipped.RoundNumber)
	})

	t.Run("answers from before the skip never score", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		w, c, session := setup(t, clock)
		w.queueQuestion(mcq(models.AgeBandFamily, 1))
		w.queueQuestion(mcq(models.AgeBandFamily, 2))

		// Correct answer against the original question.
		_, err := c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
		require.NoError(t, err)

		_, err = c.Skip(ctx, session.Room.Code, session.Player.ID, models.FeedbackSkip)
		require.NoError(t, err)

		// Skip changes no answers and no scores.
		assert.Nil(t, w.answers[0].IsCorrect)
		assert.Equal(t, 0, w.players[session.Player.ID].Score)

		// When the round finally scores, the stale answer counts as
		// incorrect even though its index matched the old question.
		clock.Advance(models.QuestionDuration + time.Second)
		result, err := c.Tick(ctx, session.Room.Code)
		require.NoError(t, err)
		require.True(t, result.Advanced)
		require.Len(t, result.Summary.Results, 1)
		assert.False(t, result.Summary.Results[0].Correct)
		assert.Equal(t, 0, w.players[session.Player.ID].Score)
	})

	t.Run("invalid feedback kind", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(start)
		_, c, session := setup(t, clock)
		_, err := c.Skip(ctx, session.Room.Code, session.Player.ID, models.FeedbackKind("meh"))
		assert.ErrorIs(t, err, ErrInvalidFeedback)
	})
}

func TestController_Reset(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	w := newFakeWorld()
	w.queueQuestion(mcq(models.AgeBandFamily, 1))
	c := newTestController(w, clock)
	session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx, session.Room.Code, "guest")
	require.NoError(t, err)

	// Play a round so there is score to wipe.
	w.queueQuestion(mcq(models.AgeBandFamily, 0))
	_, err = c.SubmitAnswer(ctx, session.Room.Code, session.Player.ID, 1, 1)
	require.NoError(t, err)
	clock.Advance(models.QuestionDuration + time.Second)
	result, err := c.Tick(ctx, session.Room.Code)
	require.NoError(t, err)
	require.True(t, result.Advanced)
	require.Equal(t, 750, w.players[session.Player.ID].Score)

	fresh := mcq(models.AgeBandFamily, 2)
	w.queueQuestion(fresh)
	reset, err := c.Reset(ctx, session.Room.Code)
	require.NoError(t, err)

	assert.Equal(t, 1, reset.Room.RoundNumber)
	assert.Equal(t, fresh.ID, *reset.Room.CurrentQuestionID)
	assert.Equal(t, fresh.ID, reset.Question.ID)

	// Every score is zero and usage history restarted with the fresh
	// question only.
	for _, p := range w.players {
		assert.Equal(t, 0, p.Score)
	}
	assert.Equal(t, []uuid.UUID{fresh.ID}, w.usage[session.Room.ID])
	assert.Contains(t, w.events, events.TypeGameReset)

	// Team identities stay collision free after reassignment.
	names := make(map[string]bool)
	for _, p := range w.players {
		assert.False(t, names[p.TeamName], "duplicate team name after reset")
		names[p.TeamName] = true
	}
}

func TestController_ResetFailureKeepsHistory(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	w := newFakeWorld()
	q1 := mcq(models.AgeBandFamily, 1)
	w.queueQuestion(q1)
	c := newTestController(w, clock)
	session, err := c.CreateRoom(ctx, models.AgeBandFamily, "host")
	require.NoError(t, err)

	w.queueQuestion(mcq(models.AgeBandFamily, 0))
	w.resetErr = errors.New("room row gone")
	_, err = c.Reset(ctx, session.Room.Code)
	require.Error(t, err)

	// The reset never committed, so the running game keeps its
	// no-repeat history and score state.
	assert.Equal(t, []uuid.UUID{q1.ID}, w.usage[session.Room.ID])
	assert.NotContains(t, w.events, events.TypeGameReset)

	// A later reset succeeds and restarts the history.
	w.resetErr = nil
	fresh := mcq(models.AgeBandFamily, 2)
	w.queueQuestion(fresh)
	reset, err := c.Reset(ctx, session.Room.Code)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, reset.Question.ID)
	assert.Equal(t, []uuid.UUID{fresh.ID}, w.usage[session.Room.ID])
}
