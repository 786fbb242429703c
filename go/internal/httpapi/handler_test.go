package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
	"github.com/popqiz/popqiz/go/internal/round"
)

type fakeController struct {
	session  *round.RoomSession
	snapshot *round.RoomSnapshot
	tick     *round.TickResult
	skip     *round.SkipResult
	accepted bool
	err      error

	lastBand     models.AgeBand
	lastCode     string
	lastDevice   string
	lastPlayerID uuid.UUID
	lastRound    int
	lastIndex    int
	lastFeedback models.FeedbackKind
}

func (f *fakeController) CreateRoom(ctx context.Context, band models.AgeBand, deviceID string) (*round.RoomSession, error) {
	f.lastBand, f.lastDevice = band, deviceID
	return f.session, f.err
}

func (f *fakeController) JoinRoom(ctx context.Context, code, deviceID string) (*round.RoomSession, error) {
	f.lastCode, f.lastDevice = code, deviceID
	return f.session, f.err
}

func (f *fakeController) SubmitAnswer(ctx context.Context, code string, playerID uuid.UUID, roundNumber, answerIndex int) (bool, error) {
	f.lastCode, f.lastPlayerID, f.lastRound, f.lastIndex = code, playerID, roundNumber, answerIndex
	return f.accepted, f.err
}

func (f *fakeController) Tick(ctx context.Context, code string) (*round.TickResult, error) {
	f.lastCode = code
	return f.tick, f.err
}

func (f *fakeController) Skip(ctx context.Context, code string, playerID uuid.UUID, kind models.FeedbackKind) (*round.SkipResult, error) {
	f.lastCode, f.lastPlayerID, f.lastFeedback = code, playerID, kind
	return f.skip, f.err
}

func (f *fakeController) Reset(ctx context.Context, code string) (*round.RoomSession, error) {
	f.lastCode = code
	return f.session, f.err
}

func (f *fakeController) RoomState(ctx context.Context, code string) (*round.RoomSnapshot, error) {
	f.lastCode = code
	return f.snapshot, f.err
}

type fakeWaker struct{ wakes int }

func (f *fakeWaker) Wake() { f.wakes++ }

func newTestServer(ctrl *fakeController, waker *fakeWaker) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(ctrl, waker).RegisterRoutes(mux)
	return mux
}

func sampleSession() *round.RoomSession {
	qID := uuid.New()
	endsAt := time.Now().Add(models.QuestionDuration)
	return &round.RoomSession{
		Room: &models.Room{
			ID:                uuid.New(),
			Code:              "ABC123",
			AgeBand:           models.AgeBandFamily,
			RoundNumber:       1,
			CurrentQuestionID: &qID,
			RoundEndsAt:       &endsAt,
			Status:            models.RoomStatusActive,
		},
		Player: &models.Player{ID: uuid.New(), TeamName: "Golden Geckos", TeamColor: "#FFD700"},
	}
}

func TestHandleCreateRoom(t *testing.T) {
	t.Run("creates and wakes the ticker", func(t *testing.T) {
		ctrl := &fakeController{session: sampleSession()}
		waker := &fakeWaker{}
		mux := newTestServer(ctrl, waker)

		req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"age_band":"family"}`))
		req.Header.Set("X-Device-ID", "device-1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, models.AgeBandFamily, ctrl.lastBand)
		assert.Equal(t, "device-1", ctrl.lastDevice)
		assert.Equal(t, 1, waker.wakes)

		var session round.RoomSession
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
		assert.Equal(t, "ABC123", session.Room.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		mux := newTestServer(&fakeController{}, &fakeWaker{})
		req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing device header", func(t *testing.T) {
		ctrl := &fakeController{err: round.ErrDeviceRequired}
		mux := newTestServer(ctrl, &fakeWaker{})
		req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"age_band":"kids"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleJoinRoom(t *testing.T) {
	ctrl := &fakeController{session: sampleSession()}
	mux := newTestServer(ctrl, &fakeWaker{})

	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"code":"ABC123"}`))
	req.Header.Set("X-Device-ID", "device-2")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABC123", ctrl.lastCode)
	assert.Equal(t, "device-2", ctrl.lastDevice)
}

func TestHandleRoomState(t *testing.T) {
	session := sampleSession()
	ctrl := &fakeController{snapshot: &round.RoomSnapshot{
		Room:       session.Room,
		Players:    []models.Player{*session.Player},
		ServerTime: time.Now(),
	}}
	mux := newTestServer(ctrl, &fakeWaker{})

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ABC123/state", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABC123", ctrl.lastCode)

	var snap round.RoomSnapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Len(t, snap.Players, 1)
}

func TestHandleSubmitAnswer(t *testing.T) {
	t.Run("accepted answer wakes the ticker", func(t *testing.T) {
		ctrl := &fakeController{accepted: true}
		waker := &fakeWaker{}
		mux := newTestServer(ctrl, waker)

		playerID := uuid.New()
		body := `{"player_id":"` + playerID.String() + `","round_number":3,"answer_index":2}`
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/ABC123/answer", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, playerID, ctrl.lastPlayerID)
		assert.Equal(t, 3, ctrl.lastRound)
		assert.Equal(t, 2, ctrl.lastIndex)
		assert.Equal(t, 1, waker.wakes)

		var resp struct {
			Accepted bool `json:"accepted"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Accepted)
	})

	t.Run("stale round maps to 400", func(t *testing.T) {
		ctrl := &fakeController{err: round.ErrInvalidSubmission}
		mux := newTestServer(ctrl, &fakeWaker{})

		body := `{"player_id":"` + uuid.NewString() + `","round_number":1,"answer_index":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/ABC123/answer", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSkip(t *testing.T) {
	ctrl := &fakeController{skip: &round.SkipResult{
		Question:    &models.Question{ID: uuid.New(), Choices: []string{"a", "b", "c"}},
		RoundEndsAt: time.Now().Add(models.QuestionDuration),
	}}
	waker := &fakeWaker{}
	mux := newTestServer(ctrl, waker)

	body := `{"player_id":"` + uuid.NewString() + `","feedback":"confusing"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/ABC123/skip", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FeedbackConfusing, ctrl.lastFeedback)
	assert.Equal(t, 1, waker.wakes)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"room not found", room.ErrRoomNotFound, http.StatusNotFound},
		{"room closed", room.ErrRoomClosed, http.StatusConflict},
		{"invalid age band", round.ErrInvalidAgeBand, http.StatusBadRequest},
		{"invalid feedback", round.ErrInvalidFeedback, http.StatusBadRequest},
		{"pool exhausted", question.ErrNoQuestionsAvailable, http.StatusInternalServerError},
		{"unexpected", errors.New("pg: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &fakeController{err: tc.err}
			mux := newTestServer(ctrl, &fakeWaker{})

			req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"code":"NOPE99"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	ctrl := &fakeController{err: errors.New("pg: password authentication failed")}
	mux := newTestServer(ctrl, &fakeWaker{})

	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"code":"ABC123"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal error", resp.Error)
}

func TestNilWakerIsSafe(t *testing.T) {
	ctrl := &fakeController{session: sampleSession()}
	mux := http.NewServeMux()
	NewHandler(ctrl, nil).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"age_band":"family"}`))
	req.Header.Set("X-Device-ID", "device-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
