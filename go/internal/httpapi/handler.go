// Package httpapi exposes the room lifecycle over plain JSON HTTP.
// Devices create and join rooms, submit answers, and heartbeat through
// these endpoints; live fan-out happens over the WebSocket gateway.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
	"github.com/popqiz/popqiz/go/internal/round"
)

// RoomController is the round controller surface the API serves.
type RoomController interface {
	CreateRoom(ctx context.Context, band models.AgeBand, deviceID string) (*round.RoomSession, error)
	JoinRoom(ctx context.Context, code, deviceID string) (*round.RoomSession, error)
	SubmitAnswer(ctx context.Context, code string, playerID uuid.UUID, roundNumber, answerIndex int) (bool, error)
	Tick(ctx context.Context, code string) (*round.TickResult, error)
	Skip(ctx context.Context, code string, playerID uuid.UUID, kind models.FeedbackKind) (*round.SkipResult, error)
	Reset(ctx context.Context, code string) (*round.RoomSession, error)
	RoomState(ctx context.Context, code string) (*round.RoomSnapshot, error)
}

// Waker lets the API nudge the deadline ticker after a mutation moves a
// room's deadline, so advances don't wait for the next poll.
type Waker interface {
	Wake()
}

// Handler serves the room API.
type Handler struct {
	controller RoomController
	waker      Waker
}

func NewHandler(controller RoomController, waker Waker) *Handler {
	return &Handler{controller: controller, waker: waker}
}

// RegisterRoutes registers the room API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rooms", h.handleCreateRoom)
	mux.HandleFunc("POST /api/rooms/join", h.handleJoinRoom)
	mux.HandleFunc("GET /api/rooms/{code}/state", h.handleRoomState)
	mux.HandleFunc("POST /api/rooms/{code}/answer", h.handleSubmitAnswer)
	mux.HandleFunc("POST /api/rooms/{code}/tick", h.handleTick)
	mux.HandleFunc("POST /api/rooms/{code}/skip", h.handleSkip)
	mux.HandleFunc("POST /api/rooms/{code}/reset", h.handleReset)
}

type createRoomRequest struct {
	AgeBand models.AgeBand `json:"age_band"`
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get("X-Device-ID")

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.controller.CreateRoom(r.Context(), req.AgeBand, deviceID)
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	h.wake()
	writeJSON(w, http.StatusCreated, session)
}

type joinRoomRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get("X-Device-ID")

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.controller.JoinRoom(r.Context(), req.Code, deviceID)
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleRoomState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.RoomState(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type submitAnswerRequest struct {
	PlayerID    uuid.UUID `json:"player_id"`
	RoundNumber int       `json:"round_number"`
	AnswerIndex int       `json:"answer_index"`
}

type submitAnswerResponse struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted, err := h.controller.SubmitAnswer(r.Context(), r.PathValue("code"), req.PlayerID, req.RoundNumber, req.AnswerIndex)
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	h.wake()
	writeJSON(w, http.StatusOK, submitAnswerResponse{Accepted: accepted})
}

func (h *Handler) handleTick(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.Tick(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type skipRequest struct {
	PlayerID uuid.UUID           `json:"player_id"`
	Feedback models.FeedbackKind `json:"feedback"`
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.controller.Skip(r.Context(), r.PathValue("code"), req.PlayerID, req.Feedback)
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	h.wake()
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := h.controller.Reset(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeControllerError(w, err)
		return
	}
	h.wake()
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) wake() {
	if h.waker != nil {
		h.waker.Wake()
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeControllerError maps controller errors to HTTP status codes.
func (h *Handler) writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrRoomClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, round.ErrInvalidAgeBand),
		errors.Is(err, round.ErrInvalidSubmission),
		errors.Is(err, round.ErrInvalidFeedback),
		errors.Is(err, round.ErrDeviceRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, question.ErrNoQuestionsAvailable):
		log.Error().Err(err).Msg("question pool exhausted")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error().Err(err).Msg("room API request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
