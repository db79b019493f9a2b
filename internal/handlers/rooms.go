package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flashbattle/internal/game"
	"flashbattle/internal/view"
)

type createRoomRequest struct {
	Name string `json:"name"`
}

type joinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

type kickRequest struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
}

type deckRequest struct {
	PlayerID string `json:"playerId"`
	DeckID   string `json:"deckId"`
	DeckName string `json:"deckName"`
}

type settingsRequest struct {
	PlayerID string             `json:"playerId"`
	Settings game.SettingsPatch `json:"settings"`
}

type startRequest struct {
	PlayerID  string          `json:"playerId"`
	Questions []game.Question `json:"questions"`
}

type answerRequest struct {
	PlayerID       string `json:"playerId"`
	QuestionIndex  *int   `json:"questionIndex"`
	SelectedOption string `json:"selectedOption"`
}

type seatResponse struct {
	RoomCode string    `json:"roomCode,omitempty"`
	PlayerID string    `json:"playerId"`
	Role     string    `json:"role"`
	Room     view.Room `json:"room"`
}

type roomResponse struct {
	Room view.Room `json:"room"`
}

type answerResponse struct {
	IsCorrect bool      `json:"isCorrect"`
	Room      view.Room `json:"room"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func roomCode(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "code"))
}

// actorRequest is a body that names the acting player
type actorRequest interface {
	actor() string
}

func (p playerRequest) actor() string   { return p.PlayerID }
func (p kickRequest) actor() string     { return p.PlayerID }
func (p deckRequest) actor() string     { return p.PlayerID }
func (p settingsRequest) actor() string { return p.PlayerID }
func (p startRequest) actor() string    { return p.PlayerID }
func (p answerRequest) actor() string   { return p.PlayerID }

func decodeActor(r *http.Request, dst actorRequest) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	if strings.TrimSpace(dst.actor()) == "" {
		return errMissingPlayer
	}
	return nil
}

// CreateRoom handles initRoom
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	seat, err := h.store.CreateRoom(req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, seatResponse{
		RoomCode: seat.RoomCode,
		PlayerID: seat.PlayerID,
		Role:     seat.Role,
		Room:     seat.Room,
	})
}

// JoinRoom handles joinRoom
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	seat, err := h.store.JoinRoom(roomCode(r), req.PlayerName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seatResponse{PlayerID: seat.PlayerID, Role: seat.Role, Room: seat.Room})
}

// LeaveRoom handles leaveRoom
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.store.LeaveRoom(roomCode(r), req.PlayerID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// RemovePlayer handles removePlayer
func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	var req kickRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.RemovePlayer(roomCode(r), req.TargetPlayerID, req.PlayerID))
}

// SelectDeck handles selectDeck
func (h *Handler) SelectDeck(w http.ResponseWriter, r *http.Request) {
	var req deckRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.SelectDeck(roomCode(r), req.PlayerID, strings.TrimSpace(req.DeckID), strings.TrimSpace(req.DeckName)))
}

// UpdateSettings handles updateSettings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.UpdateSettings(roomCode(r), req.PlayerID, req.Settings))
}

// StartGame handles startGame
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.StartGame(roomCode(r), req.PlayerID, req.Questions))
}

// SubmitAnswer handles submitAnswer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.QuestionIndex == nil {
		h.writeError(w, r, fmt.Errorf("%w: questionIndex is required", game.ErrBadRequest))
		return
	}

	correct, room, err := h.store.SubmitAnswer(roomCode(r), req.PlayerID, *req.QuestionIndex, req.SelectedOption)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{IsCorrect: correct, Room: room})
}

// NextQuestion handles nextQuestion
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.AdvanceQuestion(roomCode(r), req.PlayerID))
}

// ResetRoom handles resetRoom
func (h *Handler) ResetRoom(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.ResetRoom(roomCode(r), req.PlayerID))
}

// GetRoomState handles getRoomState, the polling read
func (h *Handler) GetRoomState(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
	if playerID == "" {
		h.writeError(w, r, errMissingPlayer)
		return
	}

	h.respondRoom(w, r)(h.store.State(roomCode(r), playerID))
}

// Heartbeat handles heartbeat
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ok, err := h.store.Heartbeat(roomCode(r), req.PlayerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: ok})
}

// Reconnect handles reconnectRoom
func (h *Handler) Reconnect(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeActor(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondRoom(w, r)(h.store.Reconnect(roomCode(r), req.PlayerID))
}

// respondRoom writes {room} or the error of a store call
func (h *Handler) respondRoom(w http.ResponseWriter, r *http.Request) func(view.Room, error) {
	return func(room view.Room, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{Room: room})
	}
}
