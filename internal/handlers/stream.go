package handlers

import (
	"net/http"
	"strings"
	"time"

	datastar "github.com/starfederation/datastar-go/datastar"

	"flashbattle/internal/events"
	"flashbattle/internal/game"
)

// StreamRoom pushes the room view as datastar signals. A push happens on
// every room event and at least once per tick interval, and each one counts
// as a poll: it heartbeats the player and applies due transitions.
func (h *Handler) StreamRoom(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
	if playerID == "" {
		h.writeError(w, r, errMissingPlayer)
		return
	}

	room, err := h.store.State(code, playerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	sub := h.bus.Subscribe(code)
	defer h.bus.Unsubscribe(code, sub)

	h.logger.Debug("stream opened", "room", code, "player", playerID)
	defer h.logger.Debug("stream closed", "room", code, "player", playerID)

	if err := sse.MarshalAndPatchSignals(map[string]any{"room": room, "error": ""}); err != nil {
		return
	}

	refresh := time.NewTicker(h.config.Battle.TickInterval)
	defer refresh.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			if event.Type == events.RoomClosed {
				sse.MarshalAndPatchSignals(map[string]any{"room": nil, "error": game.CodeNotFound})
				return
			}
		case <-refresh.C:
		}

		room, err := h.store.State(code, playerID)
		if err != nil {
			// Kicked, or the room is gone
			sse.MarshalAndPatchSignals(map[string]any{"room": nil, "error": game.Code(err)})
			return
		}
		if err := sse.MarshalAndPatchSignals(map[string]any{"room": room}); err != nil {
			h.logger.Debug("stream write failed", "room", code, "error", err)
			return
		}
	}
}
