// Package handlers exposes the room store over HTTP+JSON. Handlers own no
// state: every request is one store call followed by a JSON response.
package handlers

import (
	"log/slog"

	"flashbattle/internal/config"
	"flashbattle/internal/events"
	"flashbattle/internal/store"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store  *store.MemoryStore
	bus    *events.Bus
	config *config.ServerConfig
	logger *slog.Logger
}

// New creates a new handler
func New(store *store.MemoryStore, bus *events.Bus, cfg *config.ServerConfig, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		bus:    bus,
		config: cfg,
		logger: logger,
	}
}

// Store returns the handler's store (for testing)
func (h *Handler) Store() *store.MemoryStore {
	return h.store
}
