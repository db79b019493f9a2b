package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"flashbattle/internal/config"
	localMiddleware "flashbattle/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
	// RateLimiter is used instead of a fresh one, so the caller can prune it
	RateLimiter *localMiddleware.RateLimiter
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	if !opts.DisableRateLimiting {
		rateLimiter := opts.RateLimiter
		if rateLimiter == nil {
			rateLimiter = localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		}
		r.Use(rateLimiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	r.Get("/health", h.Health)
	r.Get("/health/live", probeOK)
	r.Get("/health/ready", probeOK)

	r.Route("/api/rooms", func(r chi.Router) {
		// Long-lived; must stay outside the request timeout
		r.Get("/{code}/stream", ValidateStreamRequest(h.StreamRoom))

		r.Group(func(r chi.Router) {
			if cfg.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
			}

			r.Post("/", h.CreateRoom)
			r.Get("/{code}", h.GetRoomState)
			r.Get("/{code}/qr", h.JoinQRCode)
			r.Post("/{code}/join", h.JoinRoom)
			r.Post("/{code}/leave", h.LeaveRoom)
			r.Post("/{code}/kick", h.RemovePlayer)
			r.Post("/{code}/deck", h.SelectDeck)
			r.Patch("/{code}/settings", h.UpdateSettings)
			r.Post("/{code}/start", h.StartGame)
			r.Post("/{code}/answers", h.SubmitAnswer)
			r.Post("/{code}/next", h.NextQuestion)
			r.Post("/{code}/reset", h.ResetRoom)
			r.Post("/{code}/heartbeat", h.Heartbeat)
			r.Post("/{code}/reconnect", h.Reconnect)
		})
	})

	return r
}
