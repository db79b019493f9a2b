package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"flashbattle/internal/config"
	"flashbattle/internal/engine"
	"flashbattle/internal/events"
	"flashbattle/internal/handlers"
	localMiddleware "flashbattle/internal/middleware"
	"flashbattle/internal/snapshot"
	"flashbattle/internal/store"
)

const (
	limiterPruneEvery = time.Minute
	limiterIdle       = 10 * time.Minute
)

// App holds the long-lived pieces of the server process
type App struct {
	cfg     *config.ServerConfig
	logger  *slog.Logger
	store   *store.MemoryStore
	file    *snapshot.File
	engine  *engine.Engine
	limiter *localMiddleware.RateLimiter
	server  *http.Server
}

// NewApp wires the store, tick engine and router. When snapshots are enabled
// the rooms saved by a previous run are restored first.
func NewApp(cfg *config.ServerConfig, logger *slog.Logger) *App {
	bus := events.NewBus()

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithPublisher(bus),
	}

	var file *snapshot.File
	if cfg.Snapshot.Enabled {
		file = snapshot.NewFile(cfg.Snapshot.Path)
		opts = append(opts, store.WithPersister(file, cfg.Snapshot.Debounce))
	}

	s := store.NewMemoryStore(cfg.Battle, opts...)
	if file != nil {
		restoreRooms(s, file, cfg.Battle.StaleAfter, logger)
	}

	limiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
	h := handlers.New(s, bus, cfg, logger)
	router := handlers.SetupRouter(h, cfg, &handlers.RouterOptions{RateLimiter: limiter})

	// Shutdown leaves request contexts alone; cancel them so open streams end
	requests, cancelRequests := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0 for SSE support
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return requests },
	}
	server.RegisterOnShutdown(cancelRequests)

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		file:    file,
		engine:  engine.New(s, cfg.Battle.TickInterval, logger, nil),
		limiter: limiter,
		server:  server,
	}
}

// A broken snapshot file must not keep the server from starting.
func restoreRooms(s *store.MemoryStore, file *snapshot.File, staleAfter time.Duration, logger *slog.Logger) {
	recs, dropped, err := file.Load(time.Now(), staleAfter)
	if err != nil {
		logger.Error("snapshot load failed, starting empty", "path", file.Path(), "error", err)
		return
	}
	restored := s.Restore(recs)
	logger.Info("snapshot restored", "path", file.Path(), "rooms", restored, "dropped", dropped)
}

// Handler returns the HTTP handler served by the app
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP and ticks rooms until ctx is cancelled or the listener
// fails, then shuts down gracefully and writes a final snapshot.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr error
	var wg conc.WaitGroup

	wg.Go(func() { a.engine.Run(ctx) })
	wg.Go(func() { a.pruneLimiter(ctx) })
	wg.Go(func() {
		defer cancel()
		a.logger.Info("starting server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("listen on %s: %w", a.server.Addr, err)
		}
	})

	<-ctx.Done()
	a.logger.Info("shutting down server")

	shutdownCtx, done := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer done()
	shutdownErr := a.server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("shutdown: %w", shutdownErr)
	}

	wg.Wait()

	a.store.Close()
	err := multierr.Combine(serveErr, shutdownErr, a.saveFinal())
	if err == nil {
		a.logger.Info("server gracefully stopped", "rooms", a.store.Count())
	}
	return err
}

func (a *App) saveFinal() error {
	if a.file == nil {
		return nil
	}
	if err := a.file.Save(a.store.Snapshot()); err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}
	return nil
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Prune(limiterIdle); n > 0 {
				a.logger.Debug("pruned idle rate limiters", "clients", n)
			}
		}
	}
}
