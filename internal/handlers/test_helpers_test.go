package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"flashbattle/internal/config"
	"flashbattle/internal/events"
	"flashbattle/internal/game"
	"flashbattle/internal/logging"
	"flashbattle/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	handler *Handler
	router  *chi.Mux
	clock   *testClock
	cfg     *config.ServerConfig
}

// newTestEnv creates a router over a fresh store with a controllable clock
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "0"
	cfg.Battle.TickInterval = 20 * time.Millisecond

	clock := &testClock{now: time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)}
	bus := events.NewBus()
	s := store.NewMemoryStore(cfg.Battle, store.WithClock(clock.Now), store.WithPublisher(bus))
	h := New(s, bus, cfg, logging.Discard())
	router := SetupRouter(h, cfg, &RouterOptions{DisableRateLimiting: true, DisableRequestLogger: true})

	return &testEnv{handler: h, router: router, clock: clock, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// createRoom creates a room over HTTP and returns its code and the host id
func (e *testEnv) createRoom(t *testing.T, name string) (code, hostID string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	seat := decodeBody[seatResponse](t, rec)
	return seat.RoomCode, seat.PlayerID
}

func (e *testEnv) joinRoom(t *testing.T, code, name string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/rooms/"+code+"/join", map[string]string{"playerName": name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[seatResponse](t, rec).PlayerID
}

func testQuestions() []game.Question {
	return []game.Question{
		{CardID: "c1", Question: "Capital of France?", CorrectAnswer: "Paris", Options: []string{"Paris", "Lyon", "Nice", "Lille"}},
		{CardID: "c2", Question: "Capital of Peru?", CorrectAnswer: "Lima", Options: []string{"Cusco", "Lima", "Arequipa", "Piura"}, Explanation: "Founded in 1535."},
		{CardID: "c3", Question: "Capital of Norway?", CorrectAnswer: "Oslo", Options: []string{"Bergen", "Oslo", "Tromso", "Bodo"}},
	}
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}
