package main

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashbattle/internal/config"
	"flashbattle/internal/game"
	"flashbattle/internal/logging"
	"flashbattle/internal/snapshot"
)

func testConfig(t *testing.T) *config.ServerConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Battle.TickInterval = 20 * time.Millisecond
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "rooms.json")
	cfg.Snapshot.Debounce = 10 * time.Millisecond
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestSetupServer(t *testing.T) {
	app := NewApp(testConfig(t), logging.Discard())
	handler := app.Handler()
	require.NotNil(t, handler)

	testCases := []struct {
		method       string
		path         string
		body         string
		expectedCode int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/health/live", "", http.StatusOK},
		{"GET", "/health/ready", "", http.StatusOK},
		{"POST", "/api/rooms", `{"name":"Host"}`, http.StatusCreated},
		{"POST", "/api/rooms", `{"name":"   "}`, http.StatusBadRequest},
		{"GET", "/api/rooms/000000?playerId=p", "", http.StatusNotFound},
		{"POST", "/api/rooms/000000/join", `{"playerName":"Guest"}`, http.StatusNotFound},
		{"GET", "/static/app.js", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestMiddleware(t *testing.T) {
	handler := NewApp(testConfig(t), logging.Discard()).Handler()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestNewAppRestoresSnapshot(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now()

	fresh := game.NewRoom("482913", game.NewPlayer("h1", "Host", "", now), game.DefaultSettings(5), now)
	old := now.Add(-2 * cfg.Battle.StaleAfter)
	stale := game.NewRoom("771204", game.NewPlayer("h2", "Gone", "", old), game.DefaultSettings(5), old)
	require.NoError(t, snapshot.NewFile(cfg.Snapshot.Path).Save([]snapshot.RoomRecord{
		snapshot.Capture(fresh),
		snapshot.Capture(stale),
	}))

	app := NewApp(cfg, logging.Discard())

	assert.Equal(t, 1, app.store.Count())
	assert.True(t, app.store.Exists("482913"))
	assert.False(t, app.store.Exists("771204"))
}

func TestNewAppIgnoresCorruptSnapshot(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Snapshot.Path, []byte("{truncated"), 0o644))

	app := NewApp(cfg, logging.Discard())

	assert.Zero(t, app.store.Count())
}

func TestNewAppWithoutSnapshots(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Enabled = false

	app := NewApp(cfg, logging.Discard())
	_, err := app.store.CreateRoom("Host")
	require.NoError(t, err)

	assert.Nil(t, app.file)
	assert.NoError(t, app.saveFinal())
	assert.NoFileExists(t, cfg.Snapshot.Path)
}

func TestRunShutsDownAndWritesSnapshot(t *testing.T) {
	cfg := testConfig(t)
	app := NewApp(cfg, logging.Discard())

	seat, err := app.store.CreateRoom("Host")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	recs, _, err := snapshot.NewFile(cfg.Snapshot.Path).Load(time.Now(), cfg.Battle.StaleAfter)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, seat.RoomCode, recs[0].Code)
}

func TestRunReportsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Server.Port = strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)
	app := NewApp(cfg, logging.Discard())

	result := make(chan error, 1)
	go func() { result <- app.Run(context.Background()) }()

	select {
	case err := <-result:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen on")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after a listen failure")
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func TestRunEndsOpenStreams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)
	cfg.Server.ShutdownTimeout = 3 * time.Second
	app := NewApp(cfg, logging.Discard())

	seat, err := app.store.CreateRoom("Host")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- app.Run(ctx) }()

	url := "http://" + cfg.Addr() + "/api/rooms/" + seat.RoomCode + "/stream?playerId=" + seat.PlayerID
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get(url)
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	pushed := false
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "datastar-patch-signals") {
			pushed = true
			break
		}
	}
	require.True(t, pushed, "stream sends the room before shutdown")

	started := time.Now()
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
		assert.Less(t, time.Since(started), cfg.Server.ShutdownTimeout, "the open stream must not hold shutdown")
	case <-time.After(2 * cfg.Server.ShutdownTimeout):
		t.Fatal("Run did not return with a stream open")
	}
}
