// Package store owns the authoritative table of live rooms.
//
// Every operation takes the store lock, validates the actor and the room
// phase, mutates, and returns a freshly built view. Snapshot writes are
// scheduled through a debouncer and never run while the lock is held.
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"flashbattle/internal/config"
	"flashbattle/internal/events"
	"flashbattle/internal/game"
	"flashbattle/internal/idgen"
	"flashbattle/internal/logging"
	"flashbattle/internal/snapshot"
	"flashbattle/internal/view"
)

// Roles reported to clients when they take a seat
const (
	RoleHost   = "host"
	RolePlayer = "player"
)

// Persister writes the captured room table somewhere durable
type Persister interface {
	Save(rooms []snapshot.RoomRecord) error
}

// Publisher receives room change notifications. Publish must not block.
type Publisher interface {
	Publish(event events.Event)
}

// Seat is returned when a player enters a room
type Seat struct {
	RoomCode string
	PlayerID string
	Role     string
	Room     view.Room
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *MemoryStore) { s.logger = logger }
}

// WithPersister saves the room table at most once per debounce window
// after any change
func WithPersister(p Persister, debounce time.Duration) Option {
	return func(s *MemoryStore) {
		s.persister = p
		s.debounce = debounce
	}
}

// WithPublisher announces room changes, typically to an events.Bus
func WithPublisher(p Publisher) Option {
	return func(s *MemoryStore) { s.publisher = p }
}

// MemoryStore holds all game state in memory
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*game.Room

	cfg      config.BattleSettings
	timing   game.Timing
	viewOpts view.Options
	ids      *idgen.Generator
	now      func() time.Time
	logger   *slog.Logger

	persister Persister
	debounce  time.Duration
	saver     *snapshot.Debouncer
	publisher Publisher
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(cfg config.BattleSettings, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		rooms:  make(map[string]*game.Room),
		cfg:    cfg,
		timing: game.Timing{RevealDuration: cfg.RevealDuration, NoTimerTimeout: cfg.NoTimerTimeout},
		ids:    idgen.New(cfg.RoomCodeLength),
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.viewOpts = view.Options{DisconnectAfter: cfg.DisconnectAfter, Timing: s.timing}
	if s.persister != nil {
		s.saver = snapshot.NewDebouncer(s.debounce, s.save)
	}
	return s
}

// CreateRoom opens a lobby with hostName as its only player
func (s *MemoryStore) CreateRoom(hostName string) (Seat, error) {
	name, err := game.CleanName(hostName)
	if err != nil {
		return Seat{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.ids.RoomCode(func(c string) bool {
		_, exists := s.rooms[c]
		return exists
	})
	if err != nil {
		return Seat{}, err
	}

	now := s.now()
	host := game.NewPlayer(idgen.PlayerID(), name, game.Palette[0], now)
	room := game.NewRoom(code, host, game.DefaultSettings(s.cfg.DefaultRounds), now)
	s.rooms[code] = room
	s.changed()

	s.logger.Info("room created", "room", code, "host", host.ID)
	return Seat{RoomCode: code, PlayerID: host.ID, Role: RoleHost, Room: s.build(room, now)}, nil
}

// JoinRoom seats a new player in a lobby
func (s *MemoryStore) JoinRoom(code, playerName string) (Seat, error) {
	name, err := game.CleanName(playerName)
	if err != nil {
		return Seat{}, err
	}

	var id string
	v, err := s.mutate(code, func(room *game.Room, now time.Time) error {
		p := game.NewPlayer(idgen.PlayerID(), name, "", now)
		if err := room.AddPlayer(p, s.cfg.MaxPlayersPerRoom); err != nil {
			return err
		}
		id = p.ID
		return nil
	})
	if err != nil {
		return Seat{}, err
	}

	s.logger.Info("player joined", "room", code, "player", id, "players", len(v.Players))
	return Seat{RoomCode: code, PlayerID: id, Role: RolePlayer, Room: v}, nil
}

// LeaveRoom removes playerID. The room is destroyed when the host leaves or
// nobody is left.
func (s *MemoryStore) LeaveRoom(code, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return game.ErrRoomNotFound
	}
	if room.GetPlayer(playerID) == nil {
		return game.ErrPlayerNotFound
	}

	now := s.now()
	if room.IsHost(playerID) {
		s.destroy(code, "host left")
		return nil
	}

	room.RemovePlayer(playerID)
	if len(room.Players) == 0 {
		s.destroy(code, "empty")
		return nil
	}
	room.CheckAllAnswered(now)
	room.Touch(now)
	s.changed()
	s.publish(code, events.RoomUpdated)

	s.logger.Info("player left", "room", code, "player", playerID)
	return nil
}

// RemovePlayer lets the host kick targetID
func (s *MemoryStore) RemovePlayer(code, targetID, requesterID string) (view.Room, error) {
	return s.hostMutate(code, requesterID, func(room *game.Room, now time.Time) error {
		if room.IsHost(targetID) {
			return game.ErrCannotKickHost
		}
		if !room.RemovePlayer(targetID) {
			return game.ErrPlayerNotFound
		}
		room.CheckAllAnswered(now)
		s.logger.Info("player removed", "room", code, "player", targetID)
		return nil
	})
}

// SelectDeck records the host's deck choice
func (s *MemoryStore) SelectDeck(code, playerID, deckID, deckName string) (view.Room, error) {
	return s.hostMutate(code, playerID, func(room *game.Room, _ time.Time) error {
		return room.SelectDeck(deckID, deckName)
	})
}

// UpdateSettings merges patch into the room settings
func (s *MemoryStore) UpdateSettings(code, playerID string, patch game.SettingsPatch) (view.Room, error) {
	return s.hostMutate(code, playerID, func(room *game.Room, _ time.Time) error {
		return room.ApplySettings(patch, s.cfg.MaxTimerSeconds)
	})
}

// StartGame begins a match over questions
func (s *MemoryStore) StartGame(code, playerID string, questions []game.Question) (view.Room, error) {
	return s.hostMutate(code, playerID, func(room *game.Room, now time.Time) error {
		if err := room.Start(questions, s.cfg.MinPlayersToStart, now); err != nil {
			return err
		}
		s.logger.Info("game started", "room", code, "questions", len(questions), "players", len(room.Players))
		return nil
	})
}

// SubmitAnswer records an answer and reveals right away when it was the
// last one outstanding. Transitions already due are applied first, so an
// answer arriving after the timer ran out is refused even between ticks.
func (s *MemoryStore) SubmitAnswer(code, playerID string, questionIndex int, selected string) (bool, view.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return false, view.Room{}, game.ErrRoomNotFound
	}

	now := s.now()
	if room.Tick(now, s.timing) {
		s.changed()
		s.publish(code, events.RoomUpdated)
	}

	entry, err := room.SubmitAnswer(playerID, questionIndex, selected, now)
	if err != nil {
		return false, view.Room{}, err
	}
	room.CheckAllAnswered(now)
	seen(room, playerID, now)
	room.Touch(now)
	s.changed()
	s.publish(code, events.RoomUpdated)
	return entry.IsCorrect, s.build(room, now), nil
}

// AdvanceQuestion moves past the reveal on the host's request
func (s *MemoryStore) AdvanceQuestion(code, playerID string) (view.Room, error) {
	return s.hostMutate(code, playerID, func(room *game.Room, now time.Time) error {
		return room.AdvanceQuestion(now)
	})
}

// ResetRoom discards the game and returns to the lobby
func (s *MemoryStore) ResetRoom(code, playerID string) (view.Room, error) {
	return s.hostMutate(code, playerID, func(room *game.Room, _ time.Time) error {
		room.Reset()
		return nil
	})
}

// Heartbeat marks playerID as present. It reports false when the player is
// not in the room.
func (s *MemoryStore) Heartbeat(code, playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return false, game.ErrRoomNotFound
	}
	if room.GetPlayer(playerID) == nil {
		return false, nil
	}

	now := s.now()
	seen(room, playerID, now)
	room.Touch(now)
	s.changed()
	return true, nil
}

// Reconnect resumes a player's session after a network blip or restart
func (s *MemoryStore) Reconnect(code, playerID string) (view.Room, error) {
	v, err := s.poll(code, playerID)
	if err == nil {
		s.logger.Debug("player reconnected", "room", code, "player", playerID)
	}
	return v, err
}

// State is the polling read: it heartbeats the caller and evaluates any due
// phase transition before building the view
func (s *MemoryStore) State(code, playerID string) (view.Room, error) {
	return s.poll(code, playerID)
}

// Exists reports whether code names a live room
func (s *MemoryStore) Exists(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[code]
	return ok
}

// Count returns the number of live rooms
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// TickAll advances every playing room and evicts rooms idle longer than the
// staleness window. It returns how many rooms changed phase.
func (s *MemoryStore) TickAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := 0
	for code, room := range s.rooms {
		if s.cfg.StaleAfter > 0 && now.Sub(room.LastActivity) >= s.cfg.StaleAfter {
			s.destroy(code, "stale")
			continue
		}
		if room.Status() != game.StatusPlaying {
			continue
		}
		if room.Tick(now, s.timing) {
			changed++
			s.publish(code, events.RoomUpdated)
		}
	}
	if changed > 0 {
		s.changed()
	}
	return changed
}

// Restore loads previously captured rooms, keeping any live room that
// already uses a code
func (s *MemoryStore) Restore(records []snapshot.RoomRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, rec := range records {
		if _, exists := s.rooms[rec.Code]; exists {
			s.logger.Warn("skipping restored room with live code", "room", rec.Code)
			continue
		}
		s.rooms[rec.Code] = rec.Room()
		restored++
	}
	return restored
}

// Snapshot captures every room. The records share no memory with the store.
func (s *MemoryStore) Snapshot() []snapshot.RoomRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture()
}

// Flush writes any pending snapshot now
func (s *MemoryStore) Flush() {
	if s.saver != nil {
		s.saver.Flush()
	}
}

// Close flushes the pending snapshot and stops scheduling new ones
func (s *MemoryStore) Close() {
	if s.saver != nil {
		s.saver.Stop()
	}
}

// mutate runs fn on the room under the lock. A rejected fn leaves no trace:
// activity is only recorded and a save only scheduled on success.
func (s *MemoryStore) mutate(code string, fn func(room *game.Room, now time.Time) error) (view.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return view.Room{}, game.ErrRoomNotFound
	}

	now := s.now()
	if err := fn(room, now); err != nil {
		return view.Room{}, err
	}
	room.Touch(now)
	s.changed()
	s.publish(code, events.RoomUpdated)
	return s.build(room, now), nil
}

func (s *MemoryStore) hostMutate(code, playerID string, fn func(room *game.Room, now time.Time) error) (view.Room, error) {
	return s.mutate(code, func(room *game.Room, now time.Time) error {
		if !room.IsHost(playerID) {
			return game.ErrNotHost
		}
		if err := fn(room, now); err != nil {
			return err
		}
		seen(room, playerID, now)
		return nil
	})
}

// poll marks the caller as present and applies any due transition. Only a
// transition is announced to subscribers, so streams that poll on every
// event do not feed themselves.
func (s *MemoryStore) poll(code, playerID string) (view.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return view.Room{}, game.ErrRoomNotFound
	}
	if room.GetPlayer(playerID) == nil {
		return view.Room{}, game.ErrPlayerNotFound
	}

	now := s.now()
	seen(room, playerID, now)
	room.Touch(now)
	s.changed()
	if room.Tick(now, s.timing) {
		s.publish(code, events.RoomUpdated)
	}
	return s.build(room, now), nil
}

func seen(room *game.Room, playerID string, now time.Time) {
	if p := room.GetPlayer(playerID); p != nil {
		p.LastSeen = now
	}
}

func (s *MemoryStore) build(room *game.Room, now time.Time) view.Room {
	return view.Build(room, now, s.viewOpts)
}

// destroy must be called with the lock held
func (s *MemoryStore) destroy(code, reason string) {
	delete(s.rooms, code)
	s.changed()
	s.publish(code, events.RoomClosed)
	s.logger.Info("room destroyed", "room", code, "reason", reason)
}

// changed schedules a snapshot; the write happens on the debouncer's goroutine
func (s *MemoryStore) changed() {
	if s.saver != nil {
		s.saver.Trigger()
	}
}

func (s *MemoryStore) publish(code, kind string) {
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Type: kind, RoomCode: code})
	}
}

func (s *MemoryStore) capture() []snapshot.RoomRecord {
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	recs := make([]snapshot.RoomRecord, 0, len(codes))
	for _, code := range codes {
		recs = append(recs, snapshot.Capture(s.rooms[code]))
	}
	return recs
}

func (s *MemoryStore) save() {
	recs := s.Snapshot()
	if err := s.persister.Save(recs); err != nil {
		s.logger.Error("snapshot save failed", "error", err, "rooms", len(recs))
		return
	}
	s.logger.Debug("snapshot saved", "rooms", len(recs))
}
