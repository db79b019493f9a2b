package game

import (
	"strings"
	"time"
)

// Status is the room lifecycle status
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Stage is the room's lifecycle state. It is one of Lobby, Playing or
// Finished; only the latter two carry a game.
type Stage interface {
	Status() Status
	isStage()
}

// Lobby is the pre-game stage
type Lobby struct{}

// Playing is the in-progress stage
type Playing struct {
	Game *GameState
}

// Finished is the terminal stage of a match. The room can be reset to Lobby.
type Finished struct {
	Game *GameState
}

func (Lobby) Status() Status    { return StatusLobby }
func (Playing) Status() Status  { return StatusPlaying }
func (Finished) Status() Status { return StatusFinished }

func (Lobby) isStage()    {}
func (Playing) isStage()  {}
func (Finished) isStage() {}

// Settings are the host-editable room settings
type Settings struct {
	Rounds                int  `json:"rounds"` // informational; the match length is the number of questions
	TimerSeconds          int  `json:"timerSeconds"`
	ShowExplanationsAtEnd bool `json:"showExplanationsAtEnd"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged
type SettingsPatch struct {
	Rounds                *int  `json:"rounds,omitempty"`
	TimerSeconds          *int  `json:"timerSeconds,omitempty"`
	ShowExplanationsAtEnd *bool `json:"showExplanationsAtEnd,omitempty"`
}

// DefaultSettings returns the settings of a new room
func DefaultSettings(rounds int) Settings {
	return Settings{Rounds: rounds, TimerSeconds: 0, ShowExplanationsAtEnd: true}
}

// Deck identifies the question deck chosen by the host
type Deck struct {
	ID   string
	Name string
}

// Room represents one battle instance. Room is not safe for concurrent use;
// the store serializes access.
type Room struct {
	Code         string
	HostID       string
	Players      []*Player // seat order
	Deck         *Deck
	Settings     Settings
	Stage        Stage
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewRoom creates a lobby room owned by host
func NewRoom(code string, host *Player, settings Settings, now time.Time) *Room {
	host.IsHost = true
	if host.Color == "" {
		host.Color = Palette[0]
	}
	return &Room{
		Code:         code,
		HostID:       host.ID,
		Players:      []*Player{host},
		Settings:     settings,
		Stage:        Lobby{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Status returns the lifecycle status
func (r *Room) Status() Status {
	if r.Stage == nil {
		return StatusLobby
	}
	return r.Stage.Status()
}

// Game returns the current game, or nil while in the lobby
func (r *Room) Game() *GameState {
	switch s := r.Stage.(type) {
	case Playing:
		return s.Game
	case Finished:
		return s.Game
	default:
		return nil
	}
}

// Touch records activity on the room
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}

// IsHost reports whether playerID holds host privileges
func (r *Room) IsHost(playerID string) bool {
	return playerID != "" && playerID == r.HostID
}

// GetPlayer retrieves a player by ID
func (r *Room) GetPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Host returns the host player
func (r *Room) Host() *Player {
	return r.GetPlayer(r.HostID)
}

// NextColor returns the palette color for the next seat
func (r *Room) NextColor() string {
	return Palette[len(r.Players)%len(Palette)]
}

// AddPlayer seats a non-host player
func (r *Room) AddPlayer(player *Player, maxPlayers int) error {
	if r.Status() != StatusLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) >= maxPlayers {
		return ErrRoomFull
	}

	player.IsHost = false
	if player.Color == "" {
		player.Color = r.NextColor()
	}
	r.Players = append(r.Players, player)
	return nil
}

// RemovePlayer removes a player, reporting whether it was present. Score
// history is kept so a finished match still accounts for everyone who played.
func (r *Room) RemovePlayer(playerID string) bool {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// PlayerIDs returns the seated player IDs in seat order
func (r *Room) PlayerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// SelectDeck sets the deck for the next match
func (r *Room) SelectDeck(id, name string) error {
	if r.Status() != StatusLobby {
		return ErrGameAlreadyStarted
	}
	if id == "" {
		return ErrNoDeckSelected
	}
	r.Deck = &Deck{ID: id, Name: name}
	return nil
}

// ApplySettings merges a partial settings update. Nothing changes when the
// patch is invalid.
func (r *Room) ApplySettings(patch SettingsPatch, maxTimerSeconds int) error {
	if r.Status() != StatusLobby {
		return ErrGameAlreadyStarted
	}

	next := r.Settings
	if patch.Rounds != nil {
		if *patch.Rounds < 1 {
			return ErrInvalidSettings
		}
		next.Rounds = *patch.Rounds
	}
	if patch.TimerSeconds != nil {
		if *patch.TimerSeconds < 0 || *patch.TimerSeconds > maxTimerSeconds {
			return ErrInvalidSettings
		}
		next.TimerSeconds = *patch.TimerSeconds
	}
	if patch.ShowExplanationsAtEnd != nil {
		next.ShowExplanationsAtEnd = *patch.ShowExplanationsAtEnd
	}

	r.Settings = next
	return nil
}

// CanStart reports why the room cannot start, or nil when it can
func (r *Room) CanStart(minPlayers int) error {
	if r.Status() != StatusLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < minPlayers {
		return ErrNotEnoughPlayers
	}
	if r.Deck == nil {
		return ErrNoDeckSelected
	}
	return nil
}

// Start snapshots the questions and begins the first question
func (r *Room) Start(questions []Question, minPlayers int, now time.Time) error {
	if err := r.CanStart(minPlayers); err != nil {
		return err
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
			return ErrInvalidQuestion
		}
	}

	r.Stage = Playing{Game: NewGameState(questions, r.PlayerIDs(), now)}
	return nil
}

// SubmitAnswer records playerID's answer to the current question
func (r *Room) SubmitAnswer(playerID string, questionIndex int, selected string, now time.Time) (AnswerEntry, error) {
	if r.GetPlayer(playerID) == nil {
		return AnswerEntry{}, ErrPlayerNotFound
	}
	g := r.Game()
	if g == nil {
		return AnswerEntry{}, ErrNoGame
	}
	return g.Record(playerID, questionIndex, selected, now)
}

// AdvanceQuestion moves out of the reveal phase to the next question, or
// finishes the match when none remain
func (r *Room) AdvanceQuestion(now time.Time) error {
	g := r.Game()
	if g == nil {
		return ErrNoGame
	}
	if g.Phase != PhaseReveal {
		return ErrWrongPhase
	}
	r.advance(g, now)
	return nil
}

func (r *Room) advance(g *GameState, now time.Time) {
	if g.Next(now) {
		r.Stage = Finished{Game: g}
	}
}

// Reset returns the room to the lobby, discarding the game
func (r *Room) Reset() {
	r.Stage = Lobby{}
}
