// Package snapshot persists the room table to a local file for crash
// recovery. It is best effort: whatever happened after the last flush is lost.
package snapshot

import (
	"time"

	"flashbattle/internal/game"
)

// Version is written into every snapshot file
const Version = 1

// Document is the on-disk snapshot
type Document struct {
	Version int          `json:"version" yaml:"version"`
	SavedAt time.Time    `json:"savedAt" yaml:"savedAt"`
	Rooms   []RoomRecord `json:"rooms" yaml:"rooms"`
}

// RoomRecord is the persisted form of a room
type RoomRecord struct {
	Code         string         `json:"code" yaml:"code"`
	HostID       string         `json:"hostId" yaml:"hostId"`
	Players      []PlayerRecord `json:"players" yaml:"players"`
	DeckID       string         `json:"deckId,omitempty" yaml:"deckId,omitempty"`
	DeckName     string         `json:"deckName,omitempty" yaml:"deckName,omitempty"`
	Settings     SettingsRecord `json:"settings" yaml:"settings"`
	Status       game.Status    `json:"status" yaml:"status"`
	Game         *GameRecord    `json:"game,omitempty" yaml:"game,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"createdAt"`
	LastActivity time.Time      `json:"lastActivity" yaml:"lastActivity"`
}

// PlayerRecord is the persisted form of a player
type PlayerRecord struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Color    string    `json:"color" yaml:"color"`
	JoinedAt time.Time `json:"joinedAt" yaml:"joinedAt"`
	LastSeen time.Time `json:"lastSeen" yaml:"lastSeen"`
}

// SettingsRecord is the persisted form of the room settings
type SettingsRecord struct {
	Rounds                int  `json:"rounds" yaml:"rounds"`
	TimerSeconds          int  `json:"timerSeconds" yaml:"timerSeconds"`
	ShowExplanationsAtEnd bool `json:"showExplanationsAtEnd" yaml:"showExplanationsAtEnd"`
}

// GameRecord is the persisted form of a game
type GameRecord struct {
	Questions            []QuestionRecord                `json:"questions" yaml:"questions"`
	CurrentQuestionIndex int                             `json:"currentQuestionIndex" yaml:"currentQuestionIndex"`
	QuestionStartedAt    time.Time                       `json:"questionStartedAt" yaml:"questionStartedAt"`
	Phase                game.Phase                      `json:"phase" yaml:"phase"`
	RevealStartedAt      *time.Time                      `json:"revealStartedAt,omitempty" yaml:"revealStartedAt,omitempty"`
	Scores               map[string]ScoreRecord          `json:"scores" yaml:"scores"`
	Answers              map[string]map[int]AnswerRecord `json:"answers" yaml:"answers"`
}

// QuestionRecord is the persisted form of a question
type QuestionRecord struct {
	CardID        string   `json:"cardId" yaml:"cardId"`
	Question      string   `json:"question" yaml:"question"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Options       []string `json:"options" yaml:"options"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// ScoreRecord is the persisted form of a score entry
type ScoreRecord struct {
	Correct       int `json:"correct" yaml:"correct"`
	Incorrect     int `json:"incorrect" yaml:"incorrect"`
	Points        int `json:"points" yaml:"points"`
	CurrentStreak int `json:"currentStreak" yaml:"currentStreak"`
	BestStreak    int `json:"bestStreak" yaml:"bestStreak"`
}

// AnswerRecord is the persisted form of an answer entry
type AnswerRecord struct {
	SelectedOption string `json:"selectedOption" yaml:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect" yaml:"isCorrect"`
	TimeToAnswerMs int64  `json:"timeToAnswerMs" yaml:"timeToAnswerMs"`
}

// Capture copies room into a record that shares no memory with it. The
// caller must hold whatever lock guards room.
func Capture(room *game.Room) RoomRecord {
	rec := RoomRecord{
		Code:         room.Code,
		HostID:       room.HostID,
		Players:      make([]PlayerRecord, len(room.Players)),
		Settings:     SettingsRecord(room.Settings),
		Status:       room.Status(),
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
	}
	for i, p := range room.Players {
		rec.Players[i] = PlayerRecord{ID: p.ID, Name: p.Name, Color: p.Color, JoinedAt: p.JoinedAt, LastSeen: p.LastSeen}
	}
	if room.Deck != nil {
		rec.DeckID, rec.DeckName = room.Deck.ID, room.Deck.Name
	}
	if g := room.Game(); g != nil {
		rec.Game = captureGame(g)
	}
	return rec
}

func captureGame(g *game.GameState) *GameRecord {
	gr := &GameRecord{
		Questions:            make([]QuestionRecord, len(g.Questions)),
		CurrentQuestionIndex: g.CurrentQuestionIndex,
		QuestionStartedAt:    g.QuestionStartedAt,
		Phase:                g.Phase,
		Scores:               make(map[string]ScoreRecord, len(g.Scores)),
		Answers:              make(map[string]map[int]AnswerRecord, len(g.Answers)),
	}
	for i, q := range g.Questions {
		gr.Questions[i] = QuestionRecord{
			CardID:        q.CardID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Options:       append([]string(nil), q.Options...),
			Explanation:   q.Explanation,
		}
	}
	if !g.RevealStartedAt.IsZero() {
		t := g.RevealStartedAt
		gr.RevealStartedAt = &t
	}
	for id, s := range g.Scores {
		gr.Scores[id] = ScoreRecord(*s)
	}
	for id, byIndex := range g.Answers {
		m := make(map[int]AnswerRecord, len(byIndex))
		for idx, a := range byIndex {
			m[idx] = AnswerRecord(a)
		}
		gr.Answers[id] = m
	}
	return gr
}

// Room rebuilds the live room from its record
func (rec RoomRecord) Room() *game.Room {
	room := &game.Room{
		Code:         rec.Code,
		HostID:       rec.HostID,
		Players:      make([]*game.Player, len(rec.Players)),
		Settings:     game.Settings(rec.Settings),
		Stage:        game.Lobby{},
		CreatedAt:    rec.CreatedAt,
		LastActivity: rec.LastActivity,
	}
	for i, p := range rec.Players {
		room.Players[i] = &game.Player{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color,
			IsHost:   p.ID == rec.HostID,
			JoinedAt: p.JoinedAt,
			LastSeen: p.LastSeen,
		}
	}
	if rec.DeckID != "" {
		room.Deck = &game.Deck{ID: rec.DeckID, Name: rec.DeckName}
	}

	if rec.Game != nil {
		g := rec.Game.gameState()
		switch rec.Status {
		case game.StatusPlaying:
			room.Stage = game.Playing{Game: g}
		case game.StatusFinished:
			room.Stage = game.Finished{Game: g}
		}
	}
	return room
}

func (gr *GameRecord) gameState() *game.GameState {
	g := &game.GameState{
		Questions:            make([]game.Question, len(gr.Questions)),
		CurrentQuestionIndex: gr.CurrentQuestionIndex,
		QuestionStartedAt:    gr.QuestionStartedAt,
		Phase:                gr.Phase,
		Scores:               make(map[string]*game.ScoreEntry, len(gr.Scores)),
		Answers:              make(map[string]map[int]game.AnswerEntry, len(gr.Answers)),
	}
	for i, q := range gr.Questions {
		g.Questions[i] = game.Question{
			CardID:        q.CardID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Options:       append([]string(nil), q.Options...),
			Explanation:   q.Explanation,
		}
	}
	if gr.RevealStartedAt != nil {
		g.RevealStartedAt = *gr.RevealStartedAt
	}
	for id, s := range gr.Scores {
		entry := game.ScoreEntry(s)
		g.Scores[id] = &entry
	}
	for id, byIndex := range gr.Answers {
		m := make(map[int]game.AnswerEntry, len(byIndex))
		for idx, a := range byIndex {
			m[idx] = game.AnswerEntry(a)
		}
		g.Answers[id] = m
	}
	return g
}

// valid reports whether a decoded record can be restored safely
func (rec RoomRecord) valid() bool {
	if rec.Code == "" || rec.HostID == "" {
		return false
	}
	hostSeated := false
	for _, p := range rec.Players {
		if p.ID == rec.HostID {
			hostSeated = true
		}
	}
	if !hostSeated {
		return false
	}
	switch rec.Status {
	case game.StatusLobby:
		return true
	case game.StatusPlaying, game.StatusFinished:
		g := rec.Game
		if g == nil || g.CurrentQuestionIndex < 0 || g.CurrentQuestionIndex >= len(g.Questions) {
			return false
		}
		return phaseMatches(rec.Status, g)
	default:
		return false
	}
}

// A playing room must be mid-question or revealing, a finished one finished.
// Any other pair would restore a room the tick can never move.
func phaseMatches(status game.Status, g *GameRecord) bool {
	switch g.Phase {
	case game.PhaseQuestion:
		return status == game.StatusPlaying
	case game.PhaseReveal:
		return status == game.StatusPlaying && g.RevealStartedAt != nil
	case game.PhaseFinished:
		return status == game.StatusFinished
	default:
		return false
	}
}
