// Package view builds the public projection of a room returned to clients.
//
// A view is a pure function of the room and the current time. It hides the
// correct answer until the reveal and exposes the full answer history only
// once the match is finished.
package view

import (
	"time"

	"flashbattle/internal/game"
)

// Room is the sanitized room payload
type Room struct {
	Code      string        `json:"code"`
	HostID    string        `json:"hostId"`
	Players   []Player      `json:"players"`
	DeckID    *string       `json:"deckId"`
	DeckName  *string       `json:"deckName"`
	Settings  game.Settings `json:"settings"`
	Status    game.Status   `json:"status"`
	Game      *Game         `json:"game"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Player is the public part of a player
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// Game is the public part of the game state
type Game struct {
	Phase                game.Phase                  `json:"phase"`
	CurrentQuestionIndex int                         `json:"currentQuestionIndex"`
	TotalQuestions       int                         `json:"totalQuestions"`
	Question             *Question                   `json:"question"`
	TimeRemainingMs      *int64                      `json:"timeRemainingMs"`
	RevealRemainingMs    *int64                      `json:"revealRemainingMs"`
	Answered             []string                    `json:"answered"`
	Answers              map[string]game.AnswerEntry `json:"answers,omitempty"`
	Scores               map[string]game.ScoreEntry  `json:"scores"`
	Standings            []Standing                  `json:"standings"`
	History              []HistoryItem               `json:"history,omitempty"`
}

// Question is the current question. CorrectAnswer stays empty until reveal.
type Question struct {
	CardID        string   `json:"cardId"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// Standing is one row of the leaderboard
type Standing struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	BestStreak int    `json:"bestStreak"`
}

// HistoryItem is a played question with every answer, shown after the match
type HistoryItem struct {
	Index         int                         `json:"index"`
	CardID        string                      `json:"cardId"`
	Question      string                      `json:"question"`
	Options       []string                    `json:"options"`
	CorrectAnswer string                      `json:"correctAnswer"`
	Explanation   string                      `json:"explanation,omitempty"`
	Answers       map[string]game.AnswerEntry `json:"answers"`
}

// Options carries the thresholds the projection depends on
type Options struct {
	DisconnectAfter time.Duration
	Timing          game.Timing
}
