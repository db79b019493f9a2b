package game

import (
	"time"
)

// Phase is the in-game phase
type Phase string

const (
	PhaseQuestion Phase = "question"
	PhaseReveal   Phase = "reveal"
	PhaseFinished Phase = "finished"
)

// Question is one entry of the question snapshot taken at start
type Question struct {
	CardID        string   `json:"cardId"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ScoreEntry is a player's running score
type ScoreEntry struct {
	Correct       int `json:"correct"`
	Incorrect     int `json:"incorrect"`
	Points        int `json:"points"`
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
}

// AnswerEntry is one recorded answer. An empty SelectedOption marks an
// answer forced by a timeout.
type AnswerEntry struct {
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeToAnswerMs int64  `json:"timeToAnswerMs"`
}

// GameState is the state of one match
type GameState struct {
	Questions            []Question
	CurrentQuestionIndex int
	QuestionStartedAt    time.Time
	Phase                Phase
	RevealStartedAt      time.Time // zero outside the reveal phase
	Scores               map[string]*ScoreEntry
	Answers              map[string]map[int]AnswerEntry
}

// NewGameState starts a match for the given players at the first question
func NewGameState(questions []Question, playerIDs []string, now time.Time) *GameState {
	snapshot := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		snapshot[i] = q
	}

	g := &GameState{
		Questions:         snapshot,
		QuestionStartedAt: now,
		Phase:             PhaseQuestion,
		Scores:            make(map[string]*ScoreEntry, len(playerIDs)),
		Answers:           make(map[string]map[int]AnswerEntry, len(playerIDs)),
	}
	for _, id := range playerIDs {
		g.Scores[id] = &ScoreEntry{}
		g.Answers[id] = make(map[int]AnswerEntry)
	}
	return g
}

// CurrentQuestion returns the question being played
func (g *GameState) CurrentQuestion() Question {
	return g.Questions[g.CurrentQuestionIndex]
}

// Answer returns playerID's answer for a question index
func (g *GameState) Answer(playerID string, index int) (AnswerEntry, bool) {
	a, ok := g.Answers[playerID][index]
	return a, ok
}

// HasAnswered reports whether playerID answered the current question
func (g *GameState) HasAnswered(playerID string) bool {
	_, ok := g.Answer(playerID, g.CurrentQuestionIndex)
	return ok
}

// AllAnswered reports whether every listed player answered the current question
func (g *GameState) AllAnswered(playerIDs []string) bool {
	for _, id := range playerIDs {
		if !g.HasAnswered(id) {
			return false
		}
	}
	return true
}

// Record scores a submission. The first answer for an index wins; later ones
// are rejected without touching the score.
func (g *GameState) Record(playerID string, index int, selected string, now time.Time) (AnswerEntry, error) {
	if g.Phase != PhaseQuestion {
		return AnswerEntry{}, ErrWrongPhase
	}
	if index != g.CurrentQuestionIndex {
		return AnswerEntry{}, ErrStaleQuestion
	}
	if _, ok := g.Answer(playerID, index); ok {
		return AnswerEntry{}, ErrAlreadyAnswered
	}

	elapsed := now.Sub(g.QuestionStartedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	entry := AnswerEntry{
		SelectedOption: selected,
		IsCorrect:      AnswersMatch(selected, g.CurrentQuestion().CorrectAnswer),
		TimeToAnswerMs: elapsed,
	}
	g.put(playerID, index, entry)
	return entry, nil
}

// forceMiss records an incorrect empty answer for the current question
func (g *GameState) forceMiss(playerID string, timeToAnswerMs int64) {
	g.put(playerID, g.CurrentQuestionIndex, AnswerEntry{TimeToAnswerMs: timeToAnswerMs})
}

func (g *GameState) put(playerID string, index int, entry AnswerEntry) {
	if g.Answers[playerID] == nil {
		g.Answers[playerID] = make(map[int]AnswerEntry)
	}
	g.Answers[playerID][index] = entry

	score := g.Scores[playerID]
	if score == nil {
		score = &ScoreEntry{}
		g.Scores[playerID] = score
	}
	score.apply(entry.IsCorrect)
}

func (s *ScoreEntry) apply(correct bool) {
	if correct {
		s.Correct++
		s.Points++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
	} else {
		s.Incorrect++
		s.CurrentStreak = 0
	}
}

// ScoresBefore replays the answers to questions before index, giving every
// player's score as it stood when that question opened
func (g *GameState) ScoresBefore(index int) map[string]ScoreEntry {
	scores := make(map[string]ScoreEntry, len(g.Scores))
	for id := range g.Scores {
		var s ScoreEntry
		for i := 0; i < index; i++ {
			if a, ok := g.Answers[id][i]; ok {
				s.apply(a.IsCorrect)
			}
		}
		scores[id] = s
	}
	return scores
}

// Reveal enters the reveal phase
func (g *GameState) Reveal(now time.Time) {
	g.Phase = PhaseReveal
	g.RevealStartedAt = now
}

// Next moves to the following question and reports whether the match is
// over instead
func (g *GameState) Next(now time.Time) (finished bool) {
	g.RevealStartedAt = time.Time{}
	if g.CurrentQuestionIndex+1 >= len(g.Questions) {
		g.Phase = PhaseFinished
		return true
	}
	g.CurrentQuestionIndex++
	g.QuestionStartedAt = now
	g.Phase = PhaseQuestion
	return false
}
