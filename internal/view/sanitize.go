package view

import (
	"sort"
	"time"

	"flashbattle/internal/game"
)

// Build projects room as seen by any client at now
func Build(room *game.Room, now time.Time, opts Options) Room {
	v := Room{
		Code:      room.Code,
		HostID:    room.HostID,
		Players:   make([]Player, 0, len(room.Players)),
		Settings:  room.Settings,
		Status:    room.Status(),
		CreatedAt: room.CreatedAt,
	}

	for _, p := range room.Players {
		v.Players = append(v.Players, Player{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			IsHost:    p.ID == room.HostID,
			Connected: p.Connected(now, opts.DisconnectAfter),
		})
	}

	if room.Deck != nil {
		id, name := room.Deck.ID, room.Deck.Name
		v.DeckID, v.DeckName = &id, &name
	}

	if g := room.Game(); g != nil {
		v.Game = buildGame(room, g, now, opts)
	}
	return v
}

func buildGame(room *game.Room, g *game.GameState, now time.Time, opts Options) *Game {
	idx := g.CurrentQuestionIndex
	revealed := g.Phase != game.PhaseQuestion

	gv := &Game{
		Phase:                g.Phase,
		CurrentQuestionIndex: idx,
		TotalQuestions:       len(g.Questions),
		Answered:             []string{},
		Scores:               make(map[string]game.ScoreEntry, len(g.Scores)),
	}

	q := g.CurrentQuestion()
	gv.Question = &Question{
		CardID:   q.CardID,
		Question: q.Question,
		Options:  append([]string(nil), q.Options...),
	}
	if revealed {
		gv.Question.CorrectAnswer = q.CorrectAnswer
	}

	if d, ok := room.TimeRemaining(now); ok {
		gv.TimeRemainingMs = millis(d)
	}
	if d, ok := room.RevealRemaining(now, opts.Timing); ok {
		gv.RevealRemainingMs = millis(d)
	}

	for _, p := range room.Players {
		a, ok := g.Answer(p.ID, idx)
		if !ok {
			continue
		}
		gv.Answered = append(gv.Answered, p.ID)
		if revealed {
			if gv.Answers == nil {
				gv.Answers = make(map[string]game.AnswerEntry)
			}
			gv.Answers[p.ID] = a
		}
	}

	// Scores move only once the answers are shown
	if revealed {
		for id, s := range g.Scores {
			gv.Scores[id] = *s
		}
	} else {
		gv.Scores = g.ScoresBefore(idx)
	}
	gv.Standings = standings(room, gv.Scores)

	if g.Phase == game.PhaseFinished {
		gv.History = history(g, room.Settings.ShowExplanationsAtEnd)
	}
	return gv
}

// standings ranks the seated players by points, then best streak. Ties share
// a rank; seat order breaks ties for display.
func standings(room *game.Room, scores map[string]game.ScoreEntry) []Standing {
	rows := make([]Standing, 0, len(room.Players))
	for _, p := range room.Players {
		s := scores[p.ID]
		rows = append(rows, Standing{PlayerID: p.ID, Name: p.Name, Points: s.Points, BestStreak: s.BestStreak})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].BestStreak > rows[j].BestStreak
	})

	for i := range rows {
		if i > 0 && rows[i].Points == rows[i-1].Points && rows[i].BestStreak == rows[i-1].BestStreak {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}
	return rows
}

func history(g *game.GameState, withExplanations bool) []HistoryItem {
	items := make([]HistoryItem, len(g.Questions))
	for i, q := range g.Questions {
		item := HistoryItem{
			Index:         i,
			CardID:        q.CardID,
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			Answers:       make(map[string]game.AnswerEntry),
		}
		if withExplanations {
			item.Explanation = q.Explanation
		}
		for pid, byIndex := range g.Answers {
			if a, ok := byIndex[i]; ok {
				item.Answers[pid] = a
			}
		}
		items[i] = item
	}
	return items
}

func millis(d time.Duration) *int64 {
	ms := d.Milliseconds()
	return &ms
}
