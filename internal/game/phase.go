package game

import "time"

// Timing holds the server-wide phase durations
type Timing struct {
	RevealDuration time.Duration
	NoTimerTimeout time.Duration
}

// TimerDuration is the per-question limit, zero when untimed
func (s Settings) TimerDuration() time.Duration {
	return time.Duration(s.TimerSeconds) * time.Second
}

// Tick evaluates the phase transitions due at now and reports whether the
// room changed. It is safe to call any number of times.
func (r *Room) Tick(now time.Time, t Timing) bool {
	playing, ok := r.Stage.(Playing)
	if !ok {
		return false
	}
	g := playing.Game

	switch g.Phase {
	case PhaseQuestion:
		return r.tickQuestion(g, now, t)
	case PhaseReveal:
		if now.Sub(g.RevealStartedAt) >= t.RevealDuration {
			r.advance(g, now)
			return true
		}
	}
	return false
}

// CheckAllAnswered moves to the reveal phase as soon as every seated player
// has answered. Called right after a submission or a departure.
func (r *Room) CheckAllAnswered(now time.Time) bool {
	g := r.Game()
	if g == nil || g.Phase != PhaseQuestion || r.Status() != StatusPlaying {
		return false
	}
	if !g.AllAnswered(r.PlayerIDs()) {
		return false
	}
	g.Reveal(now)
	return true
}

// tickQuestion closes the question once everyone answered or its limit ran
// out. Untimed questions use NoTimerTimeout as the limit, counted from
// QuestionStartedAt for the whole question: any player still without an
// answer at that point is force-missed, connected or not.
func (r *Room) tickQuestion(g *GameState, now time.Time, t Timing) bool {
	if r.CheckAllAnswered(now) {
		return true
	}

	elapsed := now.Sub(g.QuestionStartedAt)
	limit := r.Settings.TimerDuration()
	if limit <= 0 {
		limit = t.NoTimerTimeout
	}
	if elapsed < limit {
		return false
	}

	for _, id := range r.PlayerIDs() {
		if !g.HasAnswered(id) {
			g.forceMiss(id, limit.Milliseconds())
		}
	}
	g.Reveal(now)
	return true
}

// TimeRemaining is the time left on the current question's timer. ok is false
// when there is no running timer.
func (r *Room) TimeRemaining(now time.Time) (remaining time.Duration, ok bool) {
	g := r.Game()
	limit := r.Settings.TimerDuration()
	if g == nil || g.Phase != PhaseQuestion || limit <= 0 {
		return 0, false
	}
	return clampRemaining(limit - now.Sub(g.QuestionStartedAt)), true
}

// RevealRemaining is the time left before the reveal phase auto-advances
func (r *Room) RevealRemaining(now time.Time, t Timing) (remaining time.Duration, ok bool) {
	g := r.Game()
	if g == nil || g.Phase != PhaseReveal {
		return 0, false
	}
	return clampRemaining(t.RevealDuration - now.Sub(g.RevealStartedAt)), true
}

func clampRemaining(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
