package game

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the longest display name kept, in runes
const MaxNameLength = 24

// Palette holds the seat colors, handed out round-robin by join order
var Palette = []string{
	"#EF4444", // red
	"#3B82F6", // blue
	"#22C55E", // green
	"#F59E0B", // amber
	"#A855F7", // purple
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
	"#6366F1", // indigo
	"#84CC16", // lime
	"#06B6D4", // cyan
	"#E11D48", // rose
}

// Player represents a player in a room
type Player struct {
	ID       string
	Name     string
	Color    string
	IsHost   bool
	JoinedAt time.Time
	LastSeen time.Time
}

// NewPlayer creates a new player
func NewPlayer(id, name, color string, now time.Time) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Color:    color,
		JoinedAt: now,
		LastSeen: now,
	}
}

// CleanName trims a display name and caps its length
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	return name, nil
}

// Connected reports whether the player has been seen within threshold
func (p *Player) Connected(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastSeen) < threshold
}
