package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server   ServerSettings   `yaml:"server"`
	Battle   BattleSettings   `yaml:"battle"`
	Snapshot SnapshotSettings `yaml:"snapshot"`
}

// ServerSettings contains HTTP and process-wide settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Applied by middleware to non-streaming routes

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`      // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"` // burst size

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	// PublicBaseURL overrides the request-derived base URL in join links
	PublicBaseURL string `yaml:"publicBaseURL"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// BattleSettings contains room and game policy
type BattleSettings struct {
	MaxPlayersPerRoom int `yaml:"maxPlayersPerRoom"`
	MinPlayersToStart int `yaml:"minPlayersToStart"`
	RoomCodeLength    int `yaml:"roomCodeLength"`
	DefaultRounds     int `yaml:"defaultRounds"`
	MaxTimerSeconds   int `yaml:"maxTimerSeconds"`

	TickInterval    time.Duration `yaml:"tickInterval"`
	RevealDuration  time.Duration `yaml:"revealDuration"`
	NoTimerTimeout  time.Duration `yaml:"noTimerTimeout"`
	DisconnectAfter time.Duration `yaml:"disconnectAfter"`
	StaleAfter      time.Duration `yaml:"staleAfter"`
}

// SnapshotSettings controls the crash-recovery snapshot file
type SnapshotSettings struct {
	Enabled  bool          `yaml:"enabled"`
	Path     string        `yaml:"path"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // 0 for SSE support
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,

			RateLimit:      20,
			RateLimitBurst: 40,

			MaxRequestSize: 1 << 20, // 1MB

			LogLevel:  "info",
			LogFormat: "text",
		},
		Battle: BattleSettings{
			MaxPlayersPerRoom: 12,
			MinPlayersToStart: 2,
			RoomCodeLength:    6,
			DefaultRounds:     10,
			MaxTimerSeconds:   300,

			TickInterval:    time.Second,
			RevealDuration:  3500 * time.Millisecond,
			NoTimerTimeout:  90 * time.Second,
			DisconnectAfter: 60 * time.Second,
			StaleAfter:      time.Hour,
		},
		Snapshot: SnapshotSettings{
			Enabled:  true,
			Path:     "data/rooms.json",
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimit and rateLimitBurst must be positive")
	}

	b := c.Battle
	if b.MaxPlayersPerRoom < 1 {
		return fmt.Errorf("maxPlayersPerRoom must be at least 1")
	}
	if b.MinPlayersToStart < 1 {
		return fmt.Errorf("minPlayersToStart must be at least 1")
	}
	if b.MinPlayersToStart > b.MaxPlayersPerRoom {
		return fmt.Errorf("minPlayersToStart cannot be greater than maxPlayersPerRoom")
	}
	if b.RoomCodeLength < 4 || b.RoomCodeLength > 12 {
		return fmt.Errorf("roomCodeLength must be between 4 and 12")
	}
	if b.DefaultRounds < 1 {
		return fmt.Errorf("defaultRounds must be at least 1")
	}
	if b.MaxTimerSeconds < 1 {
		return fmt.Errorf("maxTimerSeconds must be at least 1")
	}
	for name, d := range map[string]time.Duration{
		"tickInterval":    b.TickInterval,
		"revealDuration":  b.RevealDuration,
		"noTimerTimeout":  b.NoTimerTimeout,
		"disconnectAfter": b.DisconnectAfter,
		"staleAfter":      b.StaleAfter,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Snapshot.Enabled {
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot path must be set when snapshots are enabled")
		}
		if c.Snapshot.Debounce <= 0 {
			return fmt.Errorf("snapshot debounce must be positive")
		}
	}

	return nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
