package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/flashbattle")
	}

	// Enable environment variable binding
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// These allow both FLASHBATTLE-style nested keys and the short names to work
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.publicbaseurl", "PUBLIC_BASE_URL")
	v.BindEnv("snapshot.path", "SNAPSHOT_PATH")
	v.BindEnv("snapshot.enabled", "SNAPSHOT_ENABLED")

	setDefaults(v, DefaultConfig())

	// The config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *ServerConfig) {
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout)
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)
	v.SetDefault("server.loglevel", d.Server.LogLevel)
	v.SetDefault("server.logformat", d.Server.LogFormat)

	v.SetDefault("battle.maxplayersperroom", d.Battle.MaxPlayersPerRoom)
	v.SetDefault("battle.minplayerstostart", d.Battle.MinPlayersToStart)
	v.SetDefault("battle.roomcodelength", d.Battle.RoomCodeLength)
	v.SetDefault("battle.defaultrounds", d.Battle.DefaultRounds)
	v.SetDefault("battle.maxtimerseconds", d.Battle.MaxTimerSeconds)
	v.SetDefault("battle.tickinterval", d.Battle.TickInterval)
	v.SetDefault("battle.revealduration", d.Battle.RevealDuration)
	v.SetDefault("battle.notimertimeout", d.Battle.NoTimerTimeout)
	v.SetDefault("battle.disconnectafter", d.Battle.DisconnectAfter)
	v.SetDefault("battle.staleafter", d.Battle.StaleAfter)

	v.SetDefault("snapshot.enabled", d.Snapshot.Enabled)
	v.SetDefault("snapshot.path", d.Snapshot.Path)
	v.SetDefault("snapshot.debounce", d.Snapshot.Debounce)
}
