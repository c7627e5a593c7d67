// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// ErrInvalidConfig indicates a setting that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variable names.
const (
	EnvListenAddr          = "CHESS_LISTEN_ADDR"
	EnvAllowOrigins        = "CHESS_ALLOW_ORIGINS"
	EnvDBPath              = "CHESS_DB_PATH"
	EnvLogLevel            = "CHESS_LOG_LEVEL"
	EnvTimeControl         = "CHESS_TIME_CONTROL"
	EnvMatchmakingInterval = "CHESS_MATCHMAKING_INTERVAL"
)

type Config struct {
	ListenAddr   string
	AllowOrigins string
	// DBPath is the SQLite file; empty keeps games in memory only.
	DBPath              string
	LogLevel            string
	TimeControl         time.Duration
	MatchmakingInterval time.Duration
}

func Default() Config {
	return Config{
		ListenAddr:          ":3000",
		AllowOrigins:        "http://localhost:5173",
		DBPath:              "chess.db",
		LogLevel:            "info",
		TimeControl:         10 * time.Minute,
		MatchmakingInterval: time.Second,
	}
}

// Load starts from Default and applies any variables set in the environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvListenAddr); ok {
		cfg.ListenAddr = v
	}
	if v, ok := lookup(EnvAllowOrigins); ok {
		cfg.AllowOrigins = v
	}
	if v, ok := lookup(EnvDBPath); ok {
		cfg.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvTimeControl); ok {
		d, err := parseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvTimeControl, err)
		}
		cfg.TimeControl = d
	}
	if v, ok := lookup(EnvMatchmakingInterval); ok {
		d, err := parseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMatchmakingInterval, err)
		}
		cfg.MatchmakingInterval = d
	}

	return cfg, cfg.Validate()
}

// parseDuration also accepts a bare "0".
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "0" {
		return 0, nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	}
	if c.TimeControl < 0 {
		return fmt.Errorf("%w: negative time control %s", ErrInvalidConfig, c.TimeControl)
	}
	if c.MatchmakingInterval <= 0 {
		return fmt.Errorf("%w: matchmaking interval must be positive", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto fiber's logger levels.
func (c Config) Level() (log.Level, error) {
	switch c.LogLevel {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
}
