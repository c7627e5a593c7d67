package config

import (
	"testing"
	"time"

	"github.com/chessrules/chess-server/internal/testutil"
	"github.com/gofiber/fiber/v2/log"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg, Default())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		EnvListenAddr:          ":8080",
		EnvAllowOrigins:        "*",
		EnvDBPath:              "",
		EnvLogLevel:            " DEBUG ",
		EnvTimeControl:         "0",
		EnvMatchmakingInterval: "250ms",
	}))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg, Config{
		ListenAddr:          ":8080",
		AllowOrigins:        "*",
		DBPath:              "",
		LogLevel:            "debug",
		TimeControl:         0,
		MatchmakingInterval: 250 * time.Millisecond,
	})

	level, err := cfg.Level()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, level, log.LevelDebug)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"time control", map[string]string{EnvTimeControl: "ten minutes"}},
		{"negative time control", map[string]string{EnvTimeControl: "-1m"}},
		{"interval", map[string]string{EnvMatchmakingInterval: "0"}},
		{"log level", map[string]string{EnvLogLevel: "loud"}},
		{"listen address", map[string]string{EnvListenAddr: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(env(tt.vars))
			testutil.AssertErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
