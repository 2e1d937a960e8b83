package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)

	req.Equal("8080", cfg.Server.Port)
	req.Equal("development", cfg.Server.Env)
	req.True(cfg.IsDevelopment())
	req.Equal(6, cfg.Game.RoomCodeLength)
	req.False(cfg.Game.EnforceTurnOrder)
	req.Equal(5*time.Second, cfg.Scoring.Timeout)
	req.Equal("en-US", cfg.Scoring.Language)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)

	t.Setenv("PORT", "9999")
	t.Setenv("ENFORCE_TURN_ORDER", "true")
	t.Setenv("SCORING_TIMEOUT", "250ms")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	req.NoError(err)

	req.Equal("9999", cfg.Server.Port)
	req.True(cfg.Game.EnforceTurnOrder)
	req.Equal(250*time.Millisecond, cfg.Scoring.Timeout)
	req.Equal("json", cfg.Logging.Format)
	req.Equal("0.0.0.0:9999", cfg.GetAddr())
}
