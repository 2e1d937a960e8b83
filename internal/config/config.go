package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Scoring ScoringConfig
	Storage StorageConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT,default=8080"`
	Host string `env:"HOST,default=0.0.0.0"`
	Env  string `env:"ENV,default=development"` // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	RoomCodeLength   int  `env:"ROOM_CODE_LENGTH,default=6"`
	EnforceTurnOrder bool `env:"ENFORCE_TURN_ORDER,default=false"`
}

// ScoringConfig holds grammar-check configuration
type ScoringConfig struct {
	CheckURL string        `env:"SCORING_CHECK_URL,default=https://api.languagetoolplus.com/v2/check"`
	Language string        `env:"SCORING_LANGUAGE,default=en-US"`
	Timeout  time.Duration `env:"SCORING_TIMEOUT,default=5s"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	BadgerPath string `env:"BADGER_FILEPATH,default=./data/rooms"`
	InMemory   bool   `env:"BADGER_IN_MEMORY,default=false"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"` // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
