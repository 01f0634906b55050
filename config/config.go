package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"3000" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// WorkerCount is the number of claim loops in this process. The
	// rate limiter is process-local, so fanning out processes multiplies
	// the effective per-host rate; cap fanout accordingly.
	WorkerCount      int     `env:"WORKER_COUNT" envDefault:"1" validate:"min=1,max=100"`
	RateLimitPerHost float64 `env:"RATE_LIMIT_PER_HOST" envDefault:"5" validate:"gt=0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
