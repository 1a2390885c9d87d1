package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// AIBaseURL points at the content-generation collaborator. Empty means
	// the deterministic fallback generator is used.
	AIBaseURL string `env:"AI_BASE_URL"`
	AIAPIKey  string `env:"AI_API_KEY"`
	AIModel   string `env:"AI_MODEL" default:"qwen-plus"`

	SessionTTL   time.Duration `env:"SESSION_TTL" default:"720h"` // 30 days
	EmailCodeTTL time.Duration `env:"EMAIL_CODE_TTL" default:"5m"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL too short: %s", cfg.SessionTTL)
	}

	return nil
}
