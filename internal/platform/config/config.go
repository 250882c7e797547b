// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv           string `env:"APP_ENV" default:"development"`
	Port             string `env:"PORT" default:"8080"`
	RedisURL         string `env:"REDIS_URL" default:"redis://localhost:6379"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// GroupChatID is the group whose membership is enforced. Empty disables
	// enforcement (the reconciler skips its ticks with a one-time warning).
	GroupChatID string `env:"TELEGRAM_GROUP_CHAT_ID"`

	// AlertChatID is the destination for sentiment alerts. Empty disables
	// delivery. A bare numeric id is normalized to the supergroup form at
	// send time, not here.
	AlertChatID string `env:"TELEGRAM_ALERT_CHAT_ID"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
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
	if cfg.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return fmt.Errorf("REDIS_URL must be a redis:// or rediss:// URL")
	}
	return nil
}
