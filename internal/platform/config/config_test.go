package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_OptionalChatIDsDefaultEmpty(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.GroupChatID, "enforcement is opt-in")
	assert.Empty(t, cfg.AlertChatID, "alert delivery is opt-in")
}

func TestLoad_ExplicitValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_GROUP_CHAT_ID", "-100987654")
	t.Setenv("TELEGRAM_ALERT_CHAT_ID", "123456")
	t.Setenv("REDIS_URL", "redis://redis.internal:6380/2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "-100987654", cfg.GroupChatID)
	assert.Equal(t, "123456", cfg.AlertChatID)
	assert.Equal(t, "redis://redis.internal:6380/2", cfg.RedisURL)
}

func TestLoad_MissingBotToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, "TELEGRAM_BOT_TOKEN is required", err.Error())
}

func TestLoad_RejectsNonRedisURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_URL", "http://localhost:6379")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}
