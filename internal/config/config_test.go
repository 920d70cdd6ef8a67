package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "attendance_db", cfg.DBName)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "inline", cfg.NotifyMode)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, 256, cfg.NotifyQueueCapacity)
	assert.Equal(t, 5, cfg.NotifyMaxAttempts)
	assert.Equal(t, 10, cfg.NotifyDrainSeconds)
	assert.Equal(t, "no-reply@attendance-service.com", cfg.NotifySender)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("NOTIFY_MODE", "sqs")
	t.Setenv("NOTIFY_SQS_QUEUE_URL", "https://sqs.eu-west-1.amazonaws.com/123/notify")
	t.Setenv("NOTIFY_WORKERS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.DBHost)
	assert.Equal(t, "sqs", cfg.NotifyMode)
	assert.Equal(t, "https://sqs.eu-west-1.amazonaws.com/123/notify", cfg.NotifyQueueURL)
	assert.Equal(t, 8, cfg.NotifyWorkers)
}
