package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "openai-custom", cfg.ModelProvider)
	assert.Equal(t, "provider_pools.json", cfg.ProviderPoolsFilePath)
	assert.Equal(t, SystemPromptOff, cfg.SystemPromptMode)
	assert.Equal(t, PromptLogNone, cfg.PromptLogMode)
	assert.Equal(t, 1, cfg.RequestMaxRetries)
	assert.Equal(t, time.Second, cfg.RequestBaseDelay)
	assert.Equal(t, 15, cfg.CronNearMinutes)
	assert.False(t, cfg.CronRefreshToken)
	assert.Equal(t, 3, cfg.MaxErrorCount)
	assert.Equal(t, "usage.db", cfg.UsageDBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("MODEL_PROVIDER", "claude-custom")
	t.Setenv("SYSTEM_PROMPT_MODE", "append")
	t.Setenv("PROMPT_LOG_MODE", "console")
	t.Setenv("REQUEST_MAX_RETRIES", "4")
	t.Setenv("REQUEST_BASE_DELAY", "250")
	t.Setenv("CRON_REFRESH_TOKEN", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "claude-custom", cfg.ModelProvider)
	assert.Equal(t, SystemPromptAppend, cfg.SystemPromptMode)
	assert.Equal(t, PromptLogConsole, cfg.PromptLogMode)
	assert.Equal(t, 4, cfg.RequestMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestBaseDelay)
	assert.True(t, cfg.CronRefreshToken)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"port not a number", "SERVER_PORT", "eighty"},
		{"unknown prompt mode", "SYSTEM_PROMPT_MODE", "sometimes"},
		{"unknown log mode", "PROMPT_LOG_MODE", "syslog"},
		{"negative retries", "REQUEST_MAX_RETRIES", "-1"},
		{"zero error count", "MAX_ERROR_COUNT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Field)
		})
	}
}
