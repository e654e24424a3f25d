// Package config holds the gateway's runtime configuration and the OAuth
// credential files it manages on disk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SystemPromptMode controls how SYSTEM_PROMPT_FILE_PATH content is combined
// with the client's own system prompt.
type SystemPromptMode string

const (
	SystemPromptAppend   SystemPromptMode = "append"
	SystemPromptOverride SystemPromptMode = "override"
	SystemPromptOff      SystemPromptMode = "off"
)

// PromptLogMode controls where request/response prompts are recorded.
type PromptLogMode string

const (
	PromptLogNone    PromptLogMode = "none"
	PromptLogFile    PromptLogMode = "file"
	PromptLogConsole PromptLogMode = "console"
)

// Config is the gateway configuration, populated from environment variables
// with CLI flags taking precedence.
type Config struct {
	RequiredAPIKey string
	Host           string
	ServerPort     int

	// ModelProvider is the default provider kind used when neither the
	// model prefix nor the URL path resolves one.
	ModelProvider string

	ProviderPoolsFilePath string
	SystemPromptFilePath  string
	SystemPromptMode      SystemPromptMode
	PromptLogMode         PromptLogMode
	PromptLogBaseName     string

	RequestMaxRetries int
	RequestBaseDelay  time.Duration

	CronNearMinutes  int
	CronRefreshToken bool

	MaxErrorCount int
	UsageDBPath   string
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Load reads configuration from environment variables, applying defaults
// for everything optional.
func Load() (*Config, error) {
	cfg := &Config{
		RequiredAPIKey:        os.Getenv("REQUIRED_API_KEY"),
		Host:                  envOr("HOST", "0.0.0.0"),
		ModelProvider:         envOr("MODEL_PROVIDER", "openai-custom"),
		ProviderPoolsFilePath: envOr("PROVIDER_POOLS_FILE_PATH", "provider_pools.json"),
		SystemPromptFilePath:  os.Getenv("SYSTEM_PROMPT_FILE_PATH"),
		PromptLogBaseName:     envOr("PROMPT_LOG_BASE_NAME", "prompt"),
		UsageDBPath:           envOr("USAGE_DB_PATH", "usage.db"),
	}

	port, err := envInt("SERVER_PORT", 3000)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, &ConfigError{Field: "SERVER_PORT", Message: "must be a valid port number (1-65535)"}
	}
	cfg.ServerPort = port

	mode := SystemPromptMode(envOr("SYSTEM_PROMPT_MODE", string(SystemPromptOff)))
	switch mode {
	case SystemPromptAppend, SystemPromptOverride, SystemPromptOff:
		cfg.SystemPromptMode = mode
	default:
		return nil, &ConfigError{Field: "SYSTEM_PROMPT_MODE", Message: "must be one of append, override, off"}
	}

	logMode := PromptLogMode(envOr("PROMPT_LOG_MODE", string(PromptLogNone)))
	switch logMode {
	case PromptLogNone, PromptLogFile, PromptLogConsole:
		cfg.PromptLogMode = logMode
	default:
		return nil, &ConfigError{Field: "PROMPT_LOG_MODE", Message: "must be one of none, file, console"}
	}

	if cfg.RequestMaxRetries, err = envInt("REQUEST_MAX_RETRIES", 1); err != nil {
		return nil, err
	}
	if cfg.RequestMaxRetries < 0 {
		return nil, &ConfigError{Field: "REQUEST_MAX_RETRIES", Message: "must not be negative"}
	}

	baseDelayMS, err := envInt("REQUEST_BASE_DELAY", 1000)
	if err != nil {
		return nil, err
	}
	cfg.RequestBaseDelay = time.Duration(baseDelayMS) * time.Millisecond

	if cfg.CronNearMinutes, err = envInt("CRON_NEAR_MINUTES", 15); err != nil {
		return nil, err
	}
	cfg.CronRefreshToken = envBool("CRON_REFRESH_TOKEN", false)

	if cfg.MaxErrorCount, err = envInt("MAX_ERROR_COUNT", 3); err != nil {
		return nil, err
	}
	if cfg.MaxErrorCount <= 0 {
		return nil, &ConfigError{Field: "MAX_ERROR_COUNT", Message: "must be a positive integer"}
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}
