// Package config loads application configuration from environment variables.
// All variables use the READNEST_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Speech      SpeechConfig
	Log         LogConfig
	ContentPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL runs
// the server on in-memory stores (dev mode).
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// catalog cache.
type CacheConfig struct {
	URL string
}

// SpeechConfig holds text-to-speech provider settings.
type SpeechConfig struct {
	OpenAIAPIKey     string
	ElevenLabsAPIKey string
	DailyCharBudget  int64 // per learner, per day; 0 means unlimited
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with READNEST_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("READNEST_SERVER_PORT", 8080),
			Host: envStr("READNEST_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("READNEST_DATABASE_URL", ""),
			MaxConns: envInt("READNEST_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("READNEST_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("READNEST_CACHE_URL", ""),
		},
		Speech: SpeechConfig{
			OpenAIAPIKey:     envStr("READNEST_SPEECH_OPENAI_API_KEY", ""),
			ElevenLabsAPIKey: envStr("READNEST_SPEECH_ELEVENLABS_API_KEY", ""),
			DailyCharBudget:  int64(envInt("READNEST_SPEECH_DAILY_CHAR_BUDGET", 50000)),
		},
		Log: LogConfig{
			Level:  envStr("READNEST_LOG_LEVEL", "info"),
			Format: envStr("READNEST_LOG_FORMAT", "json"),
		},
		ContentPath: envStr("READNEST_CONTENT_PATH", "./content"),
	}

	return cfg, nil
}

// Validate checks that configuration values are coherent.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("READNEST_SERVER_PORT must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("READNEST_DATABASE_MIN_CONNS (%d) exceeds max conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Speech.DailyCharBudget < 0 {
		return fmt.Errorf("READNEST_SPEECH_DAILY_CHAR_BUDGET must be non-negative")
	}
	return nil
}

// HasSpeechProvider returns true if at least one TTS provider is configured.
func (c *Config) HasSpeechProvider() bool {
	return c.Speech.OpenAIAPIKey != "" || c.Speech.ElevenLabsAPIKey != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
