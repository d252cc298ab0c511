package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the humanizer server.
type Config struct {
	// Server
	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`

	// Input limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxTextLength int   `env:"MAX_TEXT_LENGTH" envDefault:"100000"`   // runes accepted for a rewrite

	// LLM
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"` // "gemini", "openai" or "stub"
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	APIKey       string `env:"API_KEY"` // legacy name for the Gemini key
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	LLMModel     string `env:"LLM_MODEL"`

	// Sessions
	SessionProvider string        `env:"SESSION_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Extraction cache, shares REDIS_ADDR
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Rewrite history
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory"` // "memory" or "postgres"
	DBURL         string `env:"DB_URL"`

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	EventsURL      string `env:"EVENTS_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// GeminiKey returns the Gemini credential, preferring GEMINI_API_KEY over API_KEY.
func (c Config) GeminiKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.APIKey
}
