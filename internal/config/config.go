package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	QueueMemory = "memory"
	QueueRedis  = "redis"

	ProviderAuto      = "auto"
	ProviderGemini    = "gemini"
	ProviderSynthetic = "synthetic"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	MaxUploadBytes   int64
	RateLimitPerMin  int

	Workers            int
	WorkerClaimTimeout time.Duration
	QueueBackend       string
	QueueCapacity      int

	RedisAddr          string
	RedisQueueKey      string
	RedisProcessingKey string
	// RedisInstanceID namespaces the queue keys; random per start unless set.
	RedisInstanceID string

	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	ProviderTimeout time.Duration
	SyntheticDelay  time.Duration

	HistoryLimit    int
	JobTTL          time.Duration
	JanitorInterval time.Duration
}

// Load reads .env files when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:   envOr("APP_ENV", "development"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		HTTPReadTimeout:  time.Second * time.Duration(envIntOr("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(envIntOr("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(envIntOr("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		MaxUploadBytes:   int64(envIntOr("MAX_UPLOAD_MB", 32)) << 20,
		RateLimitPerMin:  envIntOr("RATE_LIMIT_PER_MINUTE", 30),

		Workers:            envIntOr("WORKERS", 4),
		WorkerClaimTimeout: time.Millisecond * time.Duration(envIntOr("WORKER_CLAIM_TIMEOUT_MS", 1000)),
		QueueBackend:       strings.ToLower(envOr("QUEUE_BACKEND", QueueMemory)),
		QueueCapacity:      envIntOr("QUEUE_CAPACITY", 100),

		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisQueueKey:      envOr("REDIS_QUEUE_KEY", "imagejobs:queue"),
		RedisProcessingKey: envOr("REDIS_PROCESSING_KEY", "imagejobs:processing"),
		RedisInstanceID:    envOr("REDIS_INSTANCE_ID", uuid.NewString()),

		Provider:        strings.ToLower(envOr("PROVIDER", ProviderAuto)),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:   envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ProviderTimeout: time.Second * time.Duration(envIntOr("PROVIDER_TIMEOUT_SECONDS", 120)),
		SyntheticDelay:  time.Millisecond * time.Duration(envIntOr("SYNTHETIC_DELAY_MS", 1500)),

		HistoryLimit:    envIntOr("HISTORY_LIMIT", 50),
		JobTTL:          time.Minute * time.Duration(envIntOr("JOB_TTL_MINUTES", 60)),
		JanitorInterval: time.Second * time.Duration(envIntOr("JANITOR_INTERVAL_SECONDS", 60)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.QueueBackend {
	case QueueMemory, QueueRedis:
	default:
		return fmt.Errorf("QUEUE_BACKEND must be %q or %q, got %q", QueueMemory, QueueRedis, c.QueueBackend)
	}
	switch c.Provider {
	case ProviderAuto, ProviderGemini, ProviderSynthetic:
	default:
		return fmt.Errorf("PROVIDER must be auto, gemini or synthetic, got %q", c.Provider)
	}
	if c.Provider == ProviderGemini && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when PROVIDER=gemini")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.WorkerClaimTimeout <= 0 {
		return fmt.Errorf("WORKER_CLAIM_TIMEOUT_MS must be positive, got %s", c.WorkerClaimTimeout)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.QueueCapacity)
	}
	return nil
}

// ResolvedProvider turns "auto" into gemini when a key is configured.
func (c *Config) ResolvedProvider() string {
	if c.Provider != ProviderAuto {
		return c.Provider
	}
	if c.GeminiAPIKey != "" {
		return ProviderGemini
	}
	return ProviderSynthetic
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
