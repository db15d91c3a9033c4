package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string

	// Delay between opening the notification panel and the deferred
	// mark-all-read run.
	MarkReadDelay time.Duration

	RateLimitPost  time.Duration
	RateLimitJob   time.Duration
	RateLimitReply time.Duration

	// Interval of the reply counter reconciliation sweep.
	ReconcileInterval string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ReconcileInterval: getEnv("RECONCILE_INTERVAL", "@every 10m"),
	}

	// Parsing durations
	var err error
	cfg.MarkReadDelay, err = parseDuration(getEnv("MARK_READ_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARK_READ_DELAY: %w", err)
	}
	cfg.RateLimitPost, err = parseDuration(getEnv("RATE_LIMIT_POST", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}
	cfg.RateLimitJob, err = parseDuration(getEnv("RATE_LIMIT_JOB", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_JOB: %w", err)
	}
	cfg.RateLimitReply, err = parseDuration(getEnv("RATE_LIMIT_REPLY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REPLY: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
