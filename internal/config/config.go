package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database. Empty selects the in-memory store (local/dev only).
	DatabaseURL string

	// Identity token verification. The platform validates callers upstream
	// and forwards a token signed with this shared secret.
	IdentitySecret string

	// Redis snapshot cache. Empty disables the cache.
	RedisAddr   string
	RedisDB     int
	SnapshotTTL time.Duration
}

func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		IdentitySecret: getEnv("IDENTITY_SECRET", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SnapshotTTL:    time.Duration(getEnvInt("SNAPSHOT_TTL_SECONDS", 300)) * time.Second,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
