package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	ProfileStore   string // "postgres" or "memory"

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Overlay
	DefaultProfile      string
	PreviewCacheSeconds int

	// Security
	JWTSecret             string
	JWTTTLHours           int
	LoginRateLimitSeconds int

	// Bootstrap admin for the memory profile store
	AdminUsername string
	AdminToken    string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/aimguide?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		ProfileStore:   getEnv("PROFILE_STORE", "postgres"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Overlay
		DefaultProfile:      getEnv("DEFAULT_PROFILE", "default"),
		PreviewCacheSeconds: getEnvInt("PREVIEW_CACHE_SECONDS", 30),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTLHours:           getEnvInt("JWT_TTL_HOURS", 24),
		LoginRateLimitSeconds: getEnvInt("LOGIN_RATE_LIMIT_SECONDS", 3),

		// Bootstrap admin
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
