package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API process needs at startup. Values come
// from the environment; a .env file in the working directory is honored
// when present.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// SQLitePath is the path to the transactions database file.
	SQLitePath string

	// GeminiAPIKey may be empty, in which case every AI-backed feature
	// degrades to its deterministic fallback instead of failing.
	GeminiAPIKey string
	GeminiModel  string

	// GCSBucket enables archival of uploaded source documents when set.
	GCSBucket string
}

// Load reads configuration from the environment. Missing values fall back
// to defaults suitable for local development.
func Load() *Config {
	// Best effort; absence of a .env file is normal in production.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		SQLitePath:   getEnv("SQLITE_PATH", "finpulse.db"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
