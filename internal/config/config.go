package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
// The service is stateless unless DATABASE_URL is set; the only secret it
// carries is the Sentry DSN.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence (optional) - conversion history is skipped when empty
	DatabaseURL string

	// Conversion defaults
	DefaultMaxVoices int   // voices used when the request does not specify any
	MaxVoicesLimit   int   // hard upper bound accepted from requests
	MaxUploadBytes   int64 // reject MIDI uploads larger than this

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

const (
	defaultMaxVoices = 3
	maxVoicesLimit   = 16
	defaultMaxUpload = 4 << 20 // 4 MiB is generous for SMF data
)

func Load() *Config {
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DefaultMaxVoices: getEnvInt("DEFAULT_MAX_VOICES", defaultMaxVoices),
		MaxVoicesLimit:   getEnvInt("MAX_VOICES_LIMIT", maxVoicesLimit),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUpload)),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// HasDatabase returns true when conversion history persistence is enabled
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
