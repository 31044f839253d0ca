package app

import (
	"os"
	"strconv"
	"time"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/jwtx"
)

// Config is loaded once from the environment in main and never mutated
// afterwards; everything downstream receives it by reference.
type Config struct {
	Issuer string // Issuer claim for tokens and authenticator apps

	NumKeys      int    // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)
	DatabaseFile string // Optional: path to SQLite database file (default: ./stockade.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	AccessTokenTTL       time.Duration // Access token lifetime (default: 15m)
	ChallengeTTL         time.Duration // Login challenge lifetime (default: 5m)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("STOCKADE_ISSUER", "stockade"),
		DatabaseFile:         getEnvOrDefault("STOCKADE_DATABASE_FILE", "stockade.db"),
		PepperFile:           getEnvOrDefault("STOCKADE_PEPPER_FILE", "pepper"),
		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		ChallengeTTL:         getEnvDurationOrDefault("LOGIN_CHALLENGE_TTL", service.DefaultChallengeTTL),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Parse number of signing keys (default: 3)
	if numKeysStr := os.Getenv("STOCKADE_NUM_KEYS"); numKeysStr != "" {
		if numKeys, err := strconv.Atoi(numKeysStr); err == nil {
			cfg.NumKeys = numKeys
		}
		// If parsing fails, NumKeys remains 0 (will use default in KeyManager)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accepts duration strings (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
