package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// DefaultPassThreshold is applied to intervention plans created without one
	DefaultPassThreshold float64

	// CategoryPassScore is the per-category score an assessment needs to count as passed
	CategoryPassScore float64

	BackupDir string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		DatabaseType:         getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./literacytrack.db"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DefaultPassThreshold: getEnvFloat("DEFAULT_PASS_THRESHOLD", 75),
		CategoryPassScore:    getEnvFloat("CATEGORY_PASS_SCORE", 75),
		BackupDir:            getEnv("BACKUP_DIR", "./backups"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat reads a numeric environment variable, falling back on parse errors
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid value for %s (%q), using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
