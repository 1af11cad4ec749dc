package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	ListenAddr string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Database
	DBPath string

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET must be set")
	}

	ttlMinutes := getEnvAsInt("TOKEN_TTL_MINUTES", 30)
	if ttlMinutes <= 0 {
		errs = append(errs, "TOKEN_TTL_MINUTES must be positive")
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	cfg.BcryptCost = getEnvAsInt("BCRYPT_COST", 0) // 0 means the bcrypt default
	if cfg.BcryptCost < 0 || cfg.BcryptCost > 31 {
		errs = append(errs, "BCRYPT_COST must be between 0 and 31")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/trade_ledger.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
