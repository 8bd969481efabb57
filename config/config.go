package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all application configurations
type Config struct {
	Port           string
	DatabaseDriver string // "postgres" or "sqlite3"
	DatabaseURL    string
	SQLitePath     string
	JWTSecret      string
	TokenTTL       time.Duration
	DailySendLimit int // 0 disables the per-account daily send cap
	BcryptCost     int
}

// LoadConfig reads configuration from .env file
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables directly.")
	}

	cfg := &Config{
		Port:           os.Getenv("PORT"),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       24 * time.Hour,
		BcryptCost:     bcrypt.DefaultCost,
	}

	if cfg.Port == "" {
		cfg.Port = "8002"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
	}
	if cfg.DatabaseDriver == "sqlite3" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "email-service.db"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "your-email-service-secret-key"
		log.Println("JWT_SECRET not set, using insecure default. Do not run like this in production.")
	}

	if ttlStr := os.Getenv("TOKEN_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %q", ttlStr)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if limitStr := os.Getenv("DAILY_SEND_LIMIT"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid DAILY_SEND_LIMIT: %q", limitStr)
		}
		cfg.DailySendLimit = limit
	}

	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %q", costStr)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}

// DSN returns the data source name for the configured database driver.
func (c *Config) DSN() string {
	if c.DatabaseDriver == "sqlite3" {
		return c.SQLitePath
	}
	return c.DatabaseURL
}
