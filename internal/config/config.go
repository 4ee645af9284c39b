// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	Database DatabaseConfig
	Auth     AuthConfig
	Sync     SyncConfig

	// LowMarginPct overrides the low-margin threshold of the reports.
	LowMarginPct string
}

// DatabaseConfig holds the Postgres pool settings.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// Migrate applies the embedded schema at startup.
	Migrate bool
}

// AuthConfig holds token settings and the configured accounts.
type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AdminUser        string
	AdminPassHash    string
	SyncUser         string
	SyncPassHash     string
	MaxLoginAttempts int
	LockDuration     time.Duration
}

// SyncConfig holds the billing-system pull settings used by the worker.
type SyncConfig struct {
	InvoiceXDSN string
	Cron        string
	BatchSize   int
	RedisAddr   string
	LockTTL     time.Duration
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("APP_PORT", "8080"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			Migrate:         getEnvBool("DB_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			TokenTTL:         getEnvDuration("JWT_TTL", 12*time.Hour),
			AdminUser:        getEnv("ADMIN_USER", "admin"),
			AdminPassHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
			SyncUser:         getEnv("SYNC_USER", "invoicex"),
			SyncPassHash:     os.Getenv("SYNC_PASSWORD_HASH"),
			MaxLoginAttempts: getEnvInt("AUTH_MAX_LOGIN_ATTEMPTS", 5),
			LockDuration:     getEnvDuration("AUTH_LOCK_DURATION", 15*time.Minute),
		},
		Sync: SyncConfig{
			InvoiceXDSN: os.Getenv("INVOICEX_DSN"),
			Cron:        getEnv("SYNC_CRON", "*/15 * * * *"),
			BatchSize:   getEnvInt("SYNC_BATCH_SIZE", 500),
			RedisAddr:   os.Getenv("REDIS_ADDR"),
			LockTTL:     getEnvDuration("SYNC_LOCK_TTL", 10*time.Minute),
		},
		LowMarginPct: os.Getenv("LOW_MARGIN_PCT"),
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
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
