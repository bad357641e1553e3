package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// loaded from environment variables, no magic defaults for required fields.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Analytics AnalyticsConfig
}

// DatabaseConfig contains database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Schema   string
}

// RedisConfig contains the redis connection url.
// empty url disables the leaderboard cache entirely.
type RedisConfig struct {
	URL string
}

// AuthConfig contains authentication configuration.
type AuthConfig struct {
	// JWTSecret signs/validates API bearer tokens
	JWTSecret string
}

// AnalyticsConfig contains engine defaults and worker tuning.
type AnalyticsConfig struct {
	// DefaultWindowDays is the lookback used when a caller omits days.
	DefaultWindowDays int

	// DefaultMinMessages is the leaderboard qualification threshold.
	DefaultMinMessages int

	// RefreshInterval is how often the worker rebuilds cached leaderboards.
	RefreshInterval time.Duration

	// CacheTTL bounds how stale a cached leaderboard may get.
	CacheTTL time.Duration
}

// ConnectionString returns the postgres connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
		c.Schema,
	)
}

// Load reads configuration from environment variables.
// loads .env file if present, but doesn't fail if it's missing.
func Load() (*Config, error) {
	// try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	authConfig, err := loadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}

	analyticsConfig, err := loadAnalyticsConfig()
	if err != nil {
		return nil, fmt.Errorf("analytics config: %w", err)
	}

	return &Config{
		Database:  dbConfig,
		Redis:     RedisConfig{URL: os.Getenv("REDIS_URL")},
		Auth:      authConfig,
		Analytics: analyticsConfig,
	}, nil
}

func loadAuthConfig() (AuthConfig, error) {
	config := AuthConfig{
		JWTSecret: os.Getenv("API_JWT_SECRET"),
	}

	if config.JWTSecret == "" {
		return config, errors.New("API_JWT_SECRET is required")
	}

	return config, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSL_MODE", "require"),
		Schema:   getEnvOrDefault("DB_SCHEMA", "tgstats"),
	}

	// required fields must be set
	if config.User == "" {
		return config, errors.New("DB_USER is required")
	}
	if config.Password == "" {
		return config, errors.New("DB_PASSWORD is required")
	}
	if config.Name == "" {
		return config, errors.New("DB_NAME is required")
	}

	return config, nil
}

func loadAnalyticsConfig() (AnalyticsConfig, error) {
	windowDays, err := getEnvInt("ANALYTICS_WINDOW_DAYS", 30)
	if err != nil {
		return AnalyticsConfig{}, err
	}

	minMessages, err := getEnvInt("ANALYTICS_MIN_MESSAGES", 5)
	if err != nil {
		return AnalyticsConfig{}, err
	}

	refreshInterval, err := getEnvDuration("ANALYTICS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return AnalyticsConfig{}, err
	}

	cacheTTL, err := getEnvDuration("ANALYTICS_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return AnalyticsConfig{}, err
	}

	return AnalyticsConfig{
		DefaultWindowDays:  windowDays,
		DefaultMinMessages: minMessages,
		RefreshInterval:    refreshInterval,
		CacheTTL:           cacheTTL,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}
