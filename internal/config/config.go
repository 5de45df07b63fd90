package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all application configurations.
// Values come from an optional YAML file, then the environment (.env included).
type Config struct {
	// Server Configuration
	Environment    string        `yaml:"environment"`
	ServerPort     string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"cors_allowed_origins"`

	// Store selection
	StoreDriver string `yaml:"store_driver"`

	// DB configuration
	DatabaseURL string `yaml:"database_url"`
	DBHost      string `yaml:"db_host"`
	DBPort      string `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DBSSLMode   string `yaml:"db_ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// Redis configuration
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Application settings
	BaseURL           string `yaml:"base_url"`            // Base URL for composing short links
	MaxCreateAttempts int    `yaml:"max_create_attempts"` // Short id draws per create before giving up

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Environment:    "development",
		ServerPort:     "3000",
		RequestTimeout: 10 * time.Second,

		StoreDriver: DriverPostgres,

		DBHost:      "localhost",
		DBPort:      "5432",
		DBUser:      "postgres",
		DBName:      "urlpeek",
		DBSSLMode:   "disable",
		AutoMigrate: true,

		RedisAddr: "localhost:6379",

		BaseURL:           "https://urlpeek.vercel.app",
		MaxCreateAttempts: 5,

		LogLevel: "info",
		LogFile:  "logs/urlpeek.log",
	}
}

// LoadConfig loads configuration from CONFIG_FILE (if set) and environment variables
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from the environment. Malformed numeric or
// boolean values are reported rather than replaced with the current value.
func (c *Config) applyEnv() error {
	var migrateErr, redisDBErr, attemptsErr error

	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ServerPort = getEnv("PORT", c.ServerPort)

	timeoutSeconds, timeoutErr := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", int(c.RequestTimeout/time.Second))
	c.RequestTimeout = time.Duration(timeoutSeconds) * time.Second
	c.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)

	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSL_MODE", c.DBSSLMode)
	c.AutoMigrate, migrateErr = getEnvAsBool("AUTO_MIGRATE", c.AutoMigrate)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB, redisDBErr = getEnvAsInt("REDIS_DB", c.RedisDB)

	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.MaxCreateAttempts, attemptsErr = getEnvAsInt("MAX_CREATE_ATTEMPTS", c.MaxCreateAttempts)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	return errors.Join(timeoutErr, migrateErr, redisDBErr, attemptsErr)
}

// Validate checks if all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, redis, memory, got %q", c.StoreDriver)
	}

	// Validate database password in production
	if c.IsProduction() && c.StoreDriver == DriverPostgres && c.DatabaseURL == "" && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD or DATABASE_URL is required in production")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}

	if c.MaxCreateAttempts < 1 {
		return fmt.Errorf("MAX_CREATE_ATTEMPTS must be at least 1, got %d", c.MaxCreateAttempts)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}

	return nil
}

// DSN returns the postgres connection string, composing it from the DB_* parts when DATABASE_URL is unset
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions for reading environment variables

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer or returns default when unset
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer, got %q", key, valueStr)
	}

	return value, nil
}

// getEnvAsBool reads an environment variable as boolean or returns default when unset
func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a boolean, got %q", key, valueStr)
	}

	return value, nil
}

// getEnvAsList reads a comma-separated environment variable or returns default
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
