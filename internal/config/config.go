package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Backend  BackendConfig
	Journal  JournalConfig
	Fraud    FraudConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds the secret shared with the attendance backend.
// The console only verifies tokens, it never issues them.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
	SessionIdleTTL time.Duration
}

// BackendConfig points at the upstream attendance REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

// JournalConfig selects where workflow attempts are recorded.
type JournalConfig struct {
	Driver    string
	Retention time.Duration
}

type FraudConfig struct {
	PrecheckPolicy string
}

const (
	JournalDriverMemory   = "memory"
	JournalDriverPostgres = "postgres"

	PrecheckFailOpen   = "fail-open"
	PrecheckFailClosed = "fail-closed"
)

// Load reads the console server configuration.
func Load() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadClient reads the subset needed by the terminal client. The JWT secret and
// database settings are not required there.
func LoadClient() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	if config.Backend.BaseURL == "" {
		return nil, errors.New("BACKEND_URL is required")
	}

	return config, nil
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_console"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8081"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	sessionIdleTTL, err := time.ParseDuration(getEnv("SESSION_IDLE_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TTL: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Ho_Chi_Minh"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
		SessionIdleTTL: sessionIdleTTL,
	}

	// Backend configuration
	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	config.Backend = BackendConfig{
		BaseURL: strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		Timeout: backendTimeout,
		Token:   getEnv("ATTENDANCE_TOKEN", ""),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Journal configuration
	retention, err := time.ParseDuration(getEnv("JOURNAL_RETENTION", "2160h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOURNAL_RETENTION: %w", err)
	}

	config.Journal = JournalConfig{
		Driver:    getEnv("JOURNAL_DRIVER", JournalDriverMemory),
		Retention: retention,
	}

	config.Fraud = FraudConfig{
		PrecheckPolicy: getEnv("FRAUD_PRECHECK_POLICY", PrecheckFailOpen),
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.Journal.Driver {
	case JournalDriverMemory:
	case JournalDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when JOURNAL_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported JOURNAL_DRIVER: %s", c.Journal.Driver)
	}

	switch c.Fraud.PrecheckPolicy {
	case PrecheckFailOpen, PrecheckFailClosed:
	default:
		return fmt.Errorf("unsupported FRAUD_PRECHECK_POLICY: %s", c.Fraud.PrecheckPolicy)
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	return nil
}

// Location returns the console display timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		slog.Warn("Falling back to UTC", "timezone", c.App.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// LogLevel maps LOG_LEVEL onto slog levels.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
