package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Ledger   LedgerConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	MaxConns   int32
	MinConns   int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// LedgerConfig holds the work-time rules and the background job settings
type LedgerConfig struct {
	BreakWeekdays            []time.Weekday
	BreakMinutes             int
	StandardDayMinutes       int
	ReplicationWorkers       int
	ReplicationQueueSize     int
	LiveRefreshInterval      time.Duration
	DirectoryRefreshInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "worktime"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "worktime"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("DB_SQLITE_PATH", "data/worktime.db"),
		MaxConns:   int32(maxConns),
		MinConns:   int32(minConns),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Ledger configuration
	weekdays, err := parseWeekdays(getEnv("BREAK_WEEKDAYS", "tue,wed,fri"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAK_WEEKDAYS: %w", err)
	}
	breakMinutes, err := strconv.Atoi(getEnv("BREAK_MINUTES", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAK_MINUTES: %w", err)
	}
	standardDay, err := strconv.Atoi(getEnv("STANDARD_DAY_MINUTES", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_DAY_MINUTES: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("REPLICATION_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPLICATION_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("REPLICATION_QUEUE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPLICATION_QUEUE_SIZE: %w", err)
	}
	liveRefresh, err := time.ParseDuration(getEnv("LIVE_REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LIVE_REFRESH_INTERVAL: %w", err)
	}
	directoryRefresh, err := time.ParseDuration(getEnv("DIRECTORY_REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTORY_REFRESH_INTERVAL: %w", err)
	}

	config.Ledger = LedgerConfig{
		BreakWeekdays:            weekdays,
		BreakMinutes:             breakMinutes,
		StandardDayMinutes:       standardDay,
		ReplicationWorkers:       workers,
		ReplicationQueueSize:     queueSize,
		LiveRefreshInterval:      liveRefresh,
		DirectoryRefreshInterval: directoryRefresh,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !validator.IsValidTimezone(c.App.Timezone) {
		return fmt.Errorf("APP_TIMEZONE %q is not a known time zone", c.App.Timezone)
	}
	if c.Ledger.BreakMinutes < 0 {
		return fmt.Errorf("BREAK_MINUTES must not be negative")
	}
	if c.Ledger.StandardDayMinutes <= 0 {
		return fmt.Errorf("STANDARD_DAY_MINUTES must be positive")
	}
	if c.Ledger.LiveRefreshInterval <= 0 || c.Ledger.DirectoryRefreshInterval <= 0 {
		return fmt.Errorf("refresh intervals must be positive")
	}
	return nil
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

// Location returns the ledger time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// parseWeekdays reads a comma separated list such as "tue,wed,fri". An empty list
// disables the scheduled break.
func parseWeekdays(value string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		day, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
