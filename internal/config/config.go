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
	Worktime WorktimeConfig
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

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	CORSOrigins []string
}

// WorktimeConfig holds the compliance defaults. A group ceiling may
// override tolerances and the complementary cap.
type WorktimeConfig struct {
	PlanToleranceMinutes         int
	PermittedToleranceMinutes    int
	PlanToDateToleranceMinutes   int
	DailyComplementaryCapMinutes int
	SweepEnabled                 bool
	SweepInterval                time.Duration
	SweepConcurrency             int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Europe/Madrid"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Worktime configuration
	planTolerance, err := getEnvInt("WORKTIME_PLAN_TOLERANCE_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	permittedTolerance, err := getEnvInt("WORKTIME_PERMITTED_TOLERANCE_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	planToDateTolerance, err := getEnvInt("WORKTIME_PLAN_TO_DATE_TOLERANCE_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	complementaryCap, err := getEnvInt("WORKTIME_DAILY_COMPLEMENTARY_CAP_MINUTES", 0)
	if err != nil {
		return nil, err
	}
	sweepConcurrency, err := getEnvInt("WORKTIME_SWEEP_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := time.ParseDuration(getEnv("WORKTIME_SWEEP_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKTIME_SWEEP_INTERVAL: %w", err)
	}
	sweepEnabled, err := strconv.ParseBool(getEnv("WORKTIME_SWEEP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKTIME_SWEEP_ENABLED: %w", err)
	}

	config.Worktime = WorktimeConfig{
		PlanToleranceMinutes:         planTolerance,
		PermittedToleranceMinutes:    permittedTolerance,
		PlanToDateToleranceMinutes:   planToDateTolerance,
		DailyComplementaryCapMinutes: complementaryCap,
		SweepEnabled:                 sweepEnabled,
		SweepInterval:                sweepInterval,
		SweepConcurrency:             sweepConcurrency,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE %q is not a valid IANA zone", c.App.Timezone))
	}

	w := c.Worktime
	if w.PlanToleranceMinutes < 0 || w.PermittedToleranceMinutes < 0 || w.PlanToDateToleranceMinutes < 0 {
		errs = append(errs, errors.New("worktime tolerances must not be negative"))
	}
	if w.DailyComplementaryCapMinutes < 0 {
		errs = append(errs, errors.New("WORKTIME_DAILY_COMPLEMENTARY_CAP_MINUTES must not be negative"))
	}
	if w.SweepEnabled && w.SweepInterval < time.Minute {
		errs = append(errs, errors.New("WORKTIME_SWEEP_INTERVAL must be at least 1m"))
	}
	if w.SweepConcurrency < 1 {
		errs = append(errs, errors.New("WORKTIME_SWEEP_CONCURRENCY must be at least 1"))
	}

	return errors.Join(errs...)
}

// Location returns the configured timezone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
