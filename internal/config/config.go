package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Log          LogConfig
	Notification NotificationConfig
	Policies     *PolicySet `validate:"required"`
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gt=0,lte=65535"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	Name     string `validate:"required"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `validate:"required,min=16"`
	AccessExpiration string `validate:"required"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string   `validate:"required"`
	Version        string   `validate:"required"`
	Port           int      `validate:"gt=0,lte=65535"`
	Env            string   `validate:"oneof=development staging production"`
	AllowedOrigins []string `validate:"dive,required"`
	PolicyFile     string
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	// File enables a rotating log file next to stdout.
	File string
}

type NotificationConfig struct {
	SlackToken     string
	SlackChannelID string        `validate:"required_with=SlackToken"`
	ReminderAfter  time.Duration `validate:"gt=0"`
	ReminderEvery  time.Duration `validate:"gt=0"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-cmlabs"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
		PolicyFile:     getEnv("POLICY_FILE", ""),
	}

	config.Log = LogConfig{
		Level: getEnv("LOG_LEVEL", "info"),
		File:  getEnv("LOG_FILE", ""),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}
	if _, err := time.ParseDuration(config.JWT.AccessExpiration); err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	reminderAfter, err := time.ParseDuration(getEnv("REMINDER_AFTER", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_AFTER: %w", err)
	}
	reminderEvery, err := time.ParseDuration(getEnv("REMINDER_EVERY", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_EVERY: %w", err)
	}

	config.Notification = NotificationConfig{
		SlackToken:     getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		ReminderAfter:  reminderAfter,
		ReminderEvery:  reminderEvery,
	}

	config.Policies, err = LoadPolicySet(config.App.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy file: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
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
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
