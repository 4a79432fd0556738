package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	BackendURL  string
	StreamURL   string
	FrontendURL string

	CookieName   string
	CookieSecure bool

	RelayURL string
	PageSize int

	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables and validates required fields.
func Load() (Config, error) {
	port, err := getEnvInt("RELAY_PORT", 3000)
	if err != nil {
		return Config{}, fmt.Errorf("parse RELAY_PORT: %w", err)
	}

	pageSize, err := getEnvInt("NOTIFICATION_PAGE_SIZE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFICATION_PAGE_SIZE: %w", err)
	}

	timeout, err := getEnvDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
	}

	secure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse COOKIE_SECURE: %w", err)
	}

	cfg := Config{
		Port:         port,
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8080"),
		StreamURL:    getEnv("STREAM_URL", ""),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		CookieName:   getEnv("COOKIE_NAME", "auth_token"),
		CookieSecure: secure,
		RelayURL:     getEnv("RELAY_URL", "http://localhost:3000"),
		PageSize:     pageSize,
		HTTPTimeout:  timeout,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("NOTIFICATION_PAGE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}
