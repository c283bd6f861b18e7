// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	Policy         PolicyConfig
	ScorerAccuracy float64

	// Attempt-log maintenance; not env-tunable.
	MaintenanceInterval time.Duration
	AttemptRetention    time.Duration

	// Practice CLI settings.
	PolicyURL        string
	PracticeAttempts int
}

// PolicyConfig holds the Q-learning hyperparameters.
type PolicyConfig struct {
	Alpha   float64
	Gamma   float64
	Epsilon float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/alphabet.db"),
		ScorerAccuracy: getEnvFloat("SCORER_ACCURACY", 0.7),
		Policy: PolicyConfig{
			Alpha:   getEnvFloat("POLICY_ALPHA", 0.5),
			Gamma:   getEnvFloat("POLICY_GAMMA", 0.9),
			Epsilon: getEnvFloat("POLICY_EPSILON", 0.15),
		},
		MaintenanceInterval: 5 * time.Minute,
		AttemptRetention:    7 * 24 * time.Hour,
		PolicyURL:           getEnv("POLICY_URL", "http://localhost:8080"),
		PracticeAttempts:    getEnvInt("PRACTICE_ATTEMPTS", 50),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Policy.Alpha <= 0 || c.Policy.Alpha > 1 {
		return fmt.Errorf("POLICY_ALPHA must be within (0, 1]")
	}
	if c.Policy.Gamma < 0 || c.Policy.Gamma > 1 {
		return fmt.Errorf("POLICY_GAMMA must be within [0, 1]")
	}
	if c.Policy.Epsilon < 0 || c.Policy.Epsilon > 1 {
		return fmt.Errorf("POLICY_EPSILON must be within [0, 1]")
	}
	if c.ScorerAccuracy < 0 || c.ScorerAccuracy > 1 {
		return fmt.Errorf("SCORER_ACCURACY must be within [0, 1]")
	}
	if c.PracticeAttempts <= 0 {
		return fmt.Errorf("PRACTICE_ATTEMPTS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
