// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read, when present, before parsing the environment.
var DefaultEnvFiles = []string{".env", "config/example.env"}

// Config holds all application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	FrontendURL     string        `env:"FRONTEND_URL"`
	DBPath          string        `env:"DB_PATH" envDefault:"./data/language_mistakes.db"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@every 30m"`
	LLM             LLMConfig
}

// LLMConfig configures the OpenAI-compatible model endpoint.
type LLMConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// LoadEnvFiles loads the given dotenv files that exist. Variables already set
// in the process environment win. It returns the files that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
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
	if c.LLM.Model == "" {
		return fmt.Errorf("OPENAI_MODEL cannot be empty")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	return level, nil
}

// HasAPIKey reports whether a model credential is configured. Local
// OpenAI-compatible servers may run without one.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}
