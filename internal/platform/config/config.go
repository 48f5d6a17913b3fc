package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

const minSessionSecretLen = 32

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	StoreBackend  string `env:"STORE_BACKEND" default:"csv"`
	CSVPath       string `env:"CSV_PATH" default:"stories.csv"`
	SQLitePath    string `env:"SQLITE_PATH" default:"stories.db"`
	SessionSecret string `env:"SESSION_SECRET"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	FeedLimit int `env:"FEED_LIMIT" default:"10"`

	SubmitRatePerSecond float64 `env:"SUBMIT_RATE_PER_SECOND" default:"0.2"`
	SubmitBurst         int     `env:"SUBMIT_BURST" default:"3"`
}

// IsProduction reports whether secure cookies and HSTS should be enforced.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StorePath returns the file backing the configured store.
func (c *Config) StorePath() string {
	if c.StoreBackend == BackendSQLite {
		return c.SQLitePath
	}
	return c.CSVPath
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		slog.Warn("SESSION_SECRET not set, using a random secret; flash messages will not survive a restart")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, minSessionSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	if len(cfg.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}

	switch cfg.StoreBackend {
	case BackendCSV:
		if cfg.CSVPath == "" {
			return errors.New("CSV_PATH must not be empty")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendCSV, BackendSQLite, cfg.StoreBackend)
	}

	if cfg.FeedLimit < 1 || cfg.FeedLimit > 100 {
		return fmt.Errorf("FEED_LIMIT must be between 1 and 100, got %d", cfg.FeedLimit)
	}
	if cfg.SubmitRatePerSecond <= 0 {
		return errors.New("SUBMIT_RATE_PER_SECOND must be positive")
	}
	if cfg.SubmitBurst < 1 {
		return errors.New("SUBMIT_BURST must be at least 1")
	}

	return nil
}
