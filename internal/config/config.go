package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"gopherwatch/internal/db"
)

var (
	errInvalidInterval = errors.New("refresh interval must be positive")
	errInvalidTimeout  = errors.New("request timeout must be positive")
	errInvalidBackend  = errors.New("backend url must be absolute http(s)")
	errInvalidAgents   = errors.New("demo agent count must not be negative")
	errInvalidRate     = errors.New("rate limit must be positive")
)

// Config holds the dashboard settings read from the environment.
type Config struct {
	BackendURL      string
	ListenAddr      string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	LogLevel        string
	LogOutput       string
	Location        *time.Location
	TUI             bool
	Demo            bool
	DemoAddr        string
	DemoAgents      int
	RateLimit       float64

	// DemoAlertDSN persists demo alerts (mysql://... or sqlite://...).
	// Empty keeps them in memory.
	DemoAlertDSN string

	// CORSOrigins lists origins allowed to read the JSON endpoints. Empty
	// disables CORS.
	CORSOrigins []string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	env := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}

		return fallback
	}

	cfg := &Config{
		BackendURL: env("GOPHERWATCH_BACKEND_URL", "http://localhost:8080"),
		ListenAddr: env("GOPHERWATCH_LISTEN_ADDR", "localhost:3000"),
		LogLevel:   env("GOPHERWATCH_LOG_LEVEL", "info"),
		LogOutput:  env("GOPHERWATCH_LOG_OUTPUT", "stdout"),
		DemoAddr:   env("GOPHERWATCH_DEMO_ADDR", "localhost:8080"),

		DemoAlertDSN: env("GOPHERWATCH_DEMO_ALERT_DSN", ""),
	}

	var err error

	if cfg.RefreshInterval, err = time.ParseDuration(env("GOPHERWATCH_REFRESH_INTERVAL", "1s")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_REFRESH_INTERVAL: %w", err)
	}

	if cfg.RequestTimeout, err = time.ParseDuration(env("GOPHERWATCH_REQUEST_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_REQUEST_TIMEOUT: %w", err)
	}

	if cfg.Location, err = time.LoadLocation(env("GOPHERWATCH_TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_TIMEZONE: %w", err)
	}

	if cfg.TUI, err = strconv.ParseBool(env("GOPHERWATCH_TUI", "false")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_TUI: %w", err)
	}

	if cfg.Demo, err = strconv.ParseBool(env("GOPHERWATCH_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_DEMO: %w", err)
	}

	if cfg.DemoAgents, err = strconv.Atoi(env("GOPHERWATCH_DEMO_AGENTS", "5")); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_DEMO_AGENTS: %w", err)
	}

	if cfg.RateLimit, err = strconv.ParseFloat(env("GOPHERWATCH_RATE_LIMIT", "100"), 64); err != nil {
		return nil, fmt.Errorf("GOPHERWATCH_RATE_LIMIT: %w", err)
	}

	for _, origin := range strings.Split(env("GOPHERWATCH_CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that the poller and servers depend on.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errInvalidInterval
	}

	if c.RequestTimeout <= 0 {
		return errInvalidTimeout
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBackend, c.BackendURL)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("GOPHERWATCH_LOG_LEVEL: %w", err)
	}

	if c.DemoAgents < 0 {
		return errInvalidAgents
	}

	if c.RateLimit <= 0 {
		return errInvalidRate
	}

	if c.DemoAlertDSN != "" {
		if err := db.ValidateDSN(c.DemoAlertDSN); err != nil {
			return fmt.Errorf("GOPHERWATCH_DEMO_ALERT_DSN: %w", err)
		}
	}

	return nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}

	return nil
}
