// Package config loads server settings from an optional TOML file, with
// environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Scryfall ScryfallConfig `toml:"scryfall"`
	Prices   PricesConfig   `toml:"prices"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Logging  LoggingConfig  `toml:"logging"`
	// DefaultUserEmail identifies the user requests fall back to when no
	// X-User-ID header is sent. It is created on startup if missing.
	DefaultUserEmail string `toml:"default_user_email"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	// AllowedOrigins empty means the local dev servers only
	AllowedOrigins   []string `toml:"allowed_origins"`
	FrontendDistPath string   `toml:"frontend_dist_path"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ScryfallConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
	CacheSize int     `toml:"cache_size"`
	Timeout   string  `toml:"timeout"`
}

// GetTimeout parses the client timeout, defaulting to 10s
func (c *ScryfallConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

type PricesConfig struct {
	Interval  string `toml:"interval"`
	BatchSize int    `toml:"batch_size"`
}

// GetInterval parses the price worker interval, defaulting to 15m
func (c *PricesConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

type SnapshotConfig struct {
	// Schedule is a standard five-field cron expression, evaluated in UTC
	Schedule string `toml:"schedule"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	// SQL turns on GORM statement logging at the configured level
	SQL bool `toml:"sql"`
}

// NewDefaultConfig returns a Config with the defaults used when neither the
// file nor the environment sets a value.
func NewDefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Path: "./mtg_tracker.db"},
		Scryfall: ScryfallConfig{
			BaseURL:   "https://api.scryfall.com",
			RateLimit: 10,
			CacheSize: 1000,
			Timeout:   "10s",
		},
		Prices: PricesConfig{
			Interval:  "15m",
			BatchSize: 75,
		},
		Snapshot:         SnapshotConfig{Schedule: "0 23 * * *"},
		Logging:          LoggingConfig{Level: "info"},
		DefaultUserEmail: "collector@localhost",
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the config file location from CONFIG_PATH
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.toml"
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("FRONTEND_DIST_PATH"); v != "" {
		cfg.Server.FrontendDistPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCRYFALL_RATE_LIMIT"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scryfall.RateLimit = rate
		}
	}
	if v := os.Getenv("SNAPSHOT_SCHEDULE"); v != "" {
		cfg.Snapshot.Schedule = v
	}
	if v := os.Getenv("DEFAULT_USER_EMAIL"); v != "" {
		cfg.DefaultUserEmail = v
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}
	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if c.Scryfall.RateLimit <= 0 {
		problems = append(problems, "scryfall.rate_limit must be positive")
	}
	if c.Prices.BatchSize <= 0 {
		problems = append(problems, "prices.batch_size must be positive")
	}
	if _, err := cron.ParseStandard(c.Snapshot.Schedule); err != nil {
		problems = append(problems, fmt.Sprintf("snapshot.schedule %q: %v", c.Snapshot.Schedule, err))
	}
	if strings.TrimSpace(c.DefaultUserEmail) == "" {
		problems = append(problems, "default_user_email is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
