package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	CatalogBuiltin  = "builtin"
	CatalogPostgres = "postgres"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Where shopper state (cart, wishlist) is kept.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	StateTTLHours  int    `env:"STATE_TTL_HOURS" envDefault:"720"`

	DatabaseURL   string `env:"DATABASE_URL"`
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"builtin"`

	SessionSecret   string `env:"SESSION_SECRET" envDefault:"dev-secret"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"720"`

	CheckoutPath string `env:"CHECKOUT_PATH" envDefault:"checkout.html"`

	// Requests per minute per session on the suggestion endpoint; 0 disables.
	SuggestRateLimit int `env:"SUGGEST_RATE_LIMIT" envDefault:"600"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsToken   string `env:"METRICS_TOKEN"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c *Config) StateTTL() time.Duration { return time.Duration(c.StateTTLHours) * time.Hour }

func (c *Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLHours) * time.Hour }

func (c *Config) validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT: %d", c.Port))
	}

	switch c.StorageBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_BACKEND: %q", c.StorageBackend))
	}

	switch c.CatalogSource {
	case CatalogBuiltin:
	case CatalogPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid CATALOG_SOURCE: %q", c.CatalogSource))
	}

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must not be empty"))
	}
	if c.SessionTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL_HOURS: %d", c.SessionTTLHours))
	}
	if c.StateTTLHours < 0 {
		errs = append(errs, fmt.Errorf("invalid STATE_TTL_HOURS: %d", c.StateTTLHours))
	}
	if c.SuggestRateLimit < 0 {
		errs = append(errs, fmt.Errorf("invalid SUGGEST_RATE_LIMIT: %d", c.SuggestRateLimit))
	}
	if c.CheckoutPath == "" {
		errs = append(errs, errors.New("CHECKOUT_PATH must not be empty"))
	}

	return errors.Join(errs...)
}
