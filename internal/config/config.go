// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all service configuration.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME"          envDefault:"supplyhub"`
	Env             string        `env:"APP_ENV"               envDefault:"development"`
	Port            string        `env:"APP_PORT"              envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL"             envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"15s"`

	Storage StorageConfig
	JWT     JWTConfig
	Metrics MetricsConfig
	Sweep   SweepConfig
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Driver          string        `env:"STORAGE_DRIVER"       envDefault:"postgres"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"    envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"15m"`
}

// JWTConfig holds operator token settings. When AdminEmail and
// AdminPassword are both set an ADMIN operator is seeded at startup.
type JWTConfig struct {
	Secret        string        `env:"JWT_SECRET"     envDefault:"change-me"`
	TTL           time.Duration `env:"JWT_TTL"        envDefault:"24h"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Prefix string `env:"METRICS_PREFIX" envDefault:"supplyhub"`
}

// SweepConfig schedules the background expiry of overdue qualifications.
// A zero interval disables the sweep.
type SweepConfig struct {
	QualificationInterval time.Duration `env:"QUALIFICATION_SWEEP_INTERVAL" envDefault:"1h"`
}

// Load reads an optional .env file and then parses the environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (*Config, bool, error) {
	found := godotenv.Load(files...) == nil

	cfg, err := Parse()
	if err != nil {
		return nil, found, err
	}
	return cfg, found, nil
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Sweep.QualificationInterval < 0 {
		return fmt.Errorf("QUALIFICATION_SWEEP_INTERVAL must not be negative")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if (c.JWT.AdminEmail == "") != (c.JWT.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.IsProduction() && c.JWT.Secret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
