package config

import (
	"errors"
	"fmt"
	"time"

	"surveycast/internal/model"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment.
// CorrelationTTL of zero keeps outstanding questions answerable until the
// run is reset; a positive value opts in to expiring them.
type Config struct {
	Port           string             `env:"PORT"            envDefault:"8080"`
	AdminIDs       []int64            `env:"ADMIN_IDS"       envSeparator:","`
	JWTSecret      string             `env:"JWT_SECRET"      envDefault:"dev-secret-change-in-production"`
	RedisURI       string             `env:"REDIS_URI"`
	MongoURI       string             `env:"MONGO_URI"`
	MongoDB        string             `env:"MONGO_DB"        envDefault:"surveycast"`
	ExportFormat   model.ExportFormat `env:"EXPORT_FORMAT"   envDefault:"xlsx"`
	CorrelationTTL time.Duration      `env:"CORRELATION_TTL" envDefault:"0s"`
}

var ErrNoAdmins = errors.New("ADMIN_IDS must list at least one admin")

// Load reads an optional .env file and then the environment
func Load(files ...string) (*Config, error) {
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if len(c.AdminIDs) == 0 {
		return ErrNoAdmins
	}
	switch c.ExportFormat {
	case model.ExportXLSX, model.ExportCSV:
	default:
		return fmt.Errorf("unsupported EXPORT_FORMAT %q", c.ExportFormat)
	}
	if c.CorrelationTTL < 0 {
		return fmt.Errorf("CORRELATION_TTL must not be negative, got %s", c.CorrelationTTL)
	}
	return nil
}
