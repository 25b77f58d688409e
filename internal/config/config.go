// Package config loads service configuration from the environment (with an
// optional .env file) into an immutable Config constructed once at startup.
package config

import (
	"errors"
	"fmt"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Fallback signing key for local development only. Production deployments
// must supply JWT_SECRET externally.
const devTokenSecret = "dev-only-token-secret"

// Config holds all service configuration. It is treated as read-only after
// Load returns; nothing reads the environment past startup.
type Config struct {
	RunAddr        string        `env:"RUN_ADDRESS" envDefault:":8080" validate:"hostname_port"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Environment    string        `env:"APP_ENV" envDefault:"development" validate:"oneof=development production"`
	MongoURI       string        `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017" validate:"required"`
	MongoDB        string        `env:"MONGO_DB" envDefault:"photocards" validate:"required"`
	TokenSecret    string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Load reads the environment (and .env, when present) and validates the
// result. In production a missing JWT_SECRET is a startup error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TokenSecret == "" {
		if cfg.Environment == "production" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.TokenSecret = devTokenSecret
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
