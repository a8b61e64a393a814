package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	JWTSecret     string `env:"JWT_SECRET,required" validate:"required,min=32"`
	SessionTTLMin int    `env:"SESSION_TTL_MIN" envDefault:"60" validate:"min=1,max=1440"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	// Reminder dispatcher. Lead time is how far ahead of an event the
	// reminder fires; the tick interval must stay at or below one minute so
	// no matching window is skipped.
	ReminderIntervalSec int    `env:"REMINDER_INTERVAL_SEC" envDefault:"60" validate:"min=1,max=60"`
	ReminderLeadHours   int    `env:"REMINDER_LEAD_HOURS" envDefault:"24" validate:"min=1,max=168"`
	LocalTimezone       string `env:"LOCAL_TIMEZONE" envDefault:"America/Guayaquil" validate:"required"`

	// Admin bootstrap, consumed by cmd/seed.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@clubciclismoepn.ec" validate:"email"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"ChangeMe123"`
}

func Load() (*Config, error) {
	// .env is optional; deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if _, err := time.LoadLocation(cfg.LocalTimezone); err != nil {
		return nil, fmt.Errorf("invalid LOCAL_TIMEZONE %q: %w", cfg.LocalTimezone, err)
	}

	return cfg, nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderIntervalSec) * time.Second
}

func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadHours) * time.Hour
}

// Location panics only if Load's timezone validation was bypassed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LocalTimezone)
	if err != nil {
		panic(err)
	}
	return loc
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
