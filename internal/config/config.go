// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Shivanand-hulikatti/card-issuance/internal/database"
)

// DefaultJWTSigningKey is the development signing key used when
// JWT_SIGNING_KEY is unset. Anyone can mint tokens with it.
const DefaultJWTSigningKey = "dev-secret-key-change-in-production"

// Config is the full service configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LedgerAddress   string        `env:"LEDGER_ADDRESS" envDefault:"ledger"`
	AdminAddress    string        `env:"ADMIN_ADDRESS" envDefault:"admin"`
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"card-issuance"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"24h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	NotifyBuffer    int           `env:"NOTIFY_BUFFER" envDefault:"256"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Database database.Config
	Redis    RedisConfig
}

// RedisConfig enables the Redis notification stream when URL is set.
type RedisConfig struct {
	URL    string `env:"REDIS_URL"`
	Stream string `env:"REDIS_STREAM" envDefault:"ledger:notifications"`
	MaxLen int64  `env:"REDIS_STREAM_MAXLEN" envDefault:"100000"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.LedgerAddress == "" {
		return fmt.Errorf("LEDGER_ADDRESS must not be empty")
	}
	if c.AdminAddress == "" {
		return fmt.Errorf("ADMIN_ADDRESS must not be empty")
	}
	if c.AdminAddress == c.LedgerAddress {
		return fmt.Errorf("ADMIN_ADDRESS must differ from LEDGER_ADDRESS")
	}
	if c.NotifyBuffer <= 0 {
		return fmt.Errorf("NOTIFY_BUFFER must be positive, got %d", c.NotifyBuffer)
	}
	return nil
}

// Warnings lists settings that are valid but unsafe outside development.
func (c Config) Warnings() []string {
	var out []string
	if c.JWTSigningKey == DefaultJWTSigningKey {
		out = append(out, "JWT_SIGNING_KEY is the built-in development key; anyone can sign an administrator token")
	}
	return out
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
