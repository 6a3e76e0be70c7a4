// Package config loads the immutable process-wide configuration from the
// environment. Components receive their slice of it at construction time and
// never read ambient state afterwards.
package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Crypto   CryptoConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Limiter  LimiterConfig
	Logs     LogsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr      string        `env:"LISTEN_ADDR"      env-default:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	DevMode         bool          `env:"DEV_MODE"         env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN" env-required:"true"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `env:"TOKEN_TTL"  env-default:"24h"`
}

// CryptoConfig holds the at-rest encryption key (base64, 32 bytes decoded).
// The key is process-wide: its compromise compromises every stored record.
type CryptoConfig struct {
	EncryptionKeyB64 string `env:"ENCRYPTION_KEY" env-required:"true"`

	key []byte
}

// Key returns the decoded 32-byte encryption key.
func (c CryptoConfig) Key() []byte { return c.key }

// SMTPConfig holds mail delivery settings. Empty host disables sending.
type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port int    `env:"SMTP_PORT" env-default:"587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM"`
}

// RedisConfig holds the optional token denylist backend. Empty addr disables
// server-side revocation entirely (stateless logout).
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// LimiterConfig controls login throttling.
type LimiterConfig struct {
	Window   time.Duration `env:"LOGIN_FAIL_WINDOW" env-default:"15m"`
	MaxFails int           `env:"LOGIN_MAX_FAILS"   env-default:"5"`
	BlockFor time.Duration `env:"LOGIN_BLOCK_FOR"   env-default:"15m"`
}

// LogsConfig controls access log retention.
type LogsConfig struct {
	RetentionDays int           `env:"ACCESS_LOG_RETENTION_DAYS" env-default:"90"`
	PruneInterval time.Duration `env:"ACCESS_LOG_PRUNE_INTERVAL" env-default:"24h"`
}

// Load reads configuration from the environment and validates the
// cryptographic material.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(cfg.Crypto.EncryptionKeyB64)
	if err != nil {
		return nil, fmt.Errorf("config: ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("config: ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	cfg.Crypto.key = key
	if len(cfg.Auth.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 bytes")
	}
	return &cfg, nil
}
