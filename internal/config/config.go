package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls the HTTP server. A zero RequestTimeout disables the
// per-request deadline.
type AppConfig struct {
	Name           string
	Env            string
	Host           string
	Port           string
	Version        string
	RequestTimeout time.Duration
}

// PostgresConfig holds pool settings. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdle     time.Duration
	MaxConnLifetime time.Duration
	RunMigrations   bool
	MigrationsDir   string
}

// RedisConfig holds Redis connection values. MaxRetries of -1 disables retries.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	MaxRetries  int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token parameters. Tokens are minted by the
// identity service that shares JWTSecret.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NotificationConfig controls hand-off of persisted notifications to
// downstream email/push transports.
type NotificationConfig struct {
	RelayEnabled bool
	RelayChannel string
	// RelayTimeout bounds each publish, which runs inside the request.
	RelayTimeout time.Duration
}

// Load reads configuration from the environment (and .env when present).
// Malformed values are reported together rather than replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		App: AppConfig{
			Name:           env.str("APP_NAME", "support-ticket-service"),
			Env:            env.str("APP_ENV", "development"),
			Host:           env.str("APP_HOST", "0.0.0.0"),
			Port:           env.str("APP_PORT", "8080"),
			Version:        env.str("APP_VERSION", "dev"),
			RequestTimeout: env.duration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(env.integer("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(env.integer("POSTGRES_MIN_CONNS", 2)),
			MaxConnIdle:     env.duration("POSTGRES_CONN_MAX_IDLE", 30*time.Second),
			MaxConnLifetime: env.duration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
			RunMigrations:   env.boolean("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   env.str("POSTGRES_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Addr:        env.str("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          env.integer("REDIS_DB", 0),
			DialTimeout: env.duration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			MaxRetries:  env.integer("REDIS_MAX_RETRIES", 1),
		},
		Logger: LoggerConfig{
			Level: env.str("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: env.str("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTL:  env.duration("AUTH_TOKEN_TTL", time.Hour),
		},
		Notification: NotificationConfig{
			RelayEnabled: env.boolean("NOTIFY_RELAY_ENABLED", true),
			RelayChannel: env.str("NOTIFY_RELAY_CHANNEL", "support:notifications"),
			RelayTimeout: env.duration("NOTIFY_RELAY_TIMEOUT", 2*time.Second),
		},
	}
	if err := env.err(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func (c *Config) validate() error {
	var errs []error
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)",
			c.Postgres.MinConns, c.Postgres.MaxConns))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must not be empty"))
	}
	if c.Notification.RelayEnabled && c.Notification.RelayChannel == "" {
		errs = append(errs, errors.New("NOTIFY_RELAY_CHANNEL is required when the relay is enabled"))
	}
	for key, d := range map[string]time.Duration{
		"HTTP_REQUEST_TIMEOUT": c.App.RequestTimeout,
		"REDIS_DIAL_TIMEOUT":   c.Redis.DialTimeout,
		"NOTIFY_RELAY_TIMEOUT": c.Notification.RelayTimeout,
		"AUTH_TOKEN_TTL":       c.Auth.TokenTTL,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", key))
		}
	}
	return errors.Join(errs...)
}

// envReader looks up variables and remembers every value it could not parse.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func (r *envReader) boolean(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

// duration accepts time.ParseDuration syntax ("30s", "5m").
func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
