package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"

	AuthPlaceholder = "placeholder"
	AuthMongo       = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	CookieSecret     string        `env:"COOKIE_SECRET"`
	CookieSecure     bool          `env:"COOKIE_SECURE,     default=false"`
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY, default=1s"`
	SubmissionTTL    time.Duration `env:"SUBMISSION_TTL,    default=30s"`

	StorageBackend string `env:"STORAGE_BACKEND, default=memory"`
	AuthBackend    string `env:"AUTH_BACKEND,    default=placeholder"`
	EventWorkers   int    `env:"EVENT_WORKERS,   default=4"`
	EventLogSize   int    `env:"EVENT_LOG_SIZE,  default=1000"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=helios"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Production reports whether the service runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.AuthBackend {
	case AuthPlaceholder, AuthMongo:
	default:
		return fmt.Errorf("config: unknown AUTH_BACKEND %q", c.AuthBackend)
	}
	if c.CookieSecret == "" && c.Production() {
		return errors.New("config: COOKIE_SECRET is required in production")
	}
	if c.SimulatedLatency < 0 {
		return errors.New("config: SIMULATED_LATENCY must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
