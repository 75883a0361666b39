package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

type Config struct {
	Port     string `env:"PORT,          default=5000"`
	Env      string `env:"ENV,           default=development"`
	LogLevel string `env:"LOG_LEVEL,     default=info"`
	BasePath string `env:"API_BASE_PATH, default=/api"`

	CORSOrigin    string `env:"CORS_ORIGIN,    default=*"`
	StorageDriver string `env:"STORAGE_DRIVER, default=postgres"`
	CalendarTZ    string `env:"CALENDAR_TZ,    default=UTC"`

	Session   SessionConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Seed      SeedConfig
	Telemetry TelemetryConfig
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET, required"`
	TTL    time.Duration `env:"SESSION_TTL,    default=168h"`
	Driver string        `env:"SESSION_DRIVER, default=redis"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tender_management"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// SeedConfig names an admin account created at startup when missing.
type SeedConfig struct {
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `env:"OTEL_EXPORTER_OTLP_INSECURE, default=false"`
}

// IsProduction reports whether cookies must be secure and cross-site.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves CalendarTZ.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.CalendarTZ)
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres storage driver")
		}
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.Session.Driver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_DRIVER %q", c.Session.Driver)
	}

	if c.Session.TTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: CALENDAR_TZ: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
