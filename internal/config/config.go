package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/config"
)

// Persistence backends selectable through PERSIST_MODE.
const (
	PersistFilesystem = "filesystem"
	PersistMongoDB    = "mongodb"
	PersistRedis      = "redis"
	PersistPostgres   = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Persistence backend: filesystem, redis, postgres; anything else is mongodb.
	PersistMode string `env:"PERSIST_MODE" envDefault:"mongodb"`
	DataDir     string `env:"DATA_DIR" envDefault:"./data"`

	// MongoDB
	MongoURI            string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase       string `env:"MONGODB_DATABASE" envDefault:"ecommerce"`
	MongoConnectTimeout int    `env:"MONGODB_CONNECT_TIMEOUT_SECONDS" envDefault:"10"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"ecommerce"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Browser origins allowed for CORS and WebSocket upgrades. Empty allows any
	// WebSocket origin and sends no CORS headers.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environment instead of the process
// environment when it is non-nil.
func LoadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environment); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	cfg.PersistMode = strings.ToLower(strings.TrimSpace(cfg.PersistMode))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Backend returns the persistence backend to use. Unknown modes fall back to
// MongoDB.
func (c *Config) Backend() string {
	switch c.PersistMode {
	case PersistFilesystem, PersistRedis, PersistPostgres:
		return c.PersistMode
	default:
		return PersistMongoDB
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	switch c.Backend() {
	case PersistFilesystem:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the filesystem backend")
		}
	case PersistRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case PersistPostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required for the postgres backend")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required for the postgres backend")
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("invalid postgres port: %d", c.PostgresPort)
		}
	case PersistMongoDB:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongodb backend")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE is required for the mongodb backend")
		}
	}
	return nil
}
