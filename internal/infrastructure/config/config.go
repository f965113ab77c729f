package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/playground/userstats/internal/core/domain"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// DevJWTSecret signs tokens in development when JWT_SECRET is unset.
const DevJWTSecret = "userstats-dev-secret"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	ProgramID       string        `env:"PROGRAM_ID,       default=7AwuU7HNHrE2GgS4tRdZLdnJmG4Pz5HjgDkd7fDVtoLK"`
	StorageBackend  string        `env:"STORAGE_BACKEND,  default=memory"`
	ExecutorWorkers int           `env:"EXECUTOR_WORKERS, default=8"`
	ReplayTTL       time.Duration `env:"REPLAY_TTL,       default=24h"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo  MongoConfig
	Redis  RedisConfig
	SQLite SQLiteConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=userstats"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=userstats.db"`
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
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// SigningSecret returns the HS256 secret tokens are signed and verified with.
// Development falls back to DevJWTSecret.
func (c *Config) SigningSecret() string {
	if c.JWTSecret == "" && c.IsDevelopment() {
		return DevJWTSecret
	}
	return c.JWTSecret
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite, BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if _, err := domain.ParseAddress(c.ProgramID); err != nil {
		return fmt.Errorf("config: PROGRAM_ID: %w", err)
	}
	if c.ExecutorWorkers <= 0 {
		return fmt.Errorf("config: EXECUTOR_WORKERS must be positive, got %d", c.ExecutorWorkers)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	return nil
}
