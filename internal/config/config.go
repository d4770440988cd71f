package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOREFRONT"

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8081"`
	DBDSN    string `envconfig:"DB_DSN" default:"storefront.db"`
	Storage  string `envconfig:"STORAGE" default:"sqlite"` // sqlite | redis | memory
	RedisURL string `envconfig:"REDIS_URL"`
	// RedisTTL bounds how long an idle cart survives in redis; 0 keeps it forever.
	RedisTTL     time.Duration `envconfig:"REDIS_TTL" default:"720h"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"LOG_FORMAT" default:"json"`
	LogFile      string        `envconfig:"LOG_FILE"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int  `envconfig:"RATE_LIMIT" default:"60"`
	AccessLog bool `envconfig:"ACCESS_LOG" default:"true"`
	// Cached cart stores are dropped after SessionIdleTTL without use, or
	// least recently used first once MaxSessions is exceeded.
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	MaxSessions    int           `envconfig:"MAX_SESSIONS" default:"10000"`
}

// Load reads STOREFRONT_* variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("STOREFRONT_REDIS_URL is required when STOREFRONT_STORAGE=redis")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if cfg.MaxSessions < 0 {
		return Config{}, fmt.Errorf("STOREFRONT_MAX_SESSIONS must be >= 0, got %d", cfg.MaxSessions)
	}
	if cfg.RateLimit < 0 {
		return Config{}, fmt.Errorf("STOREFRONT_RATE_LIMIT must be >= 0, got %d", cfg.RateLimit)
	}
	return cfg, nil
}
