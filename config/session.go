package config

import (
	"fmt"
	"strings"
)

// SessionDriver selects the session store backend.
type SessionDriver string

const (
	// SessionDriverMemory keeps the session in process memory.
	SessionDriverMemory SessionDriver = "memory"
	// SessionDriverRedis keeps the session in Redis.
	SessionDriverRedis SessionDriver = "redis"
	// SessionDriverPostgres keeps the session in the auth_session_kv table.
	SessionDriverPostgres SessionDriver = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionDriver.
func (d *SessionDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis", "postgres":
		*d = SessionDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionDriver: %q (valid options: memory, redis, postgres)", v)
	}
}

// SessionConfig selects and configures the session store.
type SessionConfig struct {
	Driver SessionDriver `env:"SESSION_DRIVER" envDefault:"memory"`
	// Namespace separates sessions sharing one Redis or Postgres backend.
	Namespace string `env:"SESSION_NAMESPACE" envDefault:"default"`

	Redis    RedisConfig `envPrefix:"REDIS_"`
	Postgres DBConfig    `envPrefix:"DB_"`
}

// Sanitize applies guardrails to session values.
func (c *SessionConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = SessionDriverMemory
	}
	if c.Namespace = strings.TrimSpace(c.Namespace); c.Namespace == "" {
		c.Namespace = "default"
	}
	c.Redis.sanitize()
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"socialauth"`
	Password string `env:"PASSWORD" envDefault:"socialauth"`
	Name     string `env:"NAME"     envDefault:"socialauth"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	KeyPrefix          string   `env:"KEY_PREFIX"           envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

func (c *RedisConfig) sanitize() {
	c.URI = strings.TrimSpace(c.URI)
	c.KeyPrefix = strings.TrimSpace(c.KeyPrefix)
	if c.DB < 0 {
		c.DB = 0
	}
}
