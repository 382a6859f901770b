package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/redis/go-redis/v9"
	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/migrate"
)

const connectTimeout = 5 * time.Second

// PostgresDSN builds a pgx DSN. url.URL escapes special characters in credentials.
func PostgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens and pings the PostgreSQL session database.
func ConnectDB(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The session table sees one row per key, so a small pool is plenty.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if logger != nil {
		logger.Info("database connected", "host", cfg.Host, "port", cfg.Port, "database", cfg.Name)
	}
	return db, nil
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.Info("migrations applied")
	}
	return nil
}

// NewRedisClient builds a single, sentinel or cluster client without connecting.
//
//nolint:ireturn // the topology is chosen from config at runtime.
func NewRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	switch {
	case cfg.UseCluster:
		if len(cfg.ClusterNodes) == 0 {
			return nil, errors.New("redis cluster requires at least one node")
		}
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.ClusterNodes,
			Password: cfg.Password,
		}), nil
	case cfg.UseSentinel:
		if len(cfg.SentinelNodes) == 0 || cfg.SentinelMasterName == "" {
			return nil, errors.New("redis sentinel requires nodes and a master name")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.SentinelMasterName,
			SentinelAddrs:    cfg.SentinelNodes,
			SentinelPassword: cfg.SentinelPassword,
			Password:         cfg.Password,
			DB:               cfg.DB,
		}), nil
	}

	if strings.Contains(cfg.URI, "://") {
		opts, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("parse redis uri: %w", err)
		}
		if opts.Password == "" {
			opts.Password = cfg.Password
		}
		if cfg.DB != 0 {
			opts.DB = cfg.DB
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.URI,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}

// ConnectRedis builds a client from cfg and pings it.
//
//nolint:ireturn // see NewRedisClient.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", redactRedisAddr(cfg))
	}
	return client, nil
}

// redactRedisAddr describes the target without credentials.
func redactRedisAddr(cfg config.RedisConfig) string {
	switch {
	case cfg.UseCluster:
		return strings.Join(cfg.ClusterNodes, ",")
	case cfg.UseSentinel:
		return cfg.SentinelMasterName + "@" + strings.Join(cfg.SentinelNodes, ",")
	}
	if u, err := url.Parse(cfg.URI); err == nil && u.Host != "" {
		u.User = nil
		return u.String()
	}
	if i := strings.LastIndex(cfg.URI, "@"); i > -1 {
		return cfg.URI[i+1:]
	}
	return cfg.URI
}
