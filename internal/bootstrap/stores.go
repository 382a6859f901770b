package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/adapters/memstore"
	redisadapter "github.com/yoii-livecomm/socialauth/internal/adapters/redis"
	"github.com/yoii-livecomm/socialauth/internal/data"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// SessionStoreHandle is an opened session store and the function releasing
// its connection. Close is never nil.
type SessionStoreHandle struct {
	Store ports.SessionStore
	Close func() error
}

func noClose() error { return nil }

// OpenSessionStore opens the store selected by cfg.Driver.
func OpenSessionStore(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (SessionStoreHandle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session_store", "driver", string(cfg.Driver))

	switch cfg.Driver {
	case config.SessionDriverRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return SessionStoreHandle{}, err
		}
		store := redisadapter.NewSessionStoreWithPrefix(client, RedisKeyPrefix(cfg))
		return SessionStoreHandle{Store: store, Close: client.Close}, nil

	case config.SessionDriverPostgres:
		db, err := ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return SessionStoreHandle{}, err
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, logger); err != nil {
				_ = db.Close()
				return SessionStoreHandle{}, err
			}
		}
		repo, err := data.NewSessionKVRepo(db, cfg.Namespace)
		if err != nil {
			_ = db.Close()
			return SessionStoreHandle{}, fmt.Errorf("create session repo: %w", err)
		}
		return SessionStoreHandle{Store: repo, Close: db.Close}, nil

	case config.SessionDriverMemory, "":
		logger.Debug("using in-memory session store")
		return SessionStoreHandle{Store: memstore.New(), Close: noClose}, nil

	default:
		return SessionStoreHandle{}, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

// RedisKeyPrefix returns the configured prefix, or one whose hash tag is the
// session namespace.
func RedisKeyPrefix(cfg config.SessionConfig) string {
	if cfg.Redis.KeyPrefix != "" {
		return cfg.Redis.KeyPrefix
	}
	if cfg.Namespace == "" || cfg.Namespace == "default" {
		return redisadapter.DefaultPrefix
	}
	return "socialauth:{" + cfg.Namespace + "}:"
}
