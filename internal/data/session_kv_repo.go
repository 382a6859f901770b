// Package data holds the Postgres-backed session store.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/yoii-livecomm/socialauth/internal/data/pgxutil"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

const upsertSessionKV = `
	INSERT INTO auth_session_kv (namespace, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (namespace, key) DO UPDATE
	SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// SessionKVRepo stores session keys in auth_session_kv, scoped by namespace so several
// clients can share one database.
type SessionKVRepo struct {
	DB        *sql.DB
	namespace string
}

var _ ports.SessionStore = (*SessionKVRepo)(nil)

// NewSessionKVRepo creates a repo bound to namespace.
func NewSessionKVRepo(db *sql.DB, namespace string) (*SessionKVRepo, error) {
	if db == nil {
		return nil, errors.New("session kv repo: db is required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	return &SessionKVRepo{DB: db, namespace: namespace}, nil
}

// Namespace returns the namespace this repo reads and writes.
func (r *SessionKVRepo) Namespace() string { return r.namespace }

func (r *SessionKVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.DB.QueryRowContext(ctx,
		`SELECT value FROM auth_session_kv WHERE namespace = $1 AND key = $2`,
		r.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session key: %w", autherrors.MapDBError(err))
	}
	return value, true, nil
}

func (r *SessionKVRepo) Set(ctx context.Context, key, value string) error {
	return r.MultiSet(ctx, []ports.KeyValue{{Key: key, Value: value}})
}

func (r *SessionKVRepo) Remove(ctx context.Context, key string) error {
	return r.MultiRemove(ctx, []string{key})
}

// MultiSet upserts every pair in one transaction; either all keys are written or none.
func (r *SessionKVRepo) MultiSet(ctx context.Context, pairs []ports.KeyValue) error {
	if len(pairs) == 0 {
		return nil
	}
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, kv := range pairs {
				batch.Queue(upsertSessionKV, r.namespace, kv.Key, kv.Value)
			}
			br := tx.SendBatch(ctx, batch)
			for range pairs {
				if _, execErr := br.Exec(); execErr != nil {
					_ = br.Close()
					return execErr
				}
			}
			return br.Close()
		},
	})
	if err != nil {
		return fmt.Errorf("set session keys: %w", autherrors.MapDBError(err))
	}
	return nil
}

// MultiRemove deletes the keys in one transaction. Missing keys are ignored.
func (r *SessionKVRepo) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			_, execErr := tx.ExecContext(ctx,
				`DELETE FROM auth_session_kv WHERE namespace = $1 AND key = ANY($2)`,
				r.namespace, keys,
			)
			return execErr
		},
	})
	if err != nil {
		return fmt.Errorf("remove session keys: %w", autherrors.MapDBError(err))
	}
	return nil
}
