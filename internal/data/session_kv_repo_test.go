package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"github.com/yoii-livecomm/socialauth/internal/testutil"
)

func TestNewSessionKVRepo_Validation(t *testing.T) {
	_, err := NewSessionKVRepo(nil, "ns")
	require.Error(t, err)
}

func TestSessionKVRepo_Contract(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	n := 0
	testutil.RunSessionStoreContract(t, func(t *testing.T) ports.SessionStore {
		n++
		repo, err := NewSessionKVRepo(db, "contract-"+string(rune('a'+n)))
		require.NoError(t, err)
		return repo
	})
}

func TestSessionKVRepo_NamespacesAreIsolated(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()

	alice, err := NewSessionKVRepo(db, "alice")
	require.NoError(t, err)
	bob, err := NewSessionKVRepo(db, " bob ")
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.Namespace())

	require.NoError(t, alice.Set(ctx, "@app_token", "a"))
	_, ok, err := bob.Get(ctx, "@app_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bob.MultiRemove(ctx, []string{"@app_token"}))
	v, ok, err := alice.Get(ctx, "@app_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestSessionKVRepo_MultiSetIsAtomic(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()
	repo, err := NewSessionKVRepo(db, "atomic")
	require.NoError(t, err)

	// The empty key violates the table's check constraint and aborts the batch.
	err = repo.MultiSet(ctx, []ports.KeyValue{{Key: "@app_token", Value: "a"}, {Key: "", Value: "x"}})
	require.Error(t, err)
	assert.True(t, autherrors.IsStoreCode(err, autherrors.StoreValidation))

	_, ok, err := repo.Get(ctx, "@app_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionKVRepo_MissingTable(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `DROP TABLE auth_session_kv`)
	require.NoError(t, err)

	repo, err := NewSessionKVRepo(db, "gone")
	require.NoError(t, err)
	_, _, err = repo.Get(ctx, "k")
	require.Error(t, err)
	assert.True(t, autherrors.IsStoreCode(err, autherrors.StoreNotFound))
}
