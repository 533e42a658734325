//go:build integration

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Livora/internal/pgtest"
	"Livora/internal/storage"
)

func newPostgresKV(t *testing.T) *storage.PostgresKV {
	t.Helper()
	db := pgtest.Open(t)

	_, err := db.ExecContext(context.Background(), `DELETE FROM kv_store`)
	require.NoError(t, err)
	return storage.NewPostgresKV(db)
}

func TestPostgresKV_GetMissing(t *testing.T) {
	kv := newPostgresKV(t)

	v, ok, err := kv.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestPostgresKV_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := newPostgresKV(t)

	require.NoError(t, kv.Ping(ctx))
	require.NoError(t, kv.Set(ctx, "s1:"+storage.CartKey, []byte(`[{"id":1,"quantity":1}]`)))
	require.NoError(t, kv.Set(ctx, "s1:"+storage.CartKey, []byte(`[{"id":1,"quantity":2}]`)))

	v, ok, err := kv.Get(ctx, "s1:"+storage.CartKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1,"quantity":2}]`, string(v))

	require.NoError(t, kv.Delete(ctx, "s1:"+storage.CartKey))
	_, ok, err = kv.Get(ctx, "s1:"+storage.CartKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is not an error
	require.NoError(t, kv.Delete(ctx, "s1:"+storage.CartKey))
}

func TestPostgresKV_NamespacedJSONDoc(t *testing.T) {
	ctx := context.Background()
	kv := newPostgresKV(t)

	a := storage.NewJSONDoc[[]int](storage.Namespace(kv, "session:a"), storage.WishlistKey)
	b := storage.NewJSONDoc[[]int](storage.Namespace(kv, "session:b"), storage.WishlistKey)

	require.NoError(t, a.Save(ctx, []int{3, 1}))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, got)

	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresKV_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := newPostgresKV(t)
	require.NoError(t, kv.Set(ctx, storage.CartKey, []byte("{{")))

	_, err := storage.NewJSONDoc[[]int](kv, storage.CartKey).Load(ctx)
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := pgtest.Open(t)
	require.NoError(t, storage.Migrate(context.Background(), db))
}
