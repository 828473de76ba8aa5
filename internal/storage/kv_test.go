package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
	"expensebook/internal/log"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	sqliteKV, err := NewSQLiteKV(filepath.Join(t.TempDir(), "data", "test.db"), nil)
	require.NoError(t, err)
	cachedSQLite, err := NewSQLiteKV(filepath.Join(t.TempDir(), "cached.db"), nil)
	require.NoError(t, err)

	kvs := map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": sqliteKV,
		"cached": NewCachedKV(cachedSQLite, NewValueCache(16, time.Minute)),
	}
	t.Cleanup(func() {
		for _, kv := range kvs {
			kv.Close()
		}
	})
	return kvs
}

func TestKV_Contract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := kv.Get(ctx, UsersKey)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, kv.Put(ctx, UsersKey, []byte(`[]`)))
			v, found, err := kv.Get(ctx, UsersKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `[]`, string(v))

			require.NoError(t, kv.Put(ctx, UsersKey, []byte(`[1]`)))
			v, _, _ = kv.Get(ctx, UsersKey)
			assert.Equal(t, `[1]`, string(v))

			require.NoError(t, kv.Batch(ctx,
				Set(RecordsKey("a"), []byte(`[]`)),
				Set(LastUserKey, []byte(`"a"`)),
				Remove(UsersKey),
			))
			_, found, _ = kv.Get(ctx, UsersKey)
			assert.False(t, found)

			keys, err := kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"expenses_a", "lastUserId"}, keys)

			require.NoError(t, kv.Delete(ctx, LastUserKey))
			require.NoError(t, kv.Delete(ctx, "missing"))
		})
	}
}

func TestRecordsKey(t *testing.T) {
	assert.Equal(t, "expenses_user_1", RecordsKey("user_1"))
	assert.True(t, IsRecordsKey(RecordsKey("x")))
	assert.False(t, IsRecordsKey(UsersKey))
	assert.NotEqual(t, RecordsKey("a"), RecordsKey("b"))
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	var out []string
	found, err := LoadJSON(ctx, kv, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	m, err := SetJSON("k", []string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, kv, m))
	found, err = LoadJSON(ctx, kv, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"x", "y"}, out)

	require.NoError(t, kv.Put(ctx, "k", []byte(`{broken`)))
	_, err = LoadJSON(ctx, kv, "k", &out)
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

type failingKV struct{ *MemoryKV }

func (failingKV) Batch(context.Context, ...Mutation) error { return errors.New("disk full") }

func TestApply_WrapsFailures(t *testing.T) {
	err := Apply(context.Background(), failingKV{NewMemoryKV()}, Set("k", nil))
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestCachedKV_InvalidatesOnFailedWrite(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	require.NoError(t, inner.Put(ctx, "k", []byte("1")))

	kv := NewCachedKV(failingKV{inner}, NewValueCache(4, time.Minute))
	v, _, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	assert.Error(t, kv.Put(ctx, "k", []byte("2")))
	v, _, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
}

func TestSQLiteKV_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.db")

	kv, err := NewSQLiteKV(path, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), kv.SchemaVersion())
	require.NoError(t, kv.Put(ctx, UsersKey, []byte(`["x"]`)))
	require.NoError(t, kv.Close())

	kv, err = NewSQLiteKV(path, nil)
	require.NoError(t, err)
	defer kv.Close()
	v, found, err := kv.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["x"]`, string(v))
	assert.Equal(t, path, kv.Path())
}

func TestSQLiteKV_LogsAsStorage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})

	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "book.db"), logger)
	require.NoError(t, err)
	defer kv.Close()
	require.NoError(t, kv.Put(context.Background(), UsersKey, []byte(`[]`)))

	out := buf.String()
	assert.Contains(t, out, "Schema up to date")
	assert.Contains(t, out, "Batch committed")
	assert.Contains(t, out, "component=storage")
	assert.Contains(t, out, "key=[users]")
}
