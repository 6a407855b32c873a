package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/storage"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the contract every backend must honour.
func exerciseBackend(t *testing.T, b storage.Backend) {
	t.Helper()
	ctx := context.Background()

	_, found, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, b.Set(ctx, "k", "v1"))
	v, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", v)

	require.NoError(t, b.Set(ctx, "k", "v2"))
	v, _, err = b.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	require.NoError(t, b.Delete(ctx, "k"))
	_, found, err = b.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	// deleting twice is fine
	require.NoError(t, b.Delete(ctx, "k"))
}

func TestMemoryBackend(t *testing.T) {
	t.Run("contract", func(t *testing.T) {
		exerciseBackend(t, storage.NewMemoryBackend())
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		ctx := context.Background()
		b := storage.NewMemoryBackend(storage.WithCapacity(10))

		require.NoError(t, b.Set(ctx, "a", "12345"))
		err := b.Set(ctx, "b", "123456789")
		require.ErrorIs(t, err, errors.ErrQuotaExceeded)

		_, found, err := b.Get(ctx, "b")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("overwrite does not count old value", func(t *testing.T) {
		ctx := context.Background()
		b := storage.NewMemoryBackend(storage.WithCapacity(10))

		require.NoError(t, b.Set(ctx, "a", "123456789"))
		require.NoError(t, b.Set(ctx, "a", "987654321"))
		require.Equal(t, 1, b.Len())
	})
}

func TestFileBackend(t *testing.T) {
	t.Run("contract", func(t *testing.T) {
		exerciseBackend(t, storage.NewFileBackend(t.TempDir(), "test"))
	})

	t.Run("persists across instances", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()

		require.NoError(t, storage.NewFileBackend(dir, "p").Set(ctx, "slot", "value"))

		v, found, err := storage.NewFileBackend(dir, "p").Get(ctx, "slot")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "value", v)

		_, found, err = storage.NewFileBackend(dir, "other").Get(ctx, "slot")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("corrupted file does not block writes", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()
		b := storage.NewFileBackend(dir, "p")
		require.Equal(t, filepath.Join(dir, "p.json"), b.Path())
		require.NoError(t, os.WriteFile(b.Path(), []byte("{not json"), 0o600))

		_, _, err := b.Get(ctx, "slot")
		require.Error(t, err)

		require.NoError(t, b.Set(ctx, "slot", "fresh"))
		v, found, err := b.Get(ctx, "slot")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "fresh", v)
	})
}

func TestRedisBackend_Unreachable(t *testing.T) {
	_, err := storage.NewRedisBackend(context.Background(), storage.RedisOptions{
		Addr:    "127.0.0.1:1",
		Profile: "p",
	})
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "memory")
		b, closer, err := storage.New(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &storage.MemoryBackend{}, b)
		require.NoError(t, closer.Close())
	})

	t.Run("file", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "file")
		t.Setenv("FOLDER", t.TempDir())
		b, _, err := storage.New(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &storage.FileBackend{}, b)
	})

	t.Run("redis falls back to file", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "127.0.0.1:1")
		t.Setenv("FOLDER", t.TempDir())
		b, closer, err := storage.New(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &storage.FileBackend{}, b)
		require.NoError(t, closer.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "floppy")
		_, _, err := storage.New(context.Background(), config.New())
		require.Error(t, err)
	})
}
