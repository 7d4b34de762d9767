package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-detector/internal/config"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "history")
	require.NoError(t, err)
	assert.False(t, ok, "absent key")

	require.NoError(t, b.Set(ctx, "history", []byte(`[1]`)))
	require.NoError(t, b.Set(ctx, "history", []byte(`[1,2]`)))
	v, ok, err := b.Get(ctx, "history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))

	require.NoError(t, b.Remove(ctx, "history"))
	require.NoError(t, b.Remove(ctx, "history"), "removing twice is fine")
	_, ok, err = b.Get(ctx, "history")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, b.Set(ctx, "../escape", []byte("x")))
}

func TestMemory(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	exerciseBackend(t, f)

	require.NoError(t, f.Set(context.Background(), "k", []byte("v")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQL(context.Background(), "sqlite", filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseBackend(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = Open(ctx, config.StorageConfig{Driver: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, b)

	b, err = Open(ctx, config.StorageConfig{Driver: "sqlite", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &SQL{}, b)
	b.Close()

	_, err = Open(ctx, config.StorageConfig{Driver: "postgres"})
	assert.Error(t, err, "dsn required")

	_, err = Open(ctx, config.StorageConfig{Driver: "floppy"})
	assert.Error(t, err)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("ai_detector_history"))
	assert.NoError(t, ValidateKey("history_v2"))
	for _, k := range []string{"", ".", "..", "a/b", "a b", string(make([]byte, 129))} {
		assert.Error(t, ValidateKey(k), "%q", k)
	}
}
