package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/growth-archive/pkg/config"
	"github.com/noah-isme/growth-archive/pkg/storage"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, Present(ctx, store))

	require.NoError(t, store.Set(ctx, "token-1", "u1"))
	creds, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Credentials{Token: "token-1", UserID: "u1"}, creds)

	require.NoError(t, store.Set(ctx, "token-2", "u2"))
	creds, _, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", creds.Token)
	assert.Equal(t, "u2", creds.UserID)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing twice is harmless
	require.NoError(t, store.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewPrivateStorage(dir)
	require.NoError(t, err)
	exerciseStore(t, NewFileStore(files))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewPrivateStorage(dir)
	require.NoError(t, err)
	require.NoError(t, NewFileStore(files).Set(context.Background(), "persisted", "u9"))

	info, err := os.Stat(filepath.Join(dir, credentialsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := storage.NewPrivateStorage(dir)
	require.NoError(t, err)
	creds, ok, err := NewFileStore(reopened).Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", creds.Token)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, credentialsFile), []byte("{not json"), 0o600))
	files, err := storage.NewPrivateStorage(dir)
	require.NoError(t, err)

	_, ok, err := NewFileStore(files).Get(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "test:")
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "abc", "u3"))
	got, err := srv.Get("test:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	got, err = srv.Get("test:user_id")
	require.NoError(t, err)
	assert.Equal(t, "u3", got)
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Tokens: config.TokenConfig{Store: config.TokenStoreMemory}}
	store, closeFn, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	require.NoError(t, closeFn())

	cfg = &config.Config{Tokens: config.TokenConfig{Store: config.TokenStoreFile, Dir: t.TempDir()}}
	store, _, err = New(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	srv := miniredis.RunT(t)
	host, port := splitAddr(t, srv)
	cfg = &config.Config{
		Tokens: config.TokenConfig{Store: config.TokenStoreRedis, KeyPrefix: "p:"},
		Redis:  config.RedisConfig{Host: host, Port: port},
	}
	store, closeFn, err = New(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)
	require.NoError(t, closeFn())

	_, _, err = New(ctx, &config.Config{Tokens: config.TokenConfig{Store: "etcd"}}, nil)
	assert.Error(t, err)
}

func splitAddr(t *testing.T, srv *miniredis.Miniredis) (string, int) {
	t.Helper()
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)
	return srv.Host(), port
}

func TestDialRedisFailsWhenUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, port := splitAddr(t, srv)
	srv.Close()

	_, err := DialRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
