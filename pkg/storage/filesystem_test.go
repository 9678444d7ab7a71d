package storage

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("nested/a.txt", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "nested/a.txt", name)

	data, err := store.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = store.Save(name, []byte("replaced"))
	require.NoError(t, err)
	data, err = store.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(data))

	require.NoError(t, store.Delete(name))
	require.NoError(t, store.Delete(name))
	_, err = store.Read(name)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPrivateStorageRestrictsMode(t *testing.T) {
	store, err := NewPrivateStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("credentials.json", []byte("{}"))
	require.NoError(t, err)
	info, err := os.Stat(store.Path("credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = NewPrivateStorage("")
	assert.Error(t, err)
}

func TestCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.SaveStream("old.csv", strings.NewReader("a,b"))
	require.NoError(t, err)
	_, err = store.Save("fresh.csv", []byte("c,d"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, deleted)
}
