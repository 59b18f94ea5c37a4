package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/docstore"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	store, err := NewFileStore(tempDir)
	require.NoError(t, err)

	key := docstore.ChatHistoryKey("52772")
	doc := []byte(`[{"id":"1","text":"Halo","sender":"ai"}]`)

	t.Run("CheckExists-False", func(t *testing.T) {
		assert.False(t, fileExists(store, key))
	})

	t.Run("Get-NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("Set", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, doc))
		assert.True(t, fileExists(store, key))

		// No temp files left behind.
		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
	})

	t.Run("Get", func(t *testing.T) {
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(got))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte(`[]`)))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, key))
		assert.False(t, fileExists(store, key))
		// Removing twice is not an error.
		require.NoError(t, store.Remove(ctx, key))
	})

	t.Run("FacadeRoundTrip", func(t *testing.T) {
		ds := docstore.New(store, nil)
		assert.True(t, ds.Save(ctx, docstore.KeyPreferences, "tidak pedas"))

		value, ok := ds.LoadString(ctx, docstore.KeyPreferences)
		require.True(t, ok)
		assert.Equal(t, "tidak pedas", value)
	})
}

func fileExists(store *FileStore, key string) bool {
	_, err := os.Stat(store.getPath(key))
	return err == nil
}
