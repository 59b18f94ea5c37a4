package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/llm"
	"chefbook/internal/recipe"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, PlaceholderAPIKey, cfg.Gemini.DefaultAPIKey)
		assert.False(t, cfg.HasDefaultKey())
		assert.Equal(t, llm.DefaultModel, cfg.Gemini.Model)
		assert.Equal(t, DefaultRequestsPerMinute, cfg.Gemini.RequestsPerMinute)
		assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
		assert.Equal(t, recipe.DefaultBaseURL, cfg.Recipes.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Recipes.Timeout)
	})

	t.Run("MissingFileIsIgnored", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	})

	t.Run("FileThenEnv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
gemini:
  default_api_key: file-key
  model: gemini-2.0-flash
storage:
  backend: file
  documents_dir: /tmp/docs
telegram:
  allowed_user_id: 42
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		t.Setenv("CHEFBOOK_GEMINI_MODEL", "gemini-2.5-pro")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "file-key", cfg.Gemini.DefaultAPIKey)
		assert.True(t, cfg.HasDefaultKey())
		assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
		assert.Equal(t, BackendFile, cfg.Storage.Backend)
		assert.Equal(t, "/tmp/docs", cfg.Storage.DocumentsDir)
		assert.Equal(t, int64(42), cfg.Telegram.AllowedUserID)
	})

	t.Run("ZeroRateIsUnlimited", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("gemini:\n  requests_per_minute: 0\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Gemini.RequestsPerMinute)
	})

	t.Run("RateFromEnv", func(t *testing.T) {
		t.Setenv("CHEFBOOK_GEMINI_REQUESTS_PER_MINUTE", "60")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.Gemini.RequestsPerMinute)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		t.Setenv("CHEFBOOK_STORAGE_BACKEND", "redis")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage backend "redis"`)
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "gemini.default_api_key", envKey("CHEFBOOK_GEMINI_DEFAULT_API_KEY"))
	assert.Equal(t, "storage.backend", envKey("CHEFBOOK_STORAGE_BACKEND"))
	assert.Equal(t, "debug", envKey("CHEFBOOK_DEBUG"))
}
