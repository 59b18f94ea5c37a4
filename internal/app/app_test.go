package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/config"
	"chefbook/internal/docstore"
	"chefbook/internal/llm"
	"chefbook/internal/mealplan"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Gemini: config.GeminiConfig{DefaultAPIKey: config.PlaceholderAPIKey, Model: llm.DefaultModel},
		Storage: config.StorageConfig{
			Backend:      backend,
			DatabasePath: filepath.Join(dir, "chefbook.db"),
			DocumentsDir: filepath.Join(dir, "documents"),
		},
		Recipes: config.RecipesConfig{BaseURL: "http://127.0.0.1:0"},
	}
}

type countingFactory struct {
	calls int
}

func (f *countingFactory) New(ctx context.Context, apiKey string) (llm.Generator, error) {
	f.calls++
	return nil, errors.New("no model in tests")
}

func TestNewAppBackends(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		cfg := testConfig(t, config.BackendSQLite)
		a, err := NewApp(cfg, nil)
		require.NoError(t, err)
		defer a.Close()

		assert.NotNil(t, a.Metrics)
		assert.Equal(t, []string{cfg.Storage.DatabasePath}, a.DataPaths())

		ctx := context.Background()
		require.True(t, a.Profile.SavePreferences(ctx, "vegetarian"))
		assert.Equal(t, "vegetarian", a.Profile.Preferences(ctx))
	})

	t.Run("File", func(t *testing.T) {
		cfg := testConfig(t, config.BackendFile)
		a, err := NewApp(cfg, nil)
		require.NoError(t, err)
		defer a.Close()

		assert.Nil(t, a.Metrics)
		assert.Equal(t, []string{cfg.Storage.DocumentsDir}, a.DataPaths())
		require.True(t, a.Profile.SaveAPIKey(context.Background(), "AIza-user"))
		assert.FileExists(t, filepath.Join(cfg.Storage.DocumentsDir, "@gemini_api_key.json"))
	})

	t.Run("Memory", func(t *testing.T) {
		a, err := NewApp(testConfig(t, config.BackendMemory), nil)
		require.NoError(t, err)
		assert.Nil(t, a.Metrics)
		assert.Empty(t, a.DataPaths())
		assert.NoError(t, a.Close())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := NewApp(testConfig(t, "redis"), nil)
		assert.Error(t, err)
	})
}

func TestLoadPlanner(t *testing.T) {
	ctx := context.Background()
	factory := &countingFactory{}
	backend := docstore.NewMemoryBackend()
	a, err := NewApp(testConfig(t, config.BackendMemory), nil, WithBackend(backend), WithFactory(factory.New))
	require.NoError(t, err)

	plan := mealplan.Plan{"Senin": {{ID: "a", RecipeName: "Bubur Ayam", MealType: mealplan.Breakfast, Date: "Senin"}}}
	require.True(t, a.Plans.ReplacePlan(ctx, plan))
	require.True(t, a.Profile.SavePreferences(ctx, "tanpa kacang"))

	view, err := a.LoadPlanner(ctx)
	require.NoError(t, err)
	assert.Equal(t, plan, view.Plan)
	assert.Equal(t, "tanpa kacang", view.Preferences)
	assert.False(t, view.HasCredential)

	t.Run("UserKeyEnablesPlanner", func(t *testing.T) {
		require.True(t, a.Profile.SaveAPIKey(ctx, "AIza-user"))
		view, err := a.LoadPlanner(ctx)
		require.NoError(t, err)
		assert.True(t, view.HasCredential)
	})

	t.Run("NoNetworkWithoutCredential", func(t *testing.T) {
		require.True(t, a.Profile.RemoveAPIKey(ctx))
		assert.Nil(t, a.Planner.GenerateFromProfile(ctx))
		assert.Zero(t, factory.calls)
	})
}

type brokenBackend struct {
	*docstore.MemoryBackend
}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadPlannerUnreadable(t *testing.T) {
	a, err := NewApp(testConfig(t, config.BackendMemory), nil, WithBackend(brokenBackend{docstore.NewMemoryBackend()}))
	require.NoError(t, err)

	_, err = a.LoadPlanner(context.Background())
	assert.ErrorIs(t, err, ErrPlanUnreadable)
}
