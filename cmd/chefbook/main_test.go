package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chefbook/internal/app"
	"chefbook/internal/config"
	"chefbook/internal/docstore"
	"chefbook/internal/llm"
	"chefbook/internal/recipe"
)

type fakeRecipes struct {
	meals map[string]*recipe.Recipe
}

func (f *fakeRecipes) List(ctx context.Context) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for _, m := range f.meals {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeRecipes) Search(ctx context.Context, query string) ([]recipe.Recipe, error) {
	return f.List(ctx)
}

func (f *fakeRecipes) ByCategory(ctx context.Context, category string) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for _, m := range f.meals {
		if m.Category == category {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRecipes) Lookup(ctx context.Context, id string) (*recipe.Recipe, error) {
	if m, ok := f.meals[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("meal %s: %w", id, recipe.ErrNotFound)
}

func salmon() *recipe.Recipe {
	rec := &recipe.Recipe{
		ID:           "52773",
		Name:         "Honey Teriyaki Salmon",
		Category:     "Seafood",
		Area:         "Japanese",
		Instructions: "Mix all the ingredients.\r\nBake for 15 minutes.",
	}
	rec.Slots[0] = recipe.Ingredient{Name: "Salmon", Measure: "1 lb"}
	rec.Slots[1] = recipe.Ingredient{Name: "Honey", Measure: "1 tbs"}
	return rec
}

// useMemoryApp makes every command run share one in-memory backend.
func useMemoryApp(t *testing.T) {
	backend := docstore.NewMemoryBackend()
	recipes := &fakeRecipes{meals: map[string]*recipe.Recipe{"52773": salmon()}}
	noModel := func(ctx context.Context, apiKey string) (llm.Generator, error) {
		return nil, errors.New("no model in tests")
	}

	previous := openApp
	openApp = func(cfg *config.Config, logger *zap.Logger) (*app.App, error) {
		cfg.Storage.Backend = config.BackendMemory
		return app.NewApp(cfg, zap.NewNop(),
			app.WithBackend(backend),
			app.WithRecipeClient(recipes),
			app.WithFactory(noModel),
		)
	}
	t.Cleanup(func() { openApp = previous })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := execute(context.Background())
	return out.String(), err
}

func TestShoppingCommands(t *testing.T) {
	useMemoryApp(t)

	out, err := run(t, "shopping", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Belum ada item yang selesai dibeli.\n", out)

	out, err = run(t, "shopping", "add-recipe", "52773")
	require.NoError(t, err)
	assert.Contains(t, out, "2 bahan dari Honey Teriyaki Salmon")

	out, err = run(t, "shopping", "add-recipe", "52773")
	require.NoError(t, err)
	assert.Contains(t, out, "0 bahan")

	out, err = run(t, "shopping", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Salmon")
	assert.Contains(t, out, "0 dari 2 item sudah dibeli.")

	_, err = run(t, "shopping", "add-recipe", "404")
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestDiaryCommands(t *testing.T) {
	useMemoryApp(t)

	out, err := run(t, "diary", "finish", "52773")
	require.NoError(t, err)
	assert.Equal(t, "Honey Teriyaki Salmon ditambahkan ke diary.\n", out)

	out, err = run(t, "diary", "finish", "52773")
	require.NoError(t, err)
	assert.Equal(t, "Honey Teriyaki Salmon sudah ada di diary.\n", out)

	out, err = run(t, "diary", "achievements")
	require.NoError(t, err)
	assert.Contains(t, out, "1/5 terbuka")

	out, err = run(t, "recipes", "show", "52773")
	require.NoError(t, err)
	assert.Contains(t, out, "Sudah pernah dimasak.")
	assert.Contains(t, out, "- 1 lb Salmon")
	assert.Contains(t, out, "2. Bake for 15 minutes.")
}

func TestSettingsCommands(t *testing.T) {
	useMemoryApp(t)

	_, err := run(t, "settings", "key", "AIza-personal-1234")
	require.NoError(t, err)
	_, err = run(t, "settings", "prefs", "alergi", "udang")
	require.NoError(t, err)

	out, err := run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: **************1234")
	assert.Contains(t, out, "Preferensi: alergi udang")

	_, err = run(t, "settings", "remove-key")
	require.NoError(t, err)
	out, err = run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: (belum diatur)")
}

func TestPlanCommandsWithoutCredential(t *testing.T) {
	useMemoryApp(t)

	out, err := run(t, "plan", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Belum ada rencana makan.")

	_, err = run(t, "plan", "generate")
	assert.ErrorIs(t, err, errPlanFailed)

	_, err = run(t, "plan", "show", "Monday")
	assert.Error(t, err)
}

func TestChatWithoutCredential(t *testing.T) {
	useMemoryApp(t)

	_, err := run(t, "chat", "ask", "52773", "Bisa", "pakai", "ayam?")
	require.NoError(t, err)

	out, err := run(t, "chat", "history", "52773")
	require.NoError(t, err)
	assert.Contains(t, out, "Anda: Bisa pakai ayam?")
	assert.Contains(t, out, "Harap masukkan Gemini API Key")

	out, err = run(t, "chat", "reset", "52773")
	require.NoError(t, err)
	assert.Equal(t, "Chef AI: Halo! Saya Chef AI. Ada yang bisa saya bantu dengan resep Honey Teriyaki Salmon ini?\n", out)
}

func TestEmptyKeyRejected(t *testing.T) {
	useMemoryApp(t)
	_, err := run(t, "settings", "key", "   ")
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestFailedCommandReleasesApp(t *testing.T) {
	useMemoryApp(t)

	_, err := run(t, "shopping", "add-recipe", "404")
	require.Error(t, err)
	assert.Nil(t, application)

	_, err = run(t, "shopping", "list")
	require.NoError(t, err)
	assert.Nil(t, application)
}

func TestMetricsNeedSQLite(t *testing.T) {
	useMemoryApp(t)
	_, err := run(t, "metrics", "usage")
	assert.ErrorIs(t, err, errNoMetrics)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "****wxyz", maskKey("abcdwxyz"))
}
