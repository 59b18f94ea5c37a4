package diary

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/docstore"
	"chefbook/internal/recipe"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newDiary() *Diary {
	clock := &stepClock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	return New(docstore.New(docstore.NewMemoryBackend(), nil), WithClock(clock.now))
}

func TestMarkFinishedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newDiary()
	summary := recipe.Summary{ID: "52772", Name: "Teriyaki Chicken Casserole", Category: "Chicken"}

	created, ok := d.MarkFinished(ctx, summary)
	require.True(t, ok)
	assert.True(t, created)

	log, _ := d.ListFinished(ctx)
	require.Len(t, log, 1)
	firstAt := log[0].FinishedAt
	assert.Equal(t, "2025-01-01T08:01:00Z", firstAt)

	created, ok = d.MarkFinished(ctx, summary)
	require.True(t, ok)
	assert.False(t, created)

	log, _ = d.ListFinished(ctx)
	require.Len(t, log, 1)
	assert.Equal(t, firstAt, log[0].FinishedAt)
	assert.True(t, d.IsFinished(ctx, "52772"))
	assert.False(t, d.IsFinished(ctx, "52773"))
}

func TestListFinishedMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	d := newDiary()

	for _, id := range []string{"1", "2", "3"} {
		_, ok := d.MarkFinished(ctx, recipe.Summary{ID: id})
		require.True(t, ok)
	}

	log, ok := d.ListFinished(ctx)
	require.True(t, ok)
	var ids []string
	for _, f := range log {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestAchievements(t *testing.T) {
	ctx := context.Background()
	d := newDiary()

	achievements, ok := d.Achievements(ctx)
	require.True(t, ok)
	require.Len(t, achievements, len(Rules))
	assert.Zero(t, UnlockedCount(achievements))

	for i := range 3 {
		_, ok := d.MarkFinished(ctx, recipe.Summary{ID: fmt.Sprint("sea", i), Category: "Seafood"})
		require.True(t, ok)
	}

	achievements, _ = d.Achievements(ctx)
	unlocked := map[string]bool{}
	for _, a := range achievements {
		unlocked[a.Title] = a.Unlocked
	}
	assert.Equal(t, map[string]bool{
		"Junior Chef":        true,
		"Steady Cook":        false,
		"Seafood Master":     true,
		"Vegetarian Warrior": false,
		"Dessert King":       false,
	}, unlocked)
}

func TestEvaluateCustomRule(t *testing.T) {
	rules := append(Rules, Rule{
		ID: "pasta_lover", Title: "Pasta Lover", Threshold: 1, Count: inCategory("Pasta"),
	})

	got := Evaluate(rules, []FinishedRecipe{{Summary: recipe.Summary{ID: "1", Category: "Pasta"}}})
	require.Len(t, got, len(Rules)+1)
	assert.True(t, got[len(got)-1].Unlocked)
}

func TestAchievementsAreMonotonic(t *testing.T) {
	categories := []string{"Seafood", "Vegetarian", "Dessert", "Beef", "Pasta"}
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 200 {
		var full []FinishedRecipe
		for i := range rng.IntN(12) {
			full = append(full, FinishedRecipe{Summary: recipe.Summary{
				ID:       fmt.Sprint(i),
				Category: categories[rng.IntN(len(categories))],
			}})
		}

		var subset []FinishedRecipe
		for _, f := range full {
			if rng.IntN(2) == 0 {
				subset = append(subset, f)
			}
		}

		small := ComputeAchievements(subset)
		large := ComputeAchievements(full)
		for i := range small {
			if small[i].Unlocked {
				assert.True(t, large[i].Unlocked, "trial %d: %s locked after adding entries", trial, small[i].ID)
			}
		}
	}
}

func TestFinishedRecipeJSON(t *testing.T) {
	ctx := context.Background()
	backend := docstore.NewMemoryBackend()
	d := New(docstore.New(backend, nil), WithClock(func() time.Time {
		return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	}))

	_, ok := d.MarkFinished(ctx, recipe.Summary{ID: "52772", Name: "Teriyaki", Thumb: "t.jpg", Category: "Chicken"})
	require.True(t, ok)

	raw, err := backend.Get(ctx, docstore.KeyFinishedRecipes)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"idMeal":"52772","strMeal":"Teriyaki","strMealThumb":"t.jpg","strCategory":"Chicken","finishedAt":"2025-03-04T05:06:07Z"}]`, string(raw))
}
