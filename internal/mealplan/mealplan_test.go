package mealplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/docstore"
)

func newStore() (*Store, *docstore.MemoryBackend) {
	backend := docstore.NewMemoryBackend()
	return NewStore(docstore.New(backend, nil)), backend
}

func TestGetPlanEmpty(t *testing.T) {
	s, _ := newStore()
	plan, ok := s.GetPlan(context.Background())
	require.True(t, ok)
	assert.NotNil(t, plan)
	assert.Zero(t, plan.Len())
}

func TestRemoveItemPrunesEmptyDay(t *testing.T) {
	ctx := context.Background()
	s, backend := newStore()

	require.True(t, s.ReplacePlan(ctx, Plan{
		"Senin": {{ID: "a", RecipeName: "Nasi Goreng", MealType: Breakfast, Date: "Senin"}},
		"Rabu": {
			{ID: "b", RecipeName: "Soto Ayam", MealType: Lunch, Date: "Rabu"},
			{ID: "c", RecipeName: "Rendang", MealType: Dinner, Date: "Rabu"},
		},
	}))

	t.Run("LastItemRemovesKey", func(t *testing.T) {
		require.True(t, s.RemoveItem(ctx, "Senin", "a"))

		plan, ok := s.GetPlan(ctx)
		require.True(t, ok)
		_, exists := plan["Senin"]
		assert.False(t, exists)

		raw, err := backend.Get(ctx, docstore.KeyMealPlans)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Senin")
	})

	t.Run("KeepsOrderOfRemaining", func(t *testing.T) {
		require.True(t, s.RemoveItem(ctx, "Rabu", "b"))
		items, ok := s.Day(ctx, "Rabu")
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, "c", items[0].ID)
	})

	t.Run("UnknownDayIsNoop", func(t *testing.T) {
		assert.True(t, s.RemoveItem(ctx, "Minggu", "zzz"))
		plan, _ := s.GetPlan(ctx)
		assert.Equal(t, []string{"Rabu"}, plan.OrderedDays())
	})
}

func TestReplacePlanDiscardsOldDays(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	require.True(t, s.ReplacePlan(ctx, Plan{"Senin": {{ID: "old", Date: "Senin"}}}))
	require.True(t, s.ReplacePlan(ctx, Plan{"Selasa": {{ID: "new", Date: "Selasa"}}}))

	plan, ok := s.GetPlan(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Selasa"}, plan.OrderedDays())
}

func TestOrderedDays(t *testing.T) {
	plan := Plan{"Minggu": {{}}, "Senin": {{}}, "Kamis": {{}, {}}}
	assert.Equal(t, []string{"Senin", "Kamis", "Minggu"}, plan.OrderedDays())
	assert.Equal(t, 4, plan.Len())
	assert.True(t, IsDay("Jumat"))
	assert.False(t, IsDay("Monday"))
}
