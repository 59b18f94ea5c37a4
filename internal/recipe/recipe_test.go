package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teriyakiJSON = `{
	"idMeal": "52772",
	"strMeal": "Teriyaki Chicken Casserole",
	"strCategory": "Chicken",
	"strArea": "Japanese",
	"strInstructions": "Preheat oven to 350° F.\r\nCombine soy sauce in a small saucepan.\r\n\r\nSTEP 3 - Bake for 15 minutes.",
	"strMealThumb": "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
	"strTags": "Meat,Casserole",
	"strYoutube": null,
	"strIngredient1": "soy sauce",
	"strMeasure1": "3/4 cup",
	"strIngredient2": "  ",
	"strMeasure2": "1 tbs",
	"strIngredient3": "brown sugar",
	"strMeasure3": null,
	"strIngredient4": null,
	"strMeasure4": null,
	"strIngredient20": "chicken breasts",
	"strMeasure20": " 2 "
}`

func TestRecipeUnmarshal(t *testing.T) {
	var rec Recipe
	require.NoError(t, json.Unmarshal([]byte(teriyakiJSON), &rec))

	assert.Equal(t, "52772", rec.ID)
	assert.Equal(t, "Japanese", rec.Area)
	assert.Empty(t, rec.YouTube)
	assert.Equal(t, "soy sauce", rec.Slots[0].Name)
	assert.Equal(t, "  ", rec.Slots[1].Name)

	t.Run("Ingredients", func(t *testing.T) {
		assert.Equal(t, []Ingredient{
			{Name: "soy sauce", Measure: "3/4 cup"},
			{Name: "brown sugar", Measure: ""},
			{Name: "chicken breasts", Measure: "2"},
		}, rec.Ingredients())
	})

	t.Run("IngredientString", func(t *testing.T) {
		ings := rec.Ingredients()
		assert.Equal(t, "3/4 cup soy sauce", ings[0].String())
		assert.Equal(t, "brown sugar", ings[1].String())
	})

	t.Run("Summary", func(t *testing.T) {
		assert.Equal(t, Summary{
			ID:       "52772",
			Name:     "Teriyaki Chicken Casserole",
			Thumb:    "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
			Category: "Chicken",
		}, rec.Summary())
	})

	t.Run("Steps", func(t *testing.T) {
		assert.Equal(t, []string{
			"Preheat oven to 350° F.",
			"Combine soy sauce in a small saucepan.",
			"Bake for 15 minutes.",
		}, rec.Steps())
	})
}

func TestSplitSteps(t *testing.T) {
	tests := []struct {
		name         string
		instructions string
		want         []string
	}{
		{
			name:         "Empty",
			instructions: "",
			want:         nil,
		},
		{
			name:         "NumberedLines",
			instructions: "1. Boil water\n2) Add pasta\n3 - Drain",
			want:         []string{"Boil water", "Add pasta", "Drain"},
		},
		{
			name:         "SingleLineFallsBackToSentences",
			instructions: "Heat the oil. Fry the onions.  Serve hot.",
			want:         []string{"Heat the oil", "Fry the onions", "Serve hot."},
		},
		{
			name:         "StepMarkersAreCaseInsensitive",
			instructions: "step 1: Mix flour\nStep2. Knead dough",
			want:         []string{"Mix flour", "Knead dough"},
		},
		{
			name:         "DropsShortAndNumericFragments",
			instructions: "1.\n2.\nok\nStir well\n12345",
			want:         []string{"Stir well"},
		},
		{
			name:         "ShortFragmentsCountCharacters",
			instructions: "1. 拌匀\n2. 煮三分\n3. Sé",
			want:         []string{"煮三分"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSteps(tt.instructions))
		})
	}
}
