// Package mealplan stores the weekly meal plan: a mapping from day label to the
// ordered meals of that day.
package mealplan

import (
	"context"
	"slices"

	"chefbook/internal/docstore"
)

// MealType is the slot a meal fills in a day.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snack     MealType = "Snack"
)

// Days are the seven day labels, Monday first.
var Days = []string{"Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"}

// IsDay reports whether label is one of Days.
func IsDay(label string) bool {
	return slices.Contains(Days, label)
}

// Item is one planned meal. RecipeID is empty when the meal was suggested by the
// planner and not yet resolved against the recipe API.
type Item struct {
	ID         string   `json:"id"`
	RecipeID   string   `json:"recipeId"`
	RecipeName string   `json:"recipeName"`
	MealType   MealType `json:"mealType"`
	Date       string   `json:"date"`
	Category   string   `json:"category"`
}

// Plan maps a day label to its meals. A day with no meals has no key.
type Plan map[string][]Item

// OrderedDays returns the days present in p in week order.
func (p Plan) OrderedDays() []string {
	var days []string
	for _, d := range Days {
		if _, ok := p[d]; ok {
			days = append(days, d)
		}
	}
	return days
}

// Len counts the meals across all days.
func (p Plan) Len() int {
	n := 0
	for _, items := range p {
		n += len(items)
	}
	return n
}

// Store persists the plan document.
type Store struct {
	store *docstore.Store
}

// NewStore creates a meal plan Store.
func NewStore(store *docstore.Store) *Store {
	return &Store{store: store}
}

// GetPlan returns the stored plan; a missing document yields an empty plan.
func (s *Store) GetPlan(ctx context.Context) (Plan, bool) {
	plan := Plan{}
	if _, ok := s.store.Load(ctx, docstore.KeyMealPlans, &plan); !ok {
		return nil, false
	}
	if plan == nil {
		plan = Plan{}
	}
	return plan, true
}

// ReplacePlan overwrites the stored plan unconditionally.
func (s *Store) ReplacePlan(ctx context.Context, plan Plan) bool {
	if plan == nil {
		plan = Plan{}
	}
	return s.store.Save(ctx, docstore.KeyMealPlans, plan)
}

// RemoveItem drops the item with id from day. When the day ends up empty its key
// is deleted rather than kept as an empty list.
func (s *Store) RemoveItem(ctx context.Context, day, id string) bool {
	plan, ok := s.GetPlan(ctx)
	if !ok {
		return false
	}

	items, exists := plan[day]
	if !exists {
		return true
	}

	items = slices.DeleteFunc(items, func(i Item) bool { return i.ID == id })
	if len(items) == 0 {
		delete(plan, day)
	} else {
		plan[day] = items
	}
	return s.store.Save(ctx, docstore.KeyMealPlans, plan)
}

// Day returns the meals planned for one day label.
func (s *Store) Day(ctx context.Context, day string) ([]Item, bool) {
	plan, ok := s.GetPlan(ctx)
	if !ok {
		return nil, false
	}
	return plan[day], true
}
