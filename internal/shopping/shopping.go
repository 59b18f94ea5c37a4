// Package shopping manages the flat shopping list of ingredient line items.
//
// Every mutation reads the whole list, changes it and writes the whole list back.
// Two overlapping mutations race and the last write wins.
package shopping

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"chefbook/internal/docstore"
	"chefbook/internal/recipe"
)

// Item is one ingredient line, tagged with the recipe it came from.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Measure    string `json:"measure"`
	RecipeID   string `json:"recipeId"`
	RecipeName string `json:"recipeName"`
	Completed  bool   `json:"completed"`
}

// sameLine reports whether two items are the same ingredient of the same recipe.
// Measure is not compared.
func (i Item) sameLine(o Item) bool {
	return i.Name == o.Name && i.RecipeID == o.RecipeID
}

// Progress counts bought items.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Manager provides the shopping list operations.
type Manager struct {
	store *docstore.Store
	newID func() string
}

// NewManager creates a new shopping list manager.
func NewManager(store *docstore.Store) *Manager {
	return &Manager{store: store, newID: uuid.NewString}
}

// List returns the stored list. ok is false when the list could not be read.
func (m *Manager) List(ctx context.Context) ([]Item, bool) {
	var items []Item
	if _, ok := m.store.Load(ctx, docstore.KeyShoppingList, &items); !ok {
		return nil, false
	}
	if items == nil {
		items = []Item{}
	}
	return items, true
}

// Add appends item unless an item with the same name and recipe id is already listed,
// in which case it succeeds without writing.
func (m *Manager) Add(ctx context.Context, item Item) bool {
	_, ok := m.add(ctx, []Item{item})
	return ok
}

// AddIngredients adds every resolved ingredient of rec and returns how many were new.
func (m *Manager) AddIngredients(ctx context.Context, rec *recipe.Recipe) (int, bool) {
	var items []Item
	for _, ing := range rec.Ingredients() {
		items = append(items, Item{
			Name:       ing.Name,
			Measure:    ing.Measure,
			RecipeID:   rec.ID,
			RecipeName: rec.Name,
		})
	}
	return m.add(ctx, items)
}

func (m *Manager) add(ctx context.Context, newItems []Item) (int, bool) {
	items, ok := m.List(ctx)
	if !ok {
		return 0, false
	}

	added := 0
	for _, item := range newItems {
		if slices.ContainsFunc(items, item.sameLine) {
			continue
		}
		if item.ID == "" {
			item.ID = m.newID()
		}
		item.Completed = false
		items = append(items, item)
		added++
	}

	if added == 0 {
		return 0, true
	}
	if !m.store.Save(ctx, docstore.KeyShoppingList, items) {
		return 0, false
	}
	return added, true
}

// Toggle flips the completed flag of the item with id. A missing id is a no-op success.
func (m *Manager) Toggle(ctx context.Context, id string) bool {
	items, ok := m.List(ctx)
	if !ok {
		return false
	}

	idx := slices.IndexFunc(items, func(i Item) bool { return i.ID == id })
	if idx < 0 {
		return true
	}
	items[idx].Completed = !items[idx].Completed
	return m.store.Save(ctx, docstore.KeyShoppingList, items)
}

// Remove deletes the item with id and persists the remainder.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	items, ok := m.List(ctx)
	if !ok {
		return false
	}

	items = slices.DeleteFunc(items, func(i Item) bool { return i.ID == id })
	return m.store.Save(ctx, docstore.KeyShoppingList, items)
}

// ClearCompleted removes every completed item and returns how many were removed.
// Zero means there was nothing to clear and nothing was written.
func (m *Manager) ClearCompleted(ctx context.Context) (int, bool) {
	items, ok := m.List(ctx)
	if !ok {
		return 0, false
	}

	before := len(items)
	items = slices.DeleteFunc(items, func(i Item) bool { return i.Completed })
	removed := before - len(items)
	if removed == 0 {
		return 0, true
	}

	if !m.store.Save(ctx, docstore.KeyShoppingList, items) {
		return 0, false
	}
	return removed, true
}

// Progress reports how many listed items are completed.
func (m *Manager) Progress(ctx context.Context) (Progress, bool) {
	items, ok := m.List(ctx)
	if !ok {
		return Progress{}, false
	}

	p := Progress{Total: len(items)}
	for _, i := range items {
		if i.Completed {
			p.Completed++
		}
	}
	return p, true
}
