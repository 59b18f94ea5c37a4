// Package diary keeps the log of finished recipes and derives achievement badges from it.
package diary

import (
	"context"
	"slices"
	"time"

	"chefbook/internal/docstore"
	"chefbook/internal/recipe"
)

// FinishedRecipe is one entry of the cooking log.
type FinishedRecipe struct {
	recipe.Summary
	FinishedAt string `json:"finishedAt"`
}

// Diary reads and appends to the finished-recipe log.
type Diary struct {
	store *docstore.Store
	now   func() time.Time
}

// Option configures a Diary.
type Option func(*Diary)

// WithClock overrides the time source used for finishedAt.
func WithClock(now func() time.Time) Option {
	return func(d *Diary) { d.now = now }
}

// New creates a Diary.
func New(store *docstore.Store, opts ...Option) *Diary {
	d := &Diary{store: store, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListFinished returns the log, most recent first.
func (d *Diary) ListFinished(ctx context.Context) ([]FinishedRecipe, bool) {
	var log []FinishedRecipe
	if _, ok := d.store.Load(ctx, docstore.KeyFinishedRecipes, &log); !ok {
		return nil, false
	}
	return log, true
}

// MarkFinished records summary as cooked. created is false when the recipe was
// already in the log, in which case nothing changes.
func (d *Diary) MarkFinished(ctx context.Context, summary recipe.Summary) (created, ok bool) {
	log, ok := d.ListFinished(ctx)
	if !ok {
		return false, false
	}

	if slices.ContainsFunc(log, func(f FinishedRecipe) bool { return f.ID == summary.ID }) {
		return false, true
	}

	entry := FinishedRecipe{
		Summary:    summary,
		FinishedAt: d.now().UTC().Format(time.RFC3339Nano),
	}
	log = append([]FinishedRecipe{entry}, log...)
	if !d.store.Save(ctx, docstore.KeyFinishedRecipes, log) {
		return false, false
	}
	return true, true
}

// IsFinished reports whether idMeal is in the log.
func (d *Diary) IsFinished(ctx context.Context, idMeal string) bool {
	log, ok := d.ListFinished(ctx)
	if !ok {
		return false
	}
	return slices.ContainsFunc(log, func(f FinishedRecipe) bool { return f.ID == idMeal })
}

// Achievements evaluates the rule table against the stored log.
func (d *Diary) Achievements(ctx context.Context) ([]Achievement, bool) {
	log, ok := d.ListFinished(ctx)
	if !ok {
		return nil, false
	}
	return ComputeAchievements(log), true
}
