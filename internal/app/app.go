// Package app wires configuration into the services used by the shells.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chefbook/internal/chef"
	"chefbook/internal/config"
	"chefbook/internal/database"
	"chefbook/internal/diary"
	"chefbook/internal/docstore"
	"chefbook/internal/llm"
	"chefbook/internal/logging"
	"chefbook/internal/mealplan"
	"chefbook/internal/metrics"
	"chefbook/internal/planner"
	"chefbook/internal/profile"
	"chefbook/internal/recipe"
	"chefbook/internal/shopping"
	"chefbook/internal/storage"
)

// ErrPlanUnreadable is returned by LoadPlanner when the stored plan cannot be read.
var ErrPlanUnreadable = errors.New("meal plan could not be read")

// App holds the application's dependencies.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *docstore.Store
	Profile  *profile.Service
	Shopping *shopping.Manager
	Plans    *mealplan.Store
	Diary    *diary.Diary
	Recipes  recipe.Client
	Planner  *planner.Planner
	Chef     *chef.Assistant

	// Metrics is nil unless the sqlite backend is selected.
	Metrics *metrics.Store

	db *database.DB
}

type options struct {
	backend docstore.Backend
	factory llm.Factory
	recipes recipe.Client
}

// Option overrides a dependency NewApp would otherwise build from the config.
type Option func(*options)

// WithBackend uses backend instead of the configured storage backend.
func WithBackend(backend docstore.Backend) Option {
	return func(o *options) { o.backend = backend }
}

// WithFactory replaces the Gemini client factory.
func WithFactory(factory llm.Factory) Option {
	return func(o *options) { o.factory = factory }
}

// WithRecipeClient replaces the recipe API client.
func WithRecipeClient(client recipe.Client) Option {
	return func(o *options) { o.recipes = client }
}

// NewApp creates and initializes a new App instance.
func NewApp(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	logger = logging.OrNop(logger)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}

	backend := o.backend
	if backend == nil {
		var err error
		if backend, err = a.openBackend(); err != nil {
			return nil, err
		}
	}
	if a.db != nil {
		a.Metrics = metrics.NewStore(a.db.SQL)
	}

	factory := o.factory
	if factory == nil {
		factory = llm.NewGeminiFactory(cfg.Gemini.Model, cfg.Gemini.RequestsPerMinute)
	}
	a.Recipes = o.recipes
	if a.Recipes == nil {
		a.Recipes = recipe.NewClient(cfg.Recipes.BaseURL, cfg.Recipes.Timeout)
	}

	// A typed nil would defeat the services' nil checks.
	var recorder metrics.Recorder
	if a.Metrics != nil {
		recorder = a.Metrics
	}

	a.Store = docstore.New(backend, logger)
	a.Profile = profile.NewService(a.Store)
	a.Shopping = shopping.NewManager(a.Store)
	a.Plans = mealplan.NewStore(a.Store)
	a.Diary = diary.New(a.Store)
	a.Planner = planner.New(a.Profile, a.Plans, factory, cfg.Gemini.DefaultAPIKey, recorder, logger)
	a.Chef = chef.New(a.Store, a.Profile, factory, cfg.Gemini.DefaultAPIKey, recorder, logger)

	return a, nil
}

func (a *App) openBackend() (docstore.Backend, error) {
	switch a.Config.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.NewDB(a.Config.Storage.DatabasePath, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.db = db
		return docstore.NewSQLiteBackend(db.SQL), nil
	case config.BackendFile:
		fs, err := storage.NewFileStore(a.Config.Storage.DocumentsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open document directory: %w", err)
		}
		return fs, nil
	case config.BackendMemory:
		return docstore.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
	}
}

// DataPaths lists the on-disk locations used by the configured backend.
func (a *App) DataPaths() []string {
	switch {
	case a.db != nil:
		return []string{a.Config.Storage.DatabasePath}
	case a.Config.Storage.Backend == config.BackendFile:
		return []string{a.Config.Storage.DocumentsDir}
	default:
		return nil
	}
}

// PlannerView is what the planner screen needs on entry.
type PlannerView struct {
	Plan          mealplan.Plan
	Preferences   string
	HasCredential bool
}

// LoadPlanner reads the stored plan and the preference profile concurrently.
func (a *App) LoadPlanner(ctx context.Context) (PlannerView, error) {
	var view PlannerView
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		plan, ok := a.Plans.GetPlan(gctx)
		if !ok {
			return ErrPlanUnreadable
		}
		view.Plan = plan
		return nil
	})
	g.Go(func() error {
		view.Preferences = a.Profile.Preferences(gctx)
		view.HasCredential = a.Planner.HasCredential(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return PlannerView{}, err
	}
	return view, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
