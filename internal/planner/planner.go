// Package planner turns the user's diet profile into a validated seven-day meal plan
// using a generative model in JSON mode.
package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chefbook/internal/category"
	"chefbook/internal/llm"
	"chefbook/internal/logging"
	"chefbook/internal/mealplan"
	"chefbook/internal/metrics"
	"chefbook/internal/profile"
	"chefbook/internal/shared"
)

//go:embed planner_prompt.md
var plannerPrompt string

var promptTemplate = template.Must(template.New("Planner").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(plannerPrompt))

const (
	daysPerPlan  = 7
	mealsPerDay  = 3
	agentPlanner = shared.AgentPlanner
)

// plannedMealTypes are the only types the planner may emit. Snack exists in the
// store for manual entries.
var plannedMealTypes = []string{
	string(mealplan.Breakfast), string(mealplan.Lunch), string(mealplan.Dinner),
}

type planResponse struct {
	Days []dayEntry `json:"days" validate:"required,len=7,unique=Day,dive"`
}

type dayEntry struct {
	Day   string      `json:"day" validate:"required,daylabel"`
	Meals []mealEntry `json:"meals" validate:"required,len=3,unique=Type,dive"`
}

type mealEntry struct {
	Type     string `json:"type" validate:"required,mealtype"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required,category"`
}

// Planner generates meal plans and stores them.
type Planner struct {
	profile      *profile.Service
	plans        *mealplan.Store
	newGenerator llm.Factory
	defaultKey   string
	metrics      metrics.Recorder
	logger       *zap.Logger
	validate     *validator.Validate
	newID        func() string
}

// New creates a Planner. recorder may be nil.
func New(
	prof *profile.Service,
	plans *mealplan.Store,
	factory llm.Factory,
	defaultKey string,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *Planner {
	return &Planner{
		profile:      prof,
		plans:        plans,
		newGenerator: factory,
		defaultKey:   defaultKey,
		metrics:      recorder,
		logger:       logging.OrNop(logger).Named("planner"),
		validate:     newValidator(),
		newID:        uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("daylabel", func(fl validator.FieldLevel) bool {
		return mealplan.IsDay(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return category.IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("mealtype", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		for _, allowed := range plannedMealTypes {
			if t == allowed {
				return true
			}
		}
		return false
	})
	return v
}

// HasCredential reports whether a usable model key is available.
func (p *Planner) HasCredential(ctx context.Context) bool {
	return p.profile.ActiveAPIKey(ctx, p.defaultKey) != ""
}

// Generate proposes a plan and, when one validates, replaces the stored plan with
// it. It returns nil when Propose does or when the write fails.
func (p *Planner) Generate(ctx context.Context, preferences string) mealplan.Plan {
	plan := p.Propose(ctx, preferences)
	if plan == nil || !p.Commit(ctx, plan) {
		return nil
	}
	return plan
}

// Propose asks the model for a plan honouring preferences without storing it.
// It returns nil for every failure: missing credential, model or network error,
// rate limiting, or invalid output.
func (p *Planner) Propose(ctx context.Context, preferences string) mealplan.Plan {
	apiKey := p.profile.ActiveAPIKey(ctx, p.defaultKey)
	if apiKey == "" {
		p.logger.Info("no model credential configured")
		return nil
	}

	prompt, err := BuildPrompt(preferences)
	if err != nil {
		p.logger.Error("failed to build prompt", zap.Error(err))
		return nil
	}

	gen, err := p.newGenerator(ctx, apiKey)
	if err != nil {
		p.logger.Warn("failed to create model client", zap.String("agent", agentPlanner), zap.Error(err))
		return nil
	}
	defer gen.Close()

	start := time.Now()
	resp, err := gen.GenerateJSON(ctx, prompt, ResponseSchema())
	if err != nil {
		p.logger.Warn("plan generation failed",
			zap.String("agent", agentPlanner),
			zap.Bool("rate_limited", llm.IsRateLimited(err)),
			zap.Error(err),
		)
		return nil
	}
	p.record(ctx, shared.NewAgentMeta(agentPlanner, resp.Usage, start))

	plan, err := p.Parse(resp.Content)
	if err != nil {
		p.logger.Warn("rejected model plan", zap.String("agent", agentPlanner), zap.Error(err))
		return nil
	}
	return plan
}

// Commit replaces the stored plan with a proposed one.
func (p *Planner) Commit(ctx context.Context, plan mealplan.Plan) bool {
	return p.plans.ReplacePlan(ctx, plan)
}

// GenerateFromProfile runs Generate with the stored preferences.
func (p *Planner) GenerateFromProfile(ctx context.Context) mealplan.Plan {
	return p.Generate(ctx, p.profile.Preferences(ctx))
}

// ProposeFromProfile runs Propose with the stored preferences.
func (p *Planner) ProposeFromProfile(ctx context.Context) mealplan.Plan {
	return p.Propose(ctx, p.profile.Preferences(ctx))
}

// Parse validates raw model output and turns it into a Plan with fresh item ids.
// Any violation rejects the whole response.
func (p *Planner) Parse(raw string) (mealplan.Plan, error) {
	var resp planResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	for i := range resp.Days {
		resp.Days[i].Day = strings.TrimSpace(resp.Days[i].Day)
		for j := range resp.Days[i].Meals {
			m := &resp.Days[i].Meals[j]
			m.Type = strings.TrimSpace(m.Type)
			m.Name = strings.TrimSpace(m.Name)
			m.Category = strings.TrimSpace(m.Category)
		}
	}

	if err := p.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	plan := make(mealplan.Plan, daysPerPlan)
	for _, d := range resp.Days {
		items := make([]mealplan.Item, 0, mealsPerDay)
		for _, m := range d.Meals {
			items = append(items, mealplan.Item{
				ID:         p.newID(),
				RecipeName: m.Name,
				MealType:   mealplan.MealType(m.Type),
				Date:       d.Day,
				Category:   m.Category,
			})
		}
		plan[d.Day] = items
	}
	return plan, nil
}

func (p *Planner) record(ctx context.Context, meta shared.AgentMeta) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordMeta(ctx, meta); err != nil {
		p.logger.Warn("failed to record metrics", zap.Error(err))
	}
}

// BuildPrompt renders the planner prompt for preferences.
func BuildPrompt(preferences string) (string, error) {
	data := struct {
		Preferences string
		Days        []string
		MealTypes   []string
		Categories  []string
	}{
		Preferences: strings.TrimSpace(preferences),
		Days:        mealplan.Days,
		MealTypes:   plannedMealTypes,
		Categories:  category.Categories(),
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render planner prompt: %w", err)
	}
	return buf.String(), nil
}

// ResponseSchema constrains the model to the plan shape.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"days": {
				Type:        genai.TypeArray,
				Description: "Seven days, each label used once.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"day": {Type: genai.TypeString, Enum: mealplan.Days},
						"meals": {
							Type:        genai.TypeArray,
							Description: "Breakfast, Lunch and Dinner for the day.",
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"type":     {Type: genai.TypeString, Enum: plannedMealTypes},
									"name":     {Type: genai.TypeString},
									"category": {Type: genai.TypeString, Enum: category.Categories()},
								},
								Required: []string{"type", "name", "category"},
							},
						},
					},
					Required: []string{"day", "meals"},
				},
			},
		},
		Required: []string{"days"},
	}
}
