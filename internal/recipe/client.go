package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public TheMealDB v1 endpoint.
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

// ErrNotFound is returned by Lookup when no meal has the requested id.
var ErrNotFound = errors.New("recipe not found")

// Client is an interface for a recipe lookup API client.
type Client interface {
	List(ctx context.Context) ([]Recipe, error)
	Search(ctx context.Context, query string) ([]Recipe, error)
	ByCategory(ctx context.Context, category string) ([]Recipe, error)
	Lookup(ctx context.Context, id string) (*Recipe, error)
}

// mealsResponse is the envelope of every TheMealDB response. Meals is null when
// nothing matched.
type mealsResponse struct {
	Meals []Recipe `json:"meals"`
}

// mealDBClient is the concrete implementation of the TheMealDB client.
type mealDBClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new TheMealDB client.
func NewClient(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &mealDBClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// List fetches every meal the search endpoint returns for an empty query.
func (c *mealDBClient) List(ctx context.Context) ([]Recipe, error) {
	return c.fetch(ctx, "search.php", "s", "")
}

// Search fetches meals whose name matches query.
func (c *mealDBClient) Search(ctx context.Context, query string) ([]Recipe, error) {
	return c.fetch(ctx, "search.php", "s", query)
}

// ByCategory fetches the meals of a category. The filter endpoint only returns
// id, name and thumbnail for each meal.
func (c *mealDBClient) ByCategory(ctx context.Context, category string) ([]Recipe, error) {
	recipes, err := c.fetch(ctx, "filter.php", "c", category)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].Category == "" {
			recipes[i].Category = category
		}
	}
	return recipes, nil
}

// Lookup fetches the full record of one meal.
func (c *mealDBClient) Lookup(ctx context.Context, id string) (*Recipe, error) {
	recipes, err := c.fetch(ctx, "lookup.php", "i", id)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	return &recipes[0], nil
}

func (c *mealDBClient) fetch(ctx context.Context, endpoint, param, value string) ([]Recipe, error) {
	query := url.Values{}
	query.Set(param, value)
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe api error: status %d", resp.StatusCode)
	}

	var meals mealsResponse
	if err := json.NewDecoder(resp.Body).Decode(&meals); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return meals.Meals, nil
}
