package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"chefbook/internal/shared"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGeminiClient creates a new Gemini API client. A nil limiter disables pacing.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, limiter *rate.Limiter) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &GeminiClient{client: client, modelName: modelName, limiter: limiter}, nil
}

// NewGeminiFactory returns a Factory whose clients share one limiter allowing
// requestsPerMinute calls. Zero or less means unlimited.
func NewGeminiFactory(modelName string, requestsPerMinute int) Factory {
	limiter := NewLimiter(requestsPerMinute)
	return func(ctx context.Context, apiKey string) (Generator, error) {
		return NewGeminiClient(ctx, apiKey, modelName, limiter)
	}
}

// NewLimiter builds a limiter for a requests-per-minute budget.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	return c.generate(ctx, c.client.GenerativeModel(c.modelName), prompt)
}

// GenerateJSON sends a prompt in JSON mode, constraining the output to schema.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema
	return c.generate(ctx, model, prompt)
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (ContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return ContentResponse{}, err
	}
	return ContentResponse{Content: text, Usage: usageOf(resp, c.modelName)}, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}

func usageOf(resp *genai.GenerateContentResponse, modelName string) shared.TokenUsage {
	usage := shared.TokenUsage{Model: modelName}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return usage
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
