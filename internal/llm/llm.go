package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chefbook/internal/shared"
)

// ErrNoContent is returned when the model answered without any text.
var ErrNoContent = errors.New("no content generated")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// StructuredGenerator generates JSON constrained by a response schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Generator is a model client able to produce free text and schema-constrained JSON.
type Generator interface {
	TextGenerator
	StructuredGenerator
	Closer
}

// Factory creates a Generator bound to an API key. Services call it per request
// because the user may change the key at any time.
type Factory func(ctx context.Context, apiKey string) (Generator, error)

// IsRateLimited reports whether err is a quota or rate-limit rejection (HTTP 429
// or gRPC RESOURCE_EXHAUSTED).
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
