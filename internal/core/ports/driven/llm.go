package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// GenerationService turns an ordered prompt into a generated answer.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Cohere (command-r, command-r-plus)
//   - Ollama (local models)
//
// Generation is synchronous request/response; no partial tokens are streamed
// back to the orchestrator. Generation is not guaranteed idempotent
// (nondeterministic sampling), so the orchestrator never retries it
// automatically.
type GenerationService interface {
	// Generate produces a single completion from the ordered messages.
	Generate(ctx context.Context, messages domain.Prompt, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
