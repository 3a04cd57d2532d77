package driven

import "context"

// EmbeddingService turns text into fixed-dimension numeric vectors.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Cohere (embed-english-v3.0, embed-multilingual-v3.0)
//   - Ollama (nomic-embed-text, all-minilm)
//
// Embedding calls are idempotent up to provider-side nondeterminism, which
// each implementation documents. Rate limiting and backoff are the
// implementation's responsibility and never leak partial state to callers.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result is
	// ordered 1:1 with the input and items are never silently dropped: a
	// failure on any item fails the whole call with a domain.ProviderError
	// carrying the first failing index, so the caller can retry the whole
	// batch or split it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 1024, 1536).
	// Fixed per provider+model configuration for a collection's lifetime.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
