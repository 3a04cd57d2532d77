package domain

import "fmt"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI AIProvider = "openai"

	// ProviderCohere is the Cohere cloud API.
	ProviderCohere AIProvider = "cohere"

	// ProviderOllama is a local Ollama instance.
	ProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderCohere, ProviderOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// VectorBackend identifies the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendQdrant is a Qdrant server reached over REST.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendPgvector is Postgres with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"

	// VectorBackendMemory is the in-process index for tests and dev.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendQdrant, VectorBackendPgvector, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the embedding backend.
	Provider AIProvider

	// Model is the embedding model id (e.g. text-embedding-3-small).
	Model string

	// APIKey authenticates cloud providers. Unused for ollama.
	APIKey string

	// BaseURL overrides the provider endpoint (Azure, proxies, local).
	BaseURL string

	// Dimensions overrides the model's default vector size where the
	// provider supports it. Zero means model default.
	Dimensions int

	// TimeoutSeconds bounds every embedding call. Zero means the
	// provider's default.
	TimeoutSeconds int
}

// IsConfigured returns true when the settings select a provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// GenerationSettings configures the generation provider.
type GenerationSettings struct {
	// Provider selects the generation backend.
	Provider AIProvider

	// Model is the generation model id (e.g. gpt-4o-mini).
	Model string

	// APIKey authenticates cloud providers. Unused for ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// MaxOutputTokens caps generated length when the caller does not ask
	// for a specific limit.
	MaxOutputTokens int

	// Temperature is the default sampling temperature.
	Temperature float64

	// TimeoutSeconds bounds every generation call.
	TimeoutSeconds int
}

// IsConfigured returns true when the settings select a provider.
func (s *GenerationSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// VectorSettings configures the vector index backend.
type VectorSettings struct {
	// Backend selects the vector index implementation.
	Backend VectorBackend

	// URL is the Qdrant endpoint for the qdrant backend.
	URL string

	// APIKey authenticates the qdrant backend, if required.
	APIKey string

	// DSN is the Postgres connection string for the pgvector backend.
	DSN string

	// Metric is the distance metric for new collections.
	Metric DistanceMetric

	// TimeoutSeconds bounds index operations for remote backends.
	TimeoutSeconds int
}

// ChunkingSettings configures the document splitter.
type ChunkingSettings struct {
	// MaxChunkSize is the maximum chunk length in runes.
	MaxChunkSize int

	// Overlap is how many trailing runes of a chunk are duplicated at the
	// head of the next one. Must be smaller than MaxChunkSize.
	Overlap int
}

// Settings is the immutable application configuration, constructed once at
// startup and passed into each component. No component reads ambient global
// state.
type Settings struct {
	Embedding  EmbeddingSettings
	Generation GenerationSettings
	Vector     VectorSettings
	Chunking   ChunkingSettings

	// DefaultLocale is the fallback locale for prompt templates.
	DefaultLocale string

	// DefaultTopK is the retrieval depth when the caller does not specify.
	DefaultTopK int

	// EmbedBatchSize is how many chunks are embedded per provider call
	// during index-push.
	EmbedBatchSize int
}

// Validate checks the settings for caller-fixable mistakes.
func (s *Settings) Validate() error {
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", ErrUnsupportedType, s.Embedding.Provider)
	}
	if !s.Generation.Provider.IsValid() {
		return fmt.Errorf("%w: generation provider %q", ErrUnsupportedType, s.Generation.Provider)
	}
	if !s.Vector.Backend.IsValid() {
		return fmt.Errorf("%w: vector backend %q", ErrUnsupportedType, s.Vector.Backend)
	}
	if s.Vector.Metric != "" && !s.Vector.Metric.IsValid() {
		return fmt.Errorf("%w: distance metric %q", ErrUnsupportedType, s.Vector.Metric)
	}
	if s.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive", ErrInvalidConfiguration)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.MaxChunkSize {
		return fmt.Errorf("%w: overlap must be non-negative and smaller than max chunk size", ErrInvalidConfiguration)
	}
	if s.DefaultTopK <= 0 {
		return fmt.Errorf("%w: default top-k must be positive", ErrInvalidConfiguration)
	}
	if s.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: embed batch size must be positive", ErrInvalidConfiguration)
	}
	return nil
}
