package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// Default configuration values.
const (
	DefaultLocale         = "en"
	DefaultTopK           = 5
	DefaultEmbedBatchSize = 32
	DefaultMaxChunkSize   = 1000
	DefaultChunkOverlap   = 200
	DefaultTimeoutSecs    = 60
)

// fileSettings is the TOML schema of the config file. Secrets never live
// here; API keys come from the environment.
type fileSettings struct {
	Embedding struct {
		Provider    string `toml:"provider"`
		Model       string `toml:"model"`
		BaseURL     string `toml:"base_url"`
		Dimensions  int    `toml:"dimensions"`
		TimeoutSecs int    `toml:"timeout_secs"`
	} `toml:"embedding"`

	Generation struct {
		Provider        string  `toml:"provider"`
		Model           string  `toml:"model"`
		BaseURL         string  `toml:"base_url"`
		MaxOutputTokens int     `toml:"max_output_tokens"`
		Temperature     float64 `toml:"temperature"`
		TimeoutSecs     int     `toml:"timeout_secs"`
	} `toml:"generation"`

	Vector struct {
		Backend     string `toml:"backend"`
		URL         string `toml:"url"`
		DSN         string `toml:"dsn"`
		Metric      string `toml:"metric"`
		TimeoutSecs int    `toml:"timeout_secs"`
	} `toml:"vector"`

	Chunking struct {
		MaxChunkSize int `toml:"max_chunk_size"`
		Overlap      int `toml:"overlap"`
	} `toml:"chunking"`

	Defaults struct {
		Locale         string `toml:"locale"`
		TopK           int    `toml:"top_k"`
		EmbedBatchSize int    `toml:"embed_batch_size"`
	} `toml:"defaults"`
}

// DefaultSettingsPath returns ~/.ragline/config.toml.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".ragline", "config.toml"), nil
}

// LoadSettings reads the TOML config at path (defaults apply when the file
// does not exist), overlays environment variables, and validates the
// result. A .env file in the working directory is loaded first when
// present, the way local deployments supply API keys.
func LoadSettings(path string) (*domain.Settings, error) {
	// Best-effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	var raw fileSettings
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults below.
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyDefaults(&raw)

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:       domain.AIProvider(raw.Embedding.Provider),
			Model:          raw.Embedding.Model,
			BaseURL:        raw.Embedding.BaseURL,
			Dimensions:     raw.Embedding.Dimensions,
			TimeoutSeconds: raw.Embedding.TimeoutSecs,
		},
		Generation: domain.GenerationSettings{
			Provider:        domain.AIProvider(raw.Generation.Provider),
			Model:           raw.Generation.Model,
			BaseURL:         raw.Generation.BaseURL,
			MaxOutputTokens: raw.Generation.MaxOutputTokens,
			Temperature:     raw.Generation.Temperature,
			TimeoutSeconds:  raw.Generation.TimeoutSecs,
		},
		Vector: domain.VectorSettings{
			Backend:        domain.VectorBackend(raw.Vector.Backend),
			URL:            raw.Vector.URL,
			DSN:            raw.Vector.DSN,
			Metric:         domain.DistanceMetric(raw.Vector.Metric),
			TimeoutSeconds: raw.Vector.TimeoutSecs,
		},
		Chunking: domain.ChunkingSettings{
			MaxChunkSize: raw.Chunking.MaxChunkSize,
			Overlap:      raw.Chunking.Overlap,
		},
		DefaultLocale:  raw.Defaults.Locale,
		DefaultTopK:    raw.Defaults.TopK,
		EmbedBatchSize: raw.Defaults.EmbedBatchSize,
	}

	mergeEnv(settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func applyDefaults(raw *fileSettings) {
	if raw.Embedding.Provider == "" {
		raw.Embedding.Provider = string(domain.ProviderOpenAI)
	}
	if raw.Embedding.TimeoutSecs == 0 {
		raw.Embedding.TimeoutSecs = DefaultTimeoutSecs
	}
	if raw.Generation.Provider == "" {
		raw.Generation.Provider = string(domain.ProviderOpenAI)
	}
	if raw.Generation.TimeoutSecs == 0 {
		raw.Generation.TimeoutSecs = DefaultTimeoutSecs * 2
	}
	if raw.Vector.Backend == "" {
		raw.Vector.Backend = string(domain.VectorBackendQdrant)
	}
	if raw.Vector.URL == "" {
		raw.Vector.URL = "http://localhost:6333"
	}
	if raw.Vector.Metric == "" {
		raw.Vector.Metric = string(domain.MetricCosine)
	}
	if raw.Vector.TimeoutSecs == 0 {
		raw.Vector.TimeoutSecs = DefaultTimeoutSecs / 2
	}
	if raw.Chunking.MaxChunkSize == 0 {
		raw.Chunking.MaxChunkSize = DefaultMaxChunkSize
	}
	if raw.Chunking.Overlap == 0 {
		raw.Chunking.Overlap = DefaultChunkOverlap
	}
	if raw.Defaults.Locale == "" {
		raw.Defaults.Locale = DefaultLocale
	}
	if raw.Defaults.TopK == 0 {
		raw.Defaults.TopK = DefaultTopK
	}
	if raw.Defaults.EmbedBatchSize == 0 {
		raw.Defaults.EmbedBatchSize = DefaultEmbedBatchSize
	}
}

// mergeEnv overlays environment variables. API keys only ever come from
// the environment so they cannot end up committed in a config file.
func mergeEnv(s *domain.Settings) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if s.Embedding.Provider == domain.ProviderOpenAI {
			s.Embedding.APIKey = v
		}
		if s.Generation.Provider == domain.ProviderOpenAI {
			s.Generation.APIKey = v
		}
	}
	if v := os.Getenv("COHERE_API_KEY"); v != "" {
		if s.Embedding.Provider == domain.ProviderCohere {
			s.Embedding.APIKey = v
		}
		if s.Generation.Provider == domain.ProviderCohere {
			s.Generation.APIKey = v
		}
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		s.Vector.APIKey = v
	}
	if v := os.Getenv("RAGLINE_QDRANT_URL"); v != "" {
		s.Vector.URL = v
	}
	if v := os.Getenv("RAGLINE_PG_DSN"); v != "" {
		s.Vector.DSN = v
	}
}
