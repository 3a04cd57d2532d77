package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  error
	}{
		{
			name:     "unconfigured settings",
			settings: &domain.EmbeddingSettings{},
			wantErr:  domain.ErrInvalidConfiguration,
		},
		{
			name: "ollama provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "openai without api key",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "cohere provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderCohere,
				APIKey:   "test-key",
				Model:    "embed-english-light-v3.0",
			},
		},
		{
			name: "unknown provider",
			settings: &domain.EmbeddingSettings{
				Provider: "bedrock",
				APIKey:   "test-key",
			},
			wantErr: domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NotEmpty(t, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateGenerationService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.GenerationSettings
		wantErr  error
	}{
		{
			name:     "unconfigured settings",
			settings: &domain.GenerationSettings{},
			wantErr:  domain.ErrInvalidConfiguration,
		},
		{
			name: "ollama provider",
			settings: &domain.GenerationSettings{
				Provider: domain.ProviderOllama,
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider",
			settings: &domain.GenerationSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
			},
		},
		{
			name: "cohere without api key",
			settings: &domain.GenerationSettings{
				Provider: domain.ProviderCohere,
				Model:    "command-r",
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "unknown provider",
			settings: &domain.GenerationSettings{
				Provider: "vertex",
			},
			wantErr: domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateGenerationService(tt.settings)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NotEmpty(t, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateVectorIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		idx, err := CreateVectorIndex(ctx, &domain.VectorSettings{Backend: domain.VectorBackendMemory})
		require.NoError(t, err)
		require.NotNil(t, idx)
		idx.Close()
	})

	t.Run("qdrant backend", func(t *testing.T) {
		idx, err := CreateVectorIndex(ctx, &domain.VectorSettings{
			Backend: domain.VectorBackendQdrant,
			URL:     "http://localhost:6333",
		})
		require.NoError(t, err)
		require.NotNil(t, idx)
		idx.Close()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, &domain.VectorSettings{Backend: "weaviate"})
		require.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}
