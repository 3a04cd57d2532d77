package cohere

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

func TestNewGenerationService_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerationService(Config{})
	require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "command-r", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, 256, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": {
				"content": [
					{"type": "thinking", "text": "hmm"},
					{"type": "text", "text": "Paris is the capital of France."}
				]
			}
		}`))
	}))
	defer server.Close()

	svc, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	prompt := domain.Prompt{
		{Role: domain.RoleSystem, Content: "Answer from the documents."},
		{Role: domain.RoleUser, Content: "What is the capital of France?"},
	}
	text, err := svc.Generate(context.Background(), prompt, driven.GenerateOptions{MaxTokens: 256, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", text)
}

func TestGenerate_LegacyTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text": "legacy answer"}`))
	}))
	defer server.Close()

	svc, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := svc.Generate(context.Background(), domain.Prompt{{Role: domain.RoleUser, Content: "hi"}}, driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "legacy answer", text)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	svc, err := NewGenerationService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), domain.Prompt{}, driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer server.Close()

	svc, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), domain.Prompt{{Role: domain.RoleUser, Content: "hi"}}, driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrProvider)

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
}

func TestGenerate_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": {"content": []}}`))
	}))
	defer server.Close()

	svc, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), domain.Prompt{{Role: domain.RoleUser, Content: "hi"}}, driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	svc, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Ping(context.Background()))
}
