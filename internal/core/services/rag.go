package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService orchestrates index-push, search and answer over the embedding
// provider, the vector index, the document store and the prompt engine.
// The provider handles are long-lived, stateless from the caller's
// perspective and safe to share across concurrent invocations.
type RAGService struct {
	docStore   driven.DocumentStore
	embedding  driven.EmbeddingService
	generation driven.GenerationService
	vectors    driven.VectorIndex
	prompts    *PromptEngine
	settings   *domain.Settings

	// pushLocks serialises ensure+upsert per project so two concurrent
	// index-pushes for the same project do not race on collection
	// creation. Keys are project ids, values are *sync.Mutex.
	pushLocks sync.Map
}

// NewRAGService creates the orchestrator. All collaborators are injected at
// construction; nothing is created per request.
func NewRAGService(
	docStore driven.DocumentStore,
	embedding driven.EmbeddingService,
	generation driven.GenerationService,
	vectors driven.VectorIndex,
	prompts *PromptEngine,
	settings *domain.Settings,
) *RAGService {
	return &RAGService{
		docStore:   docStore,
		embedding:  embedding,
		generation: generation,
		vectors:    vectors,
		prompts:    prompts,
		settings:   settings,
	}
}

// IndexPush embeds and upserts all of a project's chunks.
//
// Chunks are loaded in document-then-ordinal order and embedded in batches
// of the configured size, sequentially: a batch failure aborts the push and
// leaves already-upserted vectors in place. There is no rollback because
// upsert is idempotent per chunk id, so retrying the push is always safe.
//
// Stale ids from a previous chunking pass are not pruned here; callers that
// re-chunk a document should ResetIndex first.
func (s *RAGService) IndexPush(ctx context.Context, projectID string, progress driving.ProgressFunc) (int, error) {
	chunks, err := s.docStore.GetChunks(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}

	collection := domain.CollectionName(projectID)
	logger.Section("Index Push")
	logger.Debug("Project %s: %d chunks -> collection %s", projectID, len(chunks), collection)

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	metric := s.settings.Vector.Metric
	if metric == "" {
		metric = domain.MetricCosine
	}
	if err := s.vectors.EnsureCollection(ctx, collection, s.embedding.Dimensions(), metric); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	batchSize := s.settings.EmbedBatchSize
	indexed := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}

		points := make([]driven.VectorPoint, len(batch))
		for i, c := range batch {
			points[i] = driven.VectorPoint{
				ID:     c.ID,
				Vector: vectors[i],
				Payload: driven.VectorPayload{
					Text:       c.Text,
					DocumentID: c.DocumentID,
					Ordinal:    c.Ordinal,
				},
			}
		}

		if err := s.vectors.Upsert(ctx, collection, points); err != nil {
			return indexed, fmt.Errorf("upsert batch at offset %d: %w", start, err)
		}

		indexed += len(batch)
		if progress != nil {
			progress(indexed, len(chunks))
		}
	}

	logger.Info("Indexed %d vectors into %s", indexed, collection)
	return indexed, nil
}

// Search embeds the query and retrieves the topK most similar chunks.
// A project that was never index-pushed surfaces
// domain.ErrCollectionNotFound rather than an empty result.
func (s *RAGService) Search(ctx context.Context, projectID, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = s.settings.DefaultTopK
	}

	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.vectors.Search(ctx, domain.CollectionName(projectID), vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search project %s: %w", projectID, err)
	}
	logger.Debug("Search %q in %s: %d hits", query, projectID, len(results))
	return results, nil
}

// Answer retrieves context for the question, renders the prompt and calls
// the generation provider once. Generation is never retried here: sampling
// is nondeterministic and a blind retry could hand the user a different
// answer than the one that failed mid-flight.
func (s *RAGService) Answer(ctx context.Context, projectID, question string, topK int, locale string) (*domain.Answer, error) {
	chunks, err := s.Search(ctx, projectID, question, topK)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompts.BuildAnswerPrompt(locale, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	text, err := s.generation.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.settings.Generation.MaxOutputTokens,
		Temperature: s.settings.Generation.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:   text,
		Prompt: prompt.String(),
		Chunks: chunks,
	}, nil
}

// ResetIndex drops the project's vector collection. The next IndexPush
// recreates it from the current chunk set, which is the supported way to
// get rid of vectors left behind by a re-chunk.
func (s *RAGService) ResetIndex(ctx context.Context, projectID string) error {
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	collection := domain.CollectionName(projectID)
	if err := s.vectors.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	logger.Info("Dropped collection %s", collection)
	return nil
}

func (s *RAGService) projectLock(projectID string) *sync.Mutex {
	lock, _ := s.pushLocks.LoadOrStore(projectID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
