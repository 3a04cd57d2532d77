package driving

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// ProgressFunc reports index-push progress as (indexed, total) vectors.
type ProgressFunc func(indexed, total int)

// RAGService is the retrieval-augmented generation orchestrator.
type RAGService interface {
	// IndexPush embeds and upserts all of a project's chunks into the
	// project's vector collection. Returns the number of vectors indexed.
	IndexPush(ctx context.Context, projectID string, progress ProgressFunc) (int, error)

	// Search embeds the query and returns the topK most similar chunks.
	// topK <= 0 selects the configured default.
	Search(ctx context.Context, projectID, query string, topK int) ([]domain.RetrievedChunk, error)

	// Answer retrieves context for the question, assembles the prompt and
	// generates an answer. locale selects the prompt template language;
	// empty means the configured default.
	Answer(ctx context.Context, projectID, question string, topK int, locale string) (*domain.Answer, error)

	// ResetIndex drops the project's vector collection so the next
	// IndexPush starts from a clean slate. This is the explicit escape
	// hatch for stale vectors left behind by a re-chunk.
	ResetIndex(ctx context.Context, projectID string) error
}

// ProjectService manages projects and document ingestion.
type ProjectService interface {
	// CreateProject creates a project with the given name.
	CreateProject(ctx context.Context, name string) (*domain.Project, error)

	// GetProject retrieves a project by id.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// DeleteProject removes a project, its documents and chunks, and its
	// vector collection.
	DeleteProject(ctx context.Context, id string) error

	// IngestDocument splits text into chunks and idempotently replaces
	// the named document's chunks. Returns the stored document and the
	// number of chunks produced.
	IngestDocument(ctx context.Context, projectID, name, text string) (*domain.Document, int, error)
}
