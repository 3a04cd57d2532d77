package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// ProjectStore persists project records.
type ProjectStore interface {
	// SaveProject stores or updates a project.
	SaveProject(ctx context.Context, project *domain.Project) error

	// GetProject retrieves a project by id.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// DeleteProject removes a project and cascades to its documents and
	// chunks.
	DeleteProject(ctx context.Context, id string) error
}

// DocumentStore is the durable record of documents and chunks per project.
// The core treats it as already-durable and does not re-implement
// persistence.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// ListDocuments returns a project's documents.
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)

	// GetChunks returns all chunks for a project ordered by document id
	// then ordinal. The ordering is stable across calls.
	GetChunks(ctx context.Context, projectID string) ([]domain.Chunk, error)

	// ReplaceChunks idempotently replaces one document's chunks: the
	// document's previous chunks are removed and the given ones inserted,
	// atomically.
	ReplaceChunks(ctx context.Context, projectID, documentID string, chunks []domain.Chunk) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
