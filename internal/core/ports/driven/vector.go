package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// VectorPoint is one chunk vector plus the payload needed to reconstruct a
// retrieval result without a second lookup.
type VectorPoint struct {
	// ID is the chunk id. Upserts are idempotent per id.
	ID string

	// Vector is the embedding. Its length must match the collection
	// dimension.
	Vector []float32

	// Payload carries the chunk text and metadata for retrieval-time
	// reconstruction.
	Payload VectorPayload
}

// VectorPayload is the metadata stored alongside each vector.
type VectorPayload struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	Ordinal    int    `json:"ordinal"`
}

// VectorIndex stores chunk vectors in named collections and answers
// nearest-neighbour queries.
//
// Implementations may include Qdrant (REST), Postgres/pgvector and an
// in-process index for tests.
type VectorIndex interface {
	// EnsureCollection creates the collection if missing. Idempotent:
	// an existing collection with the same dimension and metric is a
	// no-op; a differing dimension or metric is domain.ErrSchemaConflict.
	EnsureCollection(ctx context.Context, name string, dimension int, metric domain.DistanceMetric) error

	// Upsert writes points into the collection. Re-upserting an id
	// overwrites its vector and payload rather than duplicating it, which
	// is what makes re-indexing after re-chunking safe.
	Upsert(ctx context.Context, collection string, points []VectorPoint) error

	// Search returns up to topK hits ordered by descending similarity
	// under the collection's metric, ties broken by insertion order.
	// topK larger than the vector count is clamped, never an error.
	// A missing collection is domain.ErrCollectionNotFound.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedChunk, error)

	// CollectionInfo reports the collection's dimension, metric and
	// vector count. A missing collection is domain.ErrCollectionNotFound.
	CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// DeleteCollection removes the collection and all its vectors.
	// Deleting a missing collection is a no-op.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
